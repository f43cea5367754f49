package components

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// SourcePicker is the "Input Image:" row: a path entry and a Browse button.
type SourcePicker struct {
	container    *fyne.Container
	label        *widget.Label
	entry        *widget.Entry
	browseButton *widget.Button

	browseHandler func()
	changeHandler func(string)
}

func NewSourcePicker() *SourcePicker {
	sp := &SourcePicker{}
	sp.createComponents()
	sp.buildLayout()
	return sp
}

func (sp *SourcePicker) createComponents() {
	sp.label = widget.NewLabel("Input Image:")

	sp.entry = widget.NewEntry()
	sp.entry.SetPlaceHolder("Select a JPEG or PNG image")
	sp.entry.OnChanged = func(text string) {
		if sp.changeHandler != nil {
			sp.changeHandler(text)
		}
	}

	sp.browseButton = widget.NewButtonWithIcon("Browse", theme.FolderOpenIcon(), func() {
		if sp.browseHandler != nil {
			sp.browseHandler()
		}
	})
}

func (sp *SourcePicker) buildLayout() {
	sp.container = container.NewBorder(nil, nil, sp.label, sp.browseButton, sp.entry)
}

func (sp *SourcePicker) SetBrowseHandler(handler func()) {
	sp.browseHandler = handler
}

// SetChangeHandler is called whenever the entry text changes, typed or set.
func (sp *SourcePicker) SetChangeHandler(handler func(string)) {
	sp.changeHandler = handler
}

func (sp *SourcePicker) SetPath(path string) {
	sp.entry.SetText(path)
}

// Path returns the entered path with surrounding whitespace removed.
func (sp *SourcePicker) Path() string {
	return strings.TrimSpace(sp.entry.Text)
}

func (sp *SourcePicker) SetEnabled(enabled bool) {
	if enabled {
		sp.entry.Enable()
		sp.browseButton.Enable()
	} else {
		sp.entry.Disable()
		sp.browseButton.Disable()
	}
}

func (sp *SourcePicker) GetContainer() *fyne.Container {
	return sp.container
}
