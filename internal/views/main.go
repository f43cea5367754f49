package views

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"icoforge/internal/models"
	"icoforge/internal/views/components"
)

const (
	WindowTitle = "Image to ICO Converter"
	AboutTitle  = "About Image to ICO Converter"
)

// Handlers are the controller callbacks the view invokes on user actions.
// They run on the Fyne goroutine.
type Handlers struct {
	Browse          func()
	Convert         func()
	About           func()
	AllSizesChanged func(bool)
	SizeChanged     func(models.IconSize, bool)
	SourceChanged   func(string)
	FilesDropped    func([]string)
}

// MainView is the converter window
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container

	sourcePicker  *components.SourcePicker
	sizeSelector  *components.SizeSelector
	preview       *components.Preview
	statusBar     *components.StatusBar
	convertButton *widget.Button

	sourceExtensions []string
	version          string
	handlers         Handlers
}

// NewMainView builds the window content and menus. sourceExtensions
// filters the open dialog, e.g. ".png".
func NewMainView(window fyne.Window, sizes []models.IconSize, sourceExtensions []string, version string) *MainView {
	view := &MainView{
		window:           window,
		sourceExtensions: sourceExtensions,
		version:          version,
	}

	view.initializeComponents(sizes)
	view.buildLayout()
	view.buildMenus()
	view.setupEventHandlers()

	return view
}

func (mv *MainView) initializeComponents(sizes []models.IconSize) {
	mv.sourcePicker = components.NewSourcePicker()
	mv.sizeSelector = components.NewSizeSelector(sizes)
	mv.preview = components.NewPreview()
	mv.statusBar = components.NewStatusBar()
	mv.convertButton = widget.NewButton("Convert", func() {
		if mv.handlers.Convert != nil {
			mv.handlers.Convert()
		}
	})
	mv.convertButton.Importance = widget.HighImportance
}

func (mv *MainView) buildLayout() {
	controls := container.NewVBox(
		mv.sourcePicker.GetContainer(),
		mv.sizeSelector.GetContainer(),
		container.NewCenter(mv.convertButton),
	)

	mv.mainContainer = container.NewBorder(
		nil,
		mv.statusBar.GetContainer(),
		nil,
		mv.preview.GetContainer(),
		controls,
	)

	mv.window.SetTitle(WindowTitle)
	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) buildMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open...", func() {
			if mv.handlers.Browse != nil {
				mv.handlers.Browse()
			}
		}),
		fyne.NewMenuItem("Convert", func() {
			if mv.handlers.Convert != nil {
				mv.handlers.Convert()
			}
		}),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", func() {
			if mv.handlers.About != nil {
				mv.handlers.About()
			}
		}),
	)

	mv.window.SetMainMenu(fyne.NewMainMenu(fileMenu, helpMenu))
}

func (mv *MainView) setupEventHandlers() {
	mv.sourcePicker.SetBrowseHandler(func() {
		if mv.handlers.Browse != nil {
			mv.handlers.Browse()
		}
	})

	mv.sourcePicker.SetChangeHandler(func(text string) {
		if mv.handlers.SourceChanged != nil {
			mv.handlers.SourceChanged(text)
		}
	})

	mv.sizeSelector.SetAllSizesHandler(func(checked bool) {
		if mv.handlers.AllSizesChanged != nil {
			mv.handlers.AllSizesChanged(checked)
		}
	})

	mv.sizeSelector.SetSizeHandler(func(size models.IconSize, checked bool) {
		if mv.handlers.SizeChanged != nil {
			mv.handlers.SizeChanged(size, checked)
		}
	})

	mv.window.SetOnDropped(func(_ fyne.Position, uris []fyne.URI) {
		mv.forwardDrop(uris)
	})
}

// forwardDrop passes the local file paths among uris to the controller.
func (mv *MainView) forwardDrop(uris []fyne.URI) {
	if mv.handlers.FilesDropped == nil {
		return
	}
	paths := make([]string, 0, len(uris))
	for _, uri := range uris {
		if uri.Scheme() == "file" {
			paths = append(paths, uri.Path())
		}
	}
	mv.handlers.FilesDropped(paths)
}

// SetHandlers connects the controller
func (mv *MainView) SetHandlers(handlers Handlers) {
	mv.handlers = handlers
}

// SourcePath returns the path currently in the input entry. Call it from
// the Fyne goroutine.
func (mv *MainView) SourcePath() string {
	return mv.sourcePicker.Path()
}

func (mv *MainView) SetSourcePath(path string) {
	fyne.Do(func() {
		mv.sourcePicker.SetPath(path)
	})
}

// SetSizeSelection sets the checkboxes without reporting the change back.
func (mv *MainView) SetSizeSelection(allSizes bool, selected []models.IconSize) {
	fyne.Do(func() {
		handlers := mv.handlers
		mv.handlers.AllSizesChanged = nil
		mv.handlers.SizeChanged = nil

		mv.sizeSelector.SetAllSizes(allSizes)
		for _, size := range models.StandardSizes {
			mv.sizeSelector.SetSizeChecked(size, false)
		}
		for _, size := range selected {
			mv.sizeSelector.SetSizeChecked(size, true)
		}
		mv.sizeSelector.SetIndividualEnabled(!allSizes)

		mv.handlers = handlers
	})
}

func (mv *MainView) SetIndividualSizesEnabled(enabled bool) {
	fyne.Do(func() {
		mv.sizeSelector.SetIndividualEnabled(enabled)
	})
}

// SetConverting locks the inputs while a conversion runs
func (mv *MainView) SetConverting(active bool) {
	fyne.Do(func() {
		mv.sourcePicker.SetEnabled(!active)
		mv.sizeSelector.SetEnabled(!active)
		mv.statusBar.SetBusy(active)
		if active {
			mv.convertButton.Disable()
		} else {
			mv.convertButton.Enable()
		}
	})
}

// UpdateStatus updates the status bar message
func (mv *MainView) UpdateStatus(status string) {
	fyne.Do(func() {
		mv.statusBar.SetStatus(status)
	})
}

// SetSource shows the loaded source in the preview and status bar. A nil
// source clears both.
func (mv *MainView) SetSource(source *models.SourceImage) {
	fyne.Do(func() {
		if source == nil {
			mv.preview.Clear()
			mv.statusBar.Reset()
			return
		}
		mv.preview.SetImage(source.Image, filepath.Base(source.Path))
		mv.statusBar.SetImageInfo(source.Width, source.Height, source.Format)
	})
}

// ChooseSource shows the open dialog. callback receives the chosen path,
// or "" when the dialog is cancelled.
func (mv *MainView) ChooseSource(callback func(path string, err error)) {
	fyne.Do(func() {
		d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
			if err != nil || reader == nil {
				callback("", err)
				return
			}
			path := reader.URI().Path()
			reader.Close()
			callback(path, nil)
		}, mv.window)

		if len(mv.sourceExtensions) > 0 {
			d.SetFilter(storage.NewExtensionFileFilter(mv.sourceExtensions))
		}
		if dir := mv.sourcePicker.Path(); dir != "" {
			setDialogLocation(d, filepath.Dir(dir))
		}
		d.Show()
	})
}

// ChooseOutput shows the save dialog with suggested as the file name.
// The dialog creates the chosen file; callback receives its path, or ""
// when the dialog is cancelled.
func (mv *MainView) ChooseOutput(suggested string, callback func(path string, err error)) {
	fyne.Do(func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil || writer == nil {
				callback("", err)
				return
			}
			path := writer.URI().Path()
			writer.Close()
			callback(path, nil)
		}, mv.window)

		d.SetFilter(storage.NewExtensionFileFilter([]string{".ico"}))
		if suggested != "" {
			d.SetFileName(filepath.Base(suggested))
			setDialogLocation(d, filepath.Dir(suggested))
		}
		d.Show()
	})
}

type locatable interface {
	SetLocation(fyne.ListableURI)
}

func setDialogLocation(d locatable, dir string) {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return
	}
	lister, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return
	}
	d.SetLocation(lister)
}

// ShowWarning displays a warning titled "Warning"
func (mv *MainView) ShowWarning(message string) {
	fyne.Do(func() {
		dialog.ShowInformation("Warning", message, mv.window)
	})
}

// Confirm asks a yes/no question; callback receives the answer.
func (mv *MainView) Confirm(title, message string, callback func(bool)) {
	fyne.Do(func() {
		dialog.ShowConfirm(title, message, callback, mv.window)
	})
}

// ShowError displays an error dialog
func (mv *MainView) ShowError(err error) {
	fyne.Do(func() {
		dialog.ShowError(err, mv.window)
	})
}

// ShowInfo displays an information dialog
func (mv *MainView) ShowInfo(title, message string) {
	fyne.Do(func() {
		dialog.ShowInformation(title, message, mv.window)
	})
}

// ShowAbout displays application information
func (mv *MainView) ShowAbout() {
	fyne.Do(func() {
		content := widget.NewLabel(AboutText(mv.version))
		content.Alignment = fyne.TextAlignCenter
		dialog.ShowCustom(AboutTitle, "OK", content, mv.window)
	})
}

// AboutText is the body of the About dialog.
func AboutText(version string) string {
	lines := []string{
		WindowTitle,
		fmt.Sprintf("Version %s", version),
		"",
		"Converts JPEG and PNG images",
		"to ICO format for use as Windows icons.",
		"",
		"Built with Go and Fyne.",
	}
	return strings.Join(lines, "\n")
}

func (mv *MainView) Show() {
	fyne.Do(func() {
		mv.window.Show()
	})
}

func (mv *MainView) Close() {
	fyne.Do(func() {
		mv.window.Close()
	})
}

func (mv *MainView) GetWindow() fyne.Window {
	return mv.window
}
