package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"icoforge/internal/models"
)

// SizeSelector is the "Icon Sizes" group: an "All Sizes" checkbox and one
// checkbox per standard size laid out three per row.
type SizeSelector struct {
	card     *widget.Card
	allSizes *widget.Check
	sizes    []models.IconSize
	checks   map[models.IconSize]*widget.Check

	allSizesHandler func(bool)
	sizeHandler     func(models.IconSize, bool)
}

func NewSizeSelector(sizes []models.IconSize) *SizeSelector {
	ss := &SizeSelector{
		sizes:  append([]models.IconSize(nil), sizes...),
		checks: make(map[models.IconSize]*widget.Check, len(sizes)),
	}
	ss.createComponents()
	ss.buildLayout()
	return ss
}

func (ss *SizeSelector) createComponents() {
	ss.allSizes = widget.NewCheck("All Sizes", func(checked bool) {
		if ss.allSizesHandler != nil {
			ss.allSizesHandler(checked)
		}
	})

	for _, size := range ss.sizes {
		ss.checks[size] = widget.NewCheck(size.String(), func(checked bool) {
			if ss.sizeHandler != nil {
				ss.sizeHandler(size, checked)
			}
		})
	}
}

func (ss *SizeSelector) buildLayout() {
	grid := container.NewGridWithColumns(3)
	for _, size := range ss.sizes {
		grid.Add(ss.checks[size])
	}

	ss.card = widget.NewCard("Icon Sizes", "", container.NewVBox(ss.allSizes, grid))
}

func (ss *SizeSelector) SetAllSizesHandler(handler func(bool)) {
	ss.allSizesHandler = handler
}

func (ss *SizeSelector) SetSizeHandler(handler func(models.IconSize, bool)) {
	ss.sizeHandler = handler
}

// SetAllSizes changes the "All Sizes" checkbox. The change handler runs
// only if the state actually changes.
func (ss *SizeSelector) SetAllSizes(checked bool) {
	ss.allSizes.SetChecked(checked)
}

func (ss *SizeSelector) AllSizes() bool {
	return ss.allSizes.Checked
}

func (ss *SizeSelector) SetSizeChecked(size models.IconSize, checked bool) {
	if check, ok := ss.checks[size]; ok {
		check.SetChecked(checked)
	}
}

func (ss *SizeSelector) IsSizeChecked(size models.IconSize) bool {
	check, ok := ss.checks[size]
	return ok && check.Checked
}

// SetIndividualEnabled enables or disables the per-size checkboxes without
// touching their checked state.
func (ss *SizeSelector) SetIndividualEnabled(enabled bool) {
	for _, check := range ss.checks {
		if enabled {
			check.Enable()
		} else {
			check.Disable()
		}
	}
}

func (ss *SizeSelector) IndividualEnabled() bool {
	for _, check := range ss.checks {
		return !check.Disabled()
	}
	return false
}

// SetEnabled locks the whole group, used while a conversion runs.
func (ss *SizeSelector) SetEnabled(enabled bool) {
	if enabled {
		ss.allSizes.Enable()
		ss.SetIndividualEnabled(!ss.allSizes.Checked)
		return
	}
	ss.allSizes.Disable()
	ss.SetIndividualEnabled(false)
}

func (ss *SizeSelector) GetContainer() fyne.CanvasObject {
	return ss.card
}
