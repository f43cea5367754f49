package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const readyStatus = "Ready"

// StatusBar displays the last action and the loaded image
type StatusBar struct {
	container   *fyne.Container
	statusLabel *widget.Label
	imageInfo   *widget.Label
	activity    *widget.ProgressBarInfinite
}

// NewStatusBar creates a new status bar component
func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel(readyStatus)
	sb.statusLabel.Truncation = fyne.TextTruncateEllipsis
	sb.imageInfo = widget.NewLabel("No image loaded")

	sb.activity = widget.NewProgressBarInfinite()
	sb.activity.Stop()
	sb.activity.Hide()
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewBorder(
		widget.NewSeparator(),
		nil,
		nil,
		container.NewHBox(sb.activity, widget.NewSeparator(), sb.imageInfo),
		sb.statusLabel,
	)
}

// SetStatus updates the main status message
func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) GetStatus() string {
	return sb.statusLabel.Text
}

// SetImageInfo updates the image information display
func (sb *StatusBar) SetImageInfo(width, height int, format string) {
	sb.imageInfo.SetText(fmt.Sprintf("%dx%d %s", width, height, format))
}

func (sb *StatusBar) GetImageInfo() string {
	return sb.imageInfo.Text
}

// SetBusy shows or hides the activity indicator.
func (sb *StatusBar) SetBusy(busy bool) {
	if busy {
		sb.activity.Show()
		sb.activity.Start()
		return
	}
	sb.activity.Stop()
	sb.activity.Hide()
}

func (sb *StatusBar) IsBusy() bool {
	return sb.activity.Visible()
}

// Reset resets the status bar to initial state
func (sb *StatusBar) Reset() {
	sb.statusLabel.SetText(readyStatus)
	sb.imageInfo.SetText("No image loaded")
	sb.SetBusy(false)
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
