package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

const (
	PreviewWidth  = 160
	PreviewHeight = 160
)

// Preview shows the selected source image scaled into a fixed box.
type Preview struct {
	container   *fyne.Container
	image       *canvas.Image
	placeholder image.Image
	caption     *widget.Label
	hasImage    bool
}

func NewPreview() *Preview {
	p := &Preview{}
	p.createComponents()
	p.buildLayout()
	return p
}

func (p *Preview) createComponents() {
	p.placeholder = createPlaceholderImage(PreviewWidth, PreviewHeight)

	p.image = canvas.NewImageFromImage(p.placeholder)
	p.image.FillMode = canvas.ImageFillContain
	p.image.ScaleMode = canvas.ImageScaleSmooth
	p.image.SetMinSize(fyne.NewSize(PreviewWidth, PreviewHeight))

	p.caption = widget.NewLabel("No image selected")
	p.caption.Alignment = fyne.TextAlignCenter
}

// createPlaceholderImage draws a light gray box with a one pixel border.
func createPlaceholderImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	lightGray := color.RGBA{R: 240, G: 240, B: 240, A: 255}
	borderColor := color.RGBA{R: 200, G: 200, B: 200, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x == 0 || y == 0 || x == w-1 || y == h-1 {
				img.SetRGBA(x, y, borderColor)
			} else {
				img.SetRGBA(x, y, lightGray)
			}
		}
	}
	return img
}

func (p *Preview) buildLayout() {
	bg := canvas.NewRectangle(color.RGBA{R: 252, G: 252, B: 252, A: 255})
	p.container = container.NewBorder(nil, p.caption, nil, nil, container.NewStack(bg, p.image))
}

// SetImage shows img with caption below it. A nil image restores the placeholder.
func (p *Preview) SetImage(img image.Image, caption string) {
	if img == nil {
		p.Clear()
		return
	}
	p.image.Image = img
	p.hasImage = true
	p.caption.SetText(caption)
	p.image.Refresh()
}

func (p *Preview) Clear() {
	p.image.Image = p.placeholder
	p.hasImage = false
	p.caption.SetText("No image selected")
	p.image.Refresh()
}

func (p *Preview) HasImage() bool {
	return p.hasImage
}

func (p *Preview) Caption() string {
	return p.caption.Text
}

func (p *Preview) GetContainer() *fyne.Container {
	return p.container
}
