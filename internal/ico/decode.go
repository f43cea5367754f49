package ico

import (
	"image"
	"io"

	goico "github.com/sergeymakinen/go-ico"
)

// DecodeAll returns every image stored in the ICO read from r.
func DecodeAll(r io.Reader) ([]image.Image, error) {
	images, err := goico.DecodeAll(r)
	if err != nil {
		return nil, wrapLibraryError(err)
	}
	return images, nil
}

// DecodeConfig returns the dimensions of the largest entry.
func DecodeConfig(r io.Reader) (image.Config, error) {
	cfg, err := goico.DecodeConfig(r)
	if err != nil {
		return image.Config{}, wrapLibraryError(err)
	}
	return cfg, nil
}

// ReadEntries decodes the ICO read from r and lists its entries in file
// order. Every payload is decoded, so a corrupt entry is an error.
func ReadEntries(r io.Reader) ([]Entry, error) {
	images, err := DecodeAll(r)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(images))
	for i, img := range images {
		b := img.Bounds()
		entries[i] = Entry{Width: b.Dx(), Height: b.Dy()}
	}
	return entries, nil
}
