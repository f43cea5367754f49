// Package ico writes and inspects Windows icon (ICO) files.
//
// Encoding and decoding go through github.com/sergeymakinen/go-ico, which
// also registers the "ico" format with the image package. That encoder
// stores entries below 256x256 as 32-bit BMP with an AND mask and the
// 256x256 entry as PNG. The png format stores every entry as a PNG stream,
// which the library cannot produce, so that layout is written here.
package ico

import (
	"errors"
	"fmt"
	"strings"

	goico "github.com/sergeymakinen/go-ico"
)

// MaxDimension is the largest width or height an entry can describe.
const MaxDimension = 256

// Format selects how entry payloads are stored.
type Format string

const (
	// FormatBMP is the classic Windows layout: BMP entries, PNG at 256x256.
	FormatBMP Format = "bmp"
	// FormatPNG stores every entry as PNG.
	FormatPNG Format = "png"
)

var (
	ErrNoImages = errors.New("ico: no images")
	ErrTooLarge = errors.New("ico: image exceeds 256x256")
	ErrFormat   = errors.New("ico: invalid format")
)

// ParseFormat accepts "bmp" or "png"; the empty string selects bmp.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatBMP:
		return FormatBMP, nil
	case FormatPNG:
		return FormatPNG, nil
	default:
		return "", fmt.Errorf("%w: unknown entry format %q", ErrFormat, name)
	}
}

// Entry describes one image stored in an ICO file.
type Entry struct {
	Width  int
	Height int
}

func (e Entry) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// wrapLibraryError maps go-ico's format errors onto ErrFormat.
func wrapLibraryError(err error) error {
	var fe goico.FormatError
	var ue goico.UnsupportedError
	if errors.As(err, &fe) || errors.As(err, &ue) {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	return err
}
