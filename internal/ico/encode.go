package ico

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"

	goico "github.com/sergeymakinen/go-ico"
)

// Options controls Encode. A nil *Options selects FormatBMP.
type Options struct {
	Format Format
}

// Encode writes images as one ICO file, in the order given.
func Encode(w io.Writer, images []image.Image, opts *Options) error {
	if len(images) == 0 {
		return ErrNoImages
	}
	if len(images) > math.MaxUint16 {
		return fmt.Errorf("ico: too many images (%d)", len(images))
	}
	for i, img := range images {
		b := img.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			return fmt.Errorf("ico: image %d is empty", i)
		}
		if b.Dx() > MaxDimension || b.Dy() > MaxDimension {
			return fmt.Errorf("%w: image %d is %dx%d", ErrTooLarge, i, b.Dx(), b.Dy())
		}
	}

	format := FormatBMP
	if opts != nil && opts.Format != "" {
		format = opts.Format
	}

	switch format {
	case FormatBMP:
		return wrapLibraryError(goico.EncodeAll(w, images))
	case FormatPNG:
		return encodePNGEntries(w, images)
	default:
		return fmt.Errorf("%w: %q", ErrFormat, format)
	}
}

// encodePNGEntries writes an ICONDIR, one ICONDIRENTRY per image and the PNG
// streams after them. Width and height 256 are stored as 0.
func encodePNGEntries(w io.Writer, images []image.Image) error {
	payloads := make([][]byte, len(images))
	enc := png.Encoder{CompressionLevel: png.BestCompression}
	for i, img := range images {
		var buf bytes.Buffer
		if err := enc.Encode(&buf, img); err != nil {
			return fmt.Errorf("ico: encode image %d: %w", i, err)
		}
		payloads[i] = buf.Bytes()
	}

	bw := bufio.NewWriter(w)
	le := binary.LittleEndian

	header := make([]byte, 6)
	le.PutUint16(header[2:], 1)
	le.PutUint16(header[4:], uint16(len(images)))
	bw.Write(header)

	offset := len(header) + 16*len(images)
	entry := make([]byte, 16)
	for i, img := range images {
		b := img.Bounds()
		entry[0] = uint8(b.Dx() % MaxDimension)
		entry[1] = uint8(b.Dy() % MaxDimension)
		le.PutUint16(entry[4:], 1)
		le.PutUint16(entry[6:], 32)
		le.PutUint32(entry[8:], uint32(len(payloads[i])))
		le.PutUint32(entry[12:], uint32(offset))
		bw.Write(entry)
		offset += len(payloads[i])
	}

	for _, p := range payloads {
		bw.Write(p)
	}
	return bw.Flush()
}
