package ico

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"testing"
)

const pngMagic = "\x89PNG\r\n\x1a\n"

// newTestImage returns a w x h image with an opaque red left half and a
// fully transparent right half.
func newTestImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w/2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 10, B: 20, A: 255})
		}
	}
	return img
}

type rawEntry struct {
	width, height int
	size, offset  int
}

func readRawDirectory(t *testing.T, data []byte) []rawEntry {
	t.Helper()
	le := binary.LittleEndian
	if !bytes.Equal(data[:4], []byte{0, 0, 1, 0}) {
		t.Fatalf("Unexpected ICONDIR header % x", data[:4])
	}
	count := int(le.Uint16(data[4:]))
	entries := make([]rawEntry, count)
	for i := range entries {
		d := data[6+16*i:]
		entries[i] = rawEntry{
			width:  int(d[0]),
			height: int(d[1]),
			size:   int(le.Uint32(d[8:])),
			offset: int(le.Uint32(d[12:])),
		}
	}
	return entries
}

func TestEncode_PNGEntries(t *testing.T) {
	imgs := []image.Image{newTestImage(16, 16), newTestImage(32, 32), newTestImage(256, 256)}

	var buf bytes.Buffer
	if err := Encode(&buf, imgs, &Options{Format: FormatPNG}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data := buf.Bytes()

	entries := readRawDirectory(t, data)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	// 256 is stored as 0 in the directory
	wantSizes := []int{16, 32, 0}
	offset := 6 + 3*16
	for i, e := range entries {
		if e.width != wantSizes[i] || e.height != wantSizes[i] {
			t.Errorf("Entry %d: expected %dx%d, got %dx%d", i, wantSizes[i], wantSizes[i], e.width, e.height)
		}
		if e.offset != offset {
			t.Errorf("Entry %d: expected offset %d, got %d", i, offset, e.offset)
		}
		if got := string(data[e.offset : e.offset+8]); got != pngMagic {
			t.Errorf("Entry %d: expected png payload, got % x", i, got)
		}
		offset += e.size
	}
	if offset != len(data) {
		t.Errorf("Entries cover %d bytes, file has %d", offset, len(data))
	}
}

func TestEncode_BMPEntriesWithPNGAt256(t *testing.T) {
	imgs := []image.Image{newTestImage(16, 16), newTestImage(48, 48), newTestImage(256, 256)}

	var buf bytes.Buffer
	if err := Encode(&buf, imgs, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	data := buf.Bytes()

	entries := readRawDirectory(t, data)
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}
	for i, e := range entries[:2] {
		if string(data[e.offset:e.offset+8]) == pngMagic {
			t.Errorf("Entry %d: expected bmp payload, got png", i)
		}
	}
	last := entries[2]
	if last.width != 0 || last.height != 0 {
		t.Errorf("Expected 256x256 entry to be stored as 0x0, got %dx%d", last.width, last.height)
	}
	if string(data[last.offset:last.offset+8]) != pngMagic {
		t.Error("Expected 256x256 entry to be stored as png")
	}
}

func TestEncodeDecode_PreservesPixels(t *testing.T) {
	for _, format := range []Format{FormatPNG, FormatBMP} {
		t.Run(string(format), func(t *testing.T) {
			src := newTestImage(48, 48)

			var buf bytes.Buffer
			if err := Encode(&buf, []image.Image{src}, &Options{Format: format}); err != nil {
				t.Fatalf("Encode failed: %v", err)
			}

			imgs, err := DecodeAll(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("DecodeAll failed: %v", err)
			}
			if len(imgs) != 1 {
				t.Fatalf("Expected 1 image, got %d", len(imgs))
			}

			got := imgs[0]
			if got.Bounds().Dx() != 48 || got.Bounds().Dy() != 48 {
				t.Fatalf("Expected 48x48, got %v", got.Bounds())
			}

			opaque := color.NRGBAModel.Convert(got.At(3, 40)).(color.NRGBA)
			if opaque != (color.NRGBA{R: 200, G: 10, B: 20, A: 255}) {
				t.Errorf("Expected opaque red pixel, got %v", opaque)
			}
			clear := color.NRGBAModel.Convert(got.At(40, 3)).(color.NRGBA)
			if clear.A != 0 {
				t.Errorf("Expected transparent pixel, got %v", clear)
			}
		})
	}
}

func TestReadEntries(t *testing.T) {
	imgs := []image.Image{newTestImage(16, 16), newTestImage(32, 16), newTestImage(256, 256)}

	var buf bytes.Buffer
	if err := Encode(&buf, imgs, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	entries, err := ReadEntries(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	want := []string{"16x16", "32x16", "256x256"}
	if len(entries) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.String() != want[i] {
			t.Errorf("Entry %d: expected %s, got %s", i, want[i], e)
		}
	}
}

func TestEncode_Errors(t *testing.T) {
	tests := []struct {
		name string
		imgs []image.Image
		opts *Options
		want error
	}{
		{name: "no images", imgs: nil, want: ErrNoImages},
		{name: "too large", imgs: []image.Image{newTestImage(257, 16)}, want: ErrTooLarge},
		{name: "bad format", imgs: []image.Image{newTestImage(16, 16)}, opts: &Options{Format: "gif"}, want: ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Encode(&bytes.Buffer{}, tt.imgs, tt.opts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestDecodeAll_RejectsInvalidData(t *testing.T) {
	var valid bytes.Buffer
	if err := Encode(&valid, []image.Image{newTestImage(16, 16)}, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{name: "empty", data: nil},
		{name: "png file", data: []byte(pngMagic)},
		{name: "cursor type", data: []byte{0, 0, 2, 0, 1, 0}},
		{name: "zero images", data: []byte{0, 0, 1, 0, 0, 0}},
		{name: "truncated payload", data: valid.Bytes()[:valid.Len()-10]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeAll(bytes.NewReader(tt.data)); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}

	if _, err := ReadEntries(bytes.NewReader([]byte(pngMagic + "0000000000"))); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat for a PNG file, got %v", err)
	}
}

func TestImageDecode_UsesRegisteredFormat(t *testing.T) {
	var buf bytes.Buffer
	imgs := []image.Image{newTestImage(16, 16), newTestImage(64, 64)}
	if err := Encode(&buf, imgs, nil); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("DecodeConfig failed: %v", err)
	}
	if format != "ico" || cfg.Width != 64 || cfg.Height != 64 {
		t.Errorf("Expected ico 64x64, got %s %dx%d", format, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if img.Bounds().Dx() != 64 {
		t.Errorf("Expected largest entry to be returned, got %v", img.Bounds())
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(""); err != nil || f != FormatBMP {
		t.Errorf("Expected bmp default, got %q, %v", f, err)
	}
	if f, err := ParseFormat("PNG"); err != nil || f != FormatPNG {
		t.Errorf("Expected png, got %q, %v", f, err)
	}
	if _, err := ParseFormat("jpeg"); !errors.Is(err, ErrFormat) {
		t.Errorf("Expected ErrFormat, got %v", err)
	}
}
