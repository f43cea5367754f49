package resample

import (
	"fmt"
	"image"
	"math"
	"strings"

	xdraw "golang.org/x/image/draw"
)

// Fit decides how a non-square source maps onto a square icon size.
type Fit string

const (
	// FitPad scales to fit and centers the result on a transparent square.
	FitPad Fit = "pad"
	// FitContain scales to fit and keeps the aspect ratio, so entries of
	// non-square sources are not square.
	FitContain Fit = "contain"
	// FitStretch ignores the aspect ratio.
	FitStretch Fit = "stretch"
)

// DefaultFit is used when a request does not name a fit mode.
const DefaultFit = FitPad

func ParseFit(name string) (Fit, error) {
	switch Fit(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultFit, nil
	case FitPad:
		return FitPad, nil
	case FitContain:
		return FitContain, nil
	case FitStretch:
		return FitStretch, nil
	default:
		return "", fmt.Errorf("unknown fit mode %q (want pad, contain or stretch)", name)
	}
}

// Thumbnail produces the entry for one icon size.
func Thumbnail(src image.Image, size int, fit Fit, rs Resampler) (image.Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDimension, size)
	}

	if fit == FitStretch {
		return rs.Resize(src, size, size)
	}

	w, h := containSize(src.Bounds().Dx(), src.Bounds().Dy(), size)
	scaled, err := rs.Resize(src, w, h)
	if err != nil {
		return nil, err
	}

	if fit == FitContain || (w == size && h == size) {
		return scaled, nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	offset := image.Pt((size-w)/2, (size-h)/2)
	xdraw.Draw(dst, image.Rectangle{Min: offset, Max: offset.Add(image.Pt(w, h))}, scaled, scaled.Bounds().Min, xdraw.Src)
	return dst, nil
}

// containSize scales srcW x srcH to fit in a size x size box, never below 1px.
func containSize(srcW, srcH, size int) (int, int) {
	if srcW <= 0 || srcH <= 0 || srcW == srcH {
		return size, size
	}

	scale := math.Min(float64(size)/float64(srcW), float64(size)/float64(srcH))
	w := int(math.Round(float64(srcW) * scale))
	h := int(math.Round(float64(srcH) * scale))
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	return w, h
}
