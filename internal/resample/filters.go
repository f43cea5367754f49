package resample

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	xdraw "golang.org/x/image/draw"
)

func builtins() []Resampler {
	return []Resampler{
		&imagingResampler{name: "lanczos", filter: imaging.Lanczos},
		&imagingResampler{name: "box", filter: imaging.Box},
		&xdrawResampler{name: "catmullrom", interp: xdraw.CatmullRom},
		&xdrawResampler{name: "bilinear", interp: xdraw.BiLinear},
		&xdrawResampler{name: "nearest", interp: xdraw.NearestNeighbor},
		&nfntResampler{name: "mitchell", interp: resize.MitchellNetravali},
	}
}

// imagingResampler uses the separable convolution filters of disintegration/imaging.
type imagingResampler struct {
	name   string
	filter imaging.ResampleFilter
}

func (r *imagingResampler) Name() string { return r.name }

func (r *imagingResampler) Resize(src image.Image, width, height int) (image.Image, error) {
	if err := validateTarget(width, height); err != nil {
		return nil, err
	}
	return imaging.Resize(src, width, height, r.filter), nil
}

type xdrawResampler struct {
	name   string
	interp xdraw.Interpolator
}

func (r *xdrawResampler) Name() string { return r.name }

func (r *xdrawResampler) Resize(src image.Image, width, height int) (image.Image, error) {
	if err := validateTarget(width, height); err != nil {
		return nil, err
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	r.interp.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst, nil
}

type nfntResampler struct {
	name   string
	interp resize.InterpolationFunction
}

func (r *nfntResampler) Name() string { return r.name }

func (r *nfntResampler) Resize(src image.Image, width, height int) (image.Image, error) {
	if err := validateTarget(width, height); err != nil {
		return nil, err
	}
	return resize.Resize(uint(width), uint(height), src, r.interp), nil
}
