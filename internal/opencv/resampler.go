package opencv

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"icoforge/internal/resample"
)

// AreaResampler downsizes with OpenCV's pixel area relation, which avoids
// moire when shrinking photographs by large factors.
type AreaResampler struct{}

func (AreaResampler) Name() string { return "area" }

func (AreaResampler) Resize(src image.Image, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", resample.ErrInvalidDimension, width, height)
	}

	in, err := NewMatFromImage(src)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	out := gocv.NewMat()
	in.mu.RLock()
	err = gocv.Resize(in.mat, &out, image.Pt(width, height), 0, 0, gocv.InterpolationArea)
	in.mu.RUnlock()
	if err != nil {
		out.Close()
		return nil, fmt.Errorf("opencv: resize: %w", err)
	}

	dst, err := wrap(out)
	if err != nil {
		return nil, err
	}
	defer dst.Close()

	return dst.ToImage()
}

// Register adds the OpenCV resamplers to registry.
func Register(registry *resample.Registry) error {
	return registry.Register(AreaResampler{})
}
