package services

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"icoforge/internal/logger"
	"icoforge/internal/models"
)

// svgRasterSize is the box SVG sources are rendered into; it matches the
// largest icon size so every entry is a downscale.
const svgRasterSize = 256

var ErrUnsupportedFormat = errors.New("unsupported image format")

var supportedExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp", ".svg"}

// ImageService handles loading and decoding of source images
type ImageService struct {
	logger     logger.Logger
	repository *models.SessionRepository
}

// NewImageService creates a new image service
func NewImageService(log logger.Logger, repo *models.SessionRepository) *ImageService {
	return &ImageService{
		logger:     log,
		repository: repo,
	}
}

// SupportedExtensions returns the file extensions the file picker offers.
func SupportedExtensions() []string {
	return append([]string(nil), supportedExtensions...)
}

// IsSupported reports whether path has a known image extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range supportedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Load reads and decodes the image at path and makes it the session source.
func (is *ImageService) Load(ctx context.Context, path string) (*models.SourceImage, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	startTime := time.Now()

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	img, format, err := is.Decode(bufio.NewReader(file), path)
	if err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	bounds := img.Bounds()
	source := &models.SourceImage{
		Path:     path,
		Image:    img,
		Format:   format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		FileSize: info.Size(),
		LoadTime: time.Now(),
	}

	if is.repository != nil {
		is.repository.SetSource(source)
	}

	is.logger.Debug("ImageService", "source image loaded", map[string]interface{}{
		"path":     path,
		"format":   format,
		"width":    source.Width,
		"height":   source.Height,
		"bytes":    source.FileSize,
		"duration": time.Since(startTime).String(),
	})

	return source, nil
}

// Decode decodes r into an NRGBA image. name is only used to recognize SVG
// files by extension; content sniffing covers the rest.
func (is *ImageService) Decode(r io.Reader, name string) (*image.NRGBA, string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: file is empty", ErrUnsupportedFormat)
	}

	if strings.EqualFold(filepath.Ext(name), ".svg") || isSVGData(data) {
		img, err := rasterizeSVG(data, svgRasterSize)
		if err != nil {
			return nil, "", err
		}
		return img, "svg", nil
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	// imaging applies the EXIF orientation tag of JPEG files
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode %s image: %w", format, err)
	}

	return toNRGBA(img), format, nil
}

// toNRGBA converts any decoded image to non-premultiplied RGBA at the origin.
func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// isSVGData performs a lightweight detection of SVG content from raw bytes.
func isSVGData(data []byte) bool {
	n := len(data)
	if n > 4096 {
		n = 4096
	}
	head := bytes.ToLower(bytes.TrimSpace(data[:n]))
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) && bytes.Contains(head, []byte("<svg")))
}

// rasterizeSVG renders an SVG document into a transparent size x size box,
// keeping the aspect ratio of its view box.
func rasterizeSVG(data []byte, size int) (*image.NRGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse SVG: %v", ErrUnsupportedFormat, err)
	}

	w, h := size, size
	if vw, vh := icon.ViewBox.W, icon.ViewBox.H; vw > 0 && vh > 0 {
		if vw > vh {
			h = int(float64(size)*vh/vw + 0.5)
		} else if vh > vw {
			w = int(float64(size)*vw/vh + 0.5)
		}
	}
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	icon.SetTarget(0, 0, float64(w), float64(h))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.Transparent), image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(w, h, dst, dst.Bounds())
	dasher := rasterx.NewDasher(w, h, scanner)
	icon.Draw(dasher, 1.0)

	return toNRGBA(dst), nil
}
