package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"icoforge/internal/ico"
	"icoforge/internal/logger"
	"icoforge/internal/models"
	"icoforge/internal/resample"
)

var (
	ErrNoSizes       = errors.New("no icon sizes selected")
	ErrNoUsableSizes = errors.New("source image is smaller than every selected size")
	ErrBusy          = errors.New("a conversion is already running")
)

// ConversionService turns a source image into a multi-size ICO file.
type ConversionService struct {
	images     *ImageService
	resamplers *resample.Registry
	repository *models.SessionRepository
	logger     logger.Logger

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc

	totalConverted int64
	totalTime      time.Duration
}

// NewConversionService creates a new conversion service
func NewConversionService(images *ImageService, resamplers *resample.Registry, repo *models.SessionRepository, log logger.Logger) *ConversionService {
	return &ConversionService{
		images:     images,
		resamplers: resamplers,
		repository: repo,
		logger:     log,
	}
}

// Convert implements convert(source_path, output_path, sizes). Sizes above
// the shorter source edge are skipped; the output file is only replaced
// once every entry has been encoded.
func (cs *ConversionService) Convert(ctx context.Context, req models.ConversionRequest) (*models.ConversionResult, error) {
	ctx, err := cs.begin(ctx)
	if err != nil {
		return nil, err
	}
	defer cs.end()

	startTime := time.Now()

	if req.SourcePath == "" {
		return nil, fmt.Errorf("no source image given")
	}
	if req.OutputPath == "" {
		return nil, fmt.Errorf("no output path given")
	}

	sizes, err := models.NormalizeSizes(req.Sizes)
	if err != nil {
		return nil, err
	}
	if len(sizes) == 0 {
		return nil, ErrNoSizes
	}

	rs, err := cs.resamplers.Get(req.Resampler)
	if err != nil {
		return nil, err
	}
	fit, err := resample.ParseFit(req.Fit)
	if err != nil {
		return nil, err
	}
	format, err := ico.ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	source, err := cs.loadSource(ctx, req.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}

	planned, skipped := planSizes(sizes, source.MinEdge())
	if len(planned) == 0 {
		return nil, fmt.Errorf("%w (%dx%d source, smallest size %s)", ErrNoUsableSizes, source.Width, source.Height, sizes[0])
	}

	entries, err := cs.resizeAll(ctx, source.Image, planned, fit, rs)
	if err != nil {
		return nil, err
	}

	outputPath, err := filepath.Abs(req.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("write output: %w", err)
	}

	var written int64
	err = writeFileAtomic(outputPath, func(w io.Writer) error {
		cw := &countingWriter{w: w}
		if err := ico.Encode(cw, entries, &ico.Options{Format: format}); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		written = cw.n
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &models.ConversionResult{
		SourcePath: source.Path,
		OutputPath: outputPath,
		Skipped:    skipped,
		Resampler:  rs.Name(),
		Fit:        string(fit),
		Format:     string(format),
		FileSize:   written,
		Elapsed:    time.Since(startTime),
	}

	stored, err := readEntries(outputPath)
	if err != nil {
		return nil, fmt.Errorf("verify output: %w", err)
	}
	if len(stored) != len(planned) {
		return nil, fmt.Errorf("verify output: %d entries stored, %d planned", len(stored), len(planned))
	}
	for i, e := range stored {
		result.Entries = append(result.Entries, models.EntryInfo{
			Size:   planned[i],
			Width:  e.Width,
			Height: e.Height,
		})
	}

	cs.record(result)

	cs.logger.Info("ConversionService", "conversion finished", map[string]interface{}{
		"source":    result.SourcePath,
		"output":    result.OutputPath,
		"entries":   len(result.Entries),
		"skipped":   len(result.Skipped),
		"resampler": result.Resampler,
		"fit":       result.Fit,
		"format":    result.Format,
		"bytes":     result.FileSize,
		"duration":  result.Elapsed.String(),
	})

	return result, nil
}

func (cs *ConversionService) loadSource(ctx context.Context, path string) (*models.SourceImage, error) {
	if cs.repository != nil {
		if cached := cs.repository.SourceFor(path); cached != nil {
			// reuse only when the file is unchanged since it was loaded
			if info, err := os.Stat(path); err == nil && info.Size() == cached.FileSize && !info.ModTime().After(cached.LoadTime) {
				return cached, nil
			}
		}
	}
	return cs.images.Load(ctx, path)
}

// planSizes splits sizes into those the source can fill and those it cannot.
func planSizes(sizes []models.IconSize, minEdge int) (planned, skipped []models.IconSize) {
	for _, size := range sizes {
		if int(size) > minEdge {
			skipped = append(skipped, size)
			continue
		}
		planned = append(planned, size)
	}
	return planned, skipped
}

// resizeAll produces one entry per size. Work runs concurrently; the
// returned slice follows the order of sizes.
func (cs *ConversionService) resizeAll(ctx context.Context, src image.Image, sizes []models.IconSize, fit resample.Fit, rs resample.Resampler) ([]image.Image, error) {
	entries := make([]image.Image, len(sizes))

	g, gctx := errgroup.WithContext(ctx)
	for i, size := range sizes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := resample.Thumbnail(src, int(size), fit, rs)
			if err != nil {
				return fmt.Errorf("resize %s: %w", size, err)
			}
			entries[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (cs *ConversionService) begin(ctx context.Context) (context.Context, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.active {
		return nil, ErrBusy
	}
	ctx, cancel := context.WithCancel(ctx)
	cs.active = true
	cs.cancel = cancel
	return ctx, nil
}

func (cs *ConversionService) end() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.cancel != nil {
		cs.cancel()
	}
	cs.active = false
	cs.cancel = nil
}

func (cs *ConversionService) record(result *models.ConversionResult) {
	cs.mu.Lock()
	cs.totalConverted++
	cs.totalTime += result.Elapsed
	cs.mu.Unlock()

	if cs.repository != nil {
		cs.repository.AddResult(*result)
	}
}

// IsConverting reports whether a conversion is in progress
func (cs *ConversionService) IsConverting() bool {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.active
}

// CancelConversion aborts the running conversion, if any
func (cs *ConversionService) CancelConversion() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if cs.cancel != nil {
		cs.cancel()
	}
}

// ConversionStats summarizes the conversions finished by this service
type ConversionStats struct {
	TotalConverted int64
	AverageTime    time.Duration
}

func (cs *ConversionService) GetConversionStats() ConversionStats {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	stats := ConversionStats{TotalConverted: cs.totalConverted}
	if cs.totalConverted > 0 {
		stats.AverageTime = cs.totalTime / time.Duration(cs.totalConverted)
	}
	return stats
}

// Resamplers lists the filter names a request may use
func (cs *ConversionService) Resamplers() []string {
	return cs.resamplers.Names()
}

// Shutdown cancels any running conversion
func (cs *ConversionService) Shutdown() {
	cs.CancelConversion()
}
