package models

import (
	"image"
	"time"
)

// SourceImage is a decoded input image together with what was learned while loading it.
type SourceImage struct {
	Path     string
	Image    image.Image
	Format   string
	Width    int
	Height   int
	FileSize int64
	LoadTime time.Time
}

// MinEdge is the shorter side of the source; no entry is produced above it.
func (s *SourceImage) MinEdge() int {
	if s.Width < s.Height {
		return s.Width
	}
	return s.Height
}

// ConversionRequest describes one convert(source, output, sizes) call.
type ConversionRequest struct {
	SourcePath string
	OutputPath string
	Sizes      []IconSize

	// Resampler, Fit and Format name the resize filter, the fit mode and
	// the entry encoding. Empty values select the service defaults.
	Resampler string
	Fit       string
	Format    string
}

// EntryInfo describes one image written into the output file.
type EntryInfo struct {
	Size   IconSize
	Width  int
	Height int
}

// ConversionResult contains the outcome of a successful conversion.
type ConversionResult struct {
	SourcePath string
	OutputPath string
	Entries    []EntryInfo
	Skipped    []IconSize
	Resampler  string
	Fit        string
	Format     string
	FileSize   int64
	Elapsed    time.Duration
}

// Sizes lists the sizes actually written, in file order.
func (r *ConversionResult) Sizes() []IconSize {
	sizes := make([]IconSize, len(r.Entries))
	for i, e := range r.Entries {
		sizes[i] = e.Size
	}
	return sizes
}
