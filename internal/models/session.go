package models

import (
	"sort"
	"sync"
)

// SessionRepository holds the state of the current window: the loaded
// source image, the size selection and the recent conversion results.
type SessionRepository struct {
	mu         sync.RWMutex
	source     *SourceImage
	allSizes   bool
	selected   map[IconSize]bool
	history    []ConversionResult
	maxHistory int
}

// NewSessionRepository creates a session with the given initial selection.
func NewSessionRepository(allSizes bool, selected []IconSize) *SessionRepository {
	r := &SessionRepository{
		allSizes:   allSizes,
		selected:   make(map[IconSize]bool),
		maxHistory: 10,
	}
	for _, size := range selected {
		if size.Valid() {
			r.selected[size] = true
		}
	}
	return r
}

// SetSource stores the most recently loaded source image
func (r *SessionRepository) SetSource(src *SourceImage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = src
}

// Source returns the loaded source image, or nil
func (r *SessionRepository) Source() *SourceImage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.source
}

// SourceFor returns the loaded source only when it was read from path.
func (r *SessionRepository) SourceFor(path string) *SourceImage {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.source == nil || r.source.Path != path {
		return nil
	}
	return r.source
}

func (r *SessionRepository) ClearSource() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = nil
}

func (r *SessionRepository) SetAllSizes(all bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.allSizes = all
}

func (r *SessionRepository) AllSizes() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.allSizes
}

// SetSizeSelected records the state of one individual size checkbox.
func (r *SessionRepository) SetSizeSelected(size IconSize, selected bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if selected {
		r.selected[size] = true
	} else {
		delete(r.selected, size)
	}
}

// IsSizeSelected reports the individual checkbox state, ignoring "All Sizes".
func (r *SessionRepository) IsSizeSelected(size IconSize) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selected[size]
}

// SelectedSizes returns the sizes a conversion should produce, ascending.
// With "All Sizes" on this is every standard size regardless of the
// individual checkboxes.
func (r *SessionRepository) SelectedSizes() []IconSize {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.allSizes {
		return append([]IconSize(nil), StandardSizes...)
	}

	sizes := make([]IconSize, 0, len(r.selected))
	for size := range r.selected {
		sizes = append(sizes, size)
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })
	return sizes
}

// AddResult appends a finished conversion to the bounded history
func (r *SessionRepository) AddResult(result ConversionResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.history = append(r.history, result)
	if len(r.history) > r.maxHistory {
		r.history = r.history[len(r.history)-r.maxHistory:]
	}
}

// LatestResult returns the most recent conversion, or nil
func (r *SessionRepository) LatestResult() *ConversionResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.history) == 0 {
		return nil
	}
	latest := r.history[len(r.history)-1]
	return &latest
}

// History returns a copy of the recorded conversions, oldest first
func (r *SessionRepository) History() []ConversionResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	history := make([]ConversionResult, len(r.history))
	copy(history, r.history)
	return history
}
