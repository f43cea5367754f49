// Package resample scales source images down to icon sizes.
package resample

import (
	"errors"
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
)

// DefaultResampler is used when a request does not name one.
const DefaultResampler = "lanczos"

var (
	ErrUnknownResampler = errors.New("unknown resampler")
	ErrInvalidDimension = errors.New("invalid target dimension")
)

// Resampler scales src to exactly width x height.
type Resampler interface {
	Name() string
	Resize(src image.Image, width, height int) (image.Image, error)
}

// Registry maps resampler names to implementations.
type Registry struct {
	mu         sync.RWMutex
	resamplers map[string]Resampler
}

func NewRegistry() *Registry {
	return &Registry{resamplers: make(map[string]Resampler)}
}

// NewDefaultRegistry returns a registry holding every pure Go resampler.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rs := range builtins() {
		// names are unique by construction
		_ = r.Register(rs)
	}
	return r
}

// Register adds rs under its name. Names are case-insensitive.
func (r *Registry) Register(rs Resampler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToLower(rs.Name())
	if name == "" {
		return fmt.Errorf("resampler has no name")
	}
	if _, exists := r.resamplers[name]; exists {
		return fmt.Errorf("resampler %q already registered", name)
	}
	r.resamplers[name] = rs
	return nil
}

// Get looks up a resampler; the empty name selects DefaultResampler.
func (r *Registry) Get(name string) (Resampler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = DefaultResampler
	}
	rs, ok := r.resamplers[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownResampler, name, strings.Join(r.namesLocked(), ", "))
	}
	return rs, nil
}

// Names lists registered resamplers alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.namesLocked()
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.resamplers))
	for name := range r.resamplers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateTarget(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}
	return nil
}
