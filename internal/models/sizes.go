package models

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// IconSize is the edge length in pixels of a square icon entry.
type IconSize int

// MaxIconSize is the largest edge an ICO directory entry can describe.
const MaxIconSize IconSize = 256

// StandardSizes are the sizes offered by the size selector, smallest first.
var StandardSizes = []IconSize{16, 32, 48, 64, 128, 256}

var ErrInvalidSize = errors.New("invalid icon size")

func (s IconSize) String() string {
	return fmt.Sprintf("%dx%d", int(s), int(s))
}

// Valid reports whether s fits in an ICO directory entry.
func (s IconSize) Valid() bool {
	return s > 0 && s <= MaxIconSize
}

// NormalizeSizes returns sizes sorted ascending with duplicates removed.
func NormalizeSizes(sizes []IconSize) ([]IconSize, error) {
	seen := make(map[IconSize]bool, len(sizes))
	normalized := make([]IconSize, 0, len(sizes))

	for _, size := range sizes {
		if !size.Valid() {
			return nil, fmt.Errorf("%w: %d (must be 1-%d)", ErrInvalidSize, int(size), int(MaxIconSize))
		}
		if seen[size] {
			continue
		}
		seen[size] = true
		normalized = append(normalized, size)
	}

	sort.Slice(normalized, func(i, j int) bool { return normalized[i] < normalized[j] })
	return normalized, nil
}

// ParseSizes reads "all" or a comma separated list such as "16,32,48".
// Entries may also be written as "32x32".
func ParseSizes(list string) ([]IconSize, error) {
	list = strings.TrimSpace(list)
	if list == "" || strings.EqualFold(list, "all") {
		return append([]IconSize(nil), StandardSizes...), nil
	}

	var sizes []IconSize
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		if w, h, ok := strings.Cut(strings.ToLower(part), "x"); ok {
			if w != h {
				return nil, fmt.Errorf("%w: %q is not square", ErrInvalidSize, part)
			}
			part = w
		}

		value, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSize, part)
		}
		sizes = append(sizes, IconSize(value))
	}

	if len(sizes) == 0 {
		return nil, fmt.Errorf("%w: no sizes in %q", ErrInvalidSize, list)
	}

	return NormalizeSizes(sizes)
}

// SizesFromInts converts config values into icon sizes.
func SizesFromInts(values []int) []IconSize {
	sizes := make([]IconSize, len(values))
	for i, v := range values {
		sizes[i] = IconSize(v)
	}
	return sizes
}
