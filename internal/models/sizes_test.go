package models

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseSizes(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []IconSize
		wantErr bool
	}{
		{name: "all keyword", input: "all", want: StandardSizes},
		{name: "empty means all", input: "  ", want: StandardSizes},
		{name: "comma list", input: "32,16,48", want: []IconSize{16, 32, 48}},
		{name: "duplicates removed", input: "32, 32,16", want: []IconSize{16, 32}},
		{name: "square notation", input: "16x16,256x256", want: []IconSize{16, 256}},
		{name: "non square rejected", input: "16x32", wantErr: true},
		{name: "too large", input: "512", wantErr: true},
		{name: "zero", input: "0", wantErr: true},
		{name: "not a number", input: "big", wantErr: true},
		{name: "only commas", input: ",,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSizes(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Expected error for %q, got %v", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidSize) {
					t.Errorf("Expected ErrInvalidSize, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseSizes(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseSizes_AllReturnsCopy(t *testing.T) {
	sizes, err := ParseSizes("all")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	sizes[0] = 999

	if StandardSizes[0] != 16 {
		t.Fatalf("StandardSizes was modified through ParseSizes result: %v", StandardSizes)
	}
}

func TestIconSize_String(t *testing.T) {
	if got := IconSize(48).String(); got != "48x48" {
		t.Errorf("Expected '48x48', got %q", got)
	}
}
