package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"icoforge/internal/ico"
)

func setupCLI(t *testing.T) (dir, configPath string) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("DEBUG", "")

	dir = t.TempDir()
	configPath = filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("resampler: catmullrom\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir, configPath
}

func writeSource(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestRun_ConvertsWithDefaultOutput(t *testing.T) {
	dir, cfg := setupCLI(t)
	input := filepath.Join(dir, "app.png")
	writeSource(t, input, 100, 100)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-i", input, "-s", "16,32,64", "--config", cfg}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr.String())
	}

	output := filepath.Join(dir, "app.ico")
	if !strings.Contains(stdout.String(), "Successfully converted") {
		t.Errorf("Expected success line, got %q", stdout.String())
	}

	entries := readEntries(t, output)
	if len(entries) != 3 || entries[2].Width != 64 {
		t.Errorf("Unexpected entries %v", entries)
	}
}

func readEntries(t *testing.T, path string) []ico.Entry {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Expected %s to exist: %v", path, err)
	}
	defer f.Close()
	entries, err := ico.ReadEntries(f)
	if err != nil {
		t.Fatal(err)
	}
	return entries
}

func TestRun_SizesFromConfig(t *testing.T) {
	dir, _ := setupCLI(t)
	cfg := filepath.Join(dir, "sizes.yaml")
	if err := os.WriteFile(cfg, []byte("allSizes: false\ndefaultSizes: [16, 32]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	input := filepath.Join(dir, "app.png")
	output := filepath.Join(dir, "app.ico")
	writeSource(t, input, 128, 128)

	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-i", input, "--config", cfg}, &stdout, &stderr); code != exitOK {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr.String())
	}
	want := []ico.Entry{{Width: 16, Height: 16}, {Width: 32, Height: 32}}
	if got := readEntries(t, output); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected entries %v, got %v", want, got)
	}

	// an explicit -s still wins over the config
	if code := run(context.Background(), []string{"-i", input, "-s", "48", "--config", cfg}, &stdout, &stderr); code != exitOK {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr.String())
	}
	if got := readEntries(t, output); len(got) != 1 || got[0].Width != 48 {
		t.Errorf("Expected a single 48x48 entry, got %v", got)
	}

	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("allSizes: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if code := run(context.Background(), []string{"-i", input, "--config", empty}, &stdout, &stderr); code != exitUsage {
		t.Errorf("Expected usage exit code with no sizes configured, got %d", code)
	}
}

func TestRun_PNGFormatAndInspect(t *testing.T) {
	dir, cfg := setupCLI(t)
	input := filepath.Join(dir, "in.png")
	output := filepath.Join(dir, "custom.ico")
	writeSource(t, input, 48, 48)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-i", input, "-o", output, "--format", "png", "--config", cfg}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("Expected exit code 0, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "skipped") {
		t.Errorf("Expected sizes above 48 to be reported as skipped, got %q", stdout.String())
	}

	stdout.Reset()
	code = run(context.Background(), []string{"--inspect", output}, &stdout, &stderr)
	if code != exitOK {
		t.Fatalf("Expected inspect to succeed, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stdout.String(), "3 entries") || !strings.Contains(stdout.String(), "#2 48x48") {
		t.Errorf("Unexpected inspect output %q", stdout.String())
	}
}

func TestRun_ExitCodes(t *testing.T) {
	dir, cfg := setupCLI(t)
	input := filepath.Join(dir, "in.png")
	writeSource(t, input, 32, 32)
	broken := filepath.Join(dir, "broken.jpg")
	if err := os.WriteFile(broken, []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"help", []string{"--help"}, exitOK},
		{"version", []string{"--version"}, exitOK},
		{"missing input flag", []string{"--config", cfg}, exitUsage},
		{"unknown flag", []string{"--bogus"}, exitUsage},
		{"bad sizes", []string{"-i", input, "-s", "16,abc", "--config", cfg}, exitUsage},
		{"non-square size", []string{"-i", input, "-s", "16x32", "--config", cfg}, exitUsage},
		{"unknown resampler", []string{"-i", input, "--resampler", "sinc", "--config", cfg}, exitUsage},
		{"unknown fit", []string{"-i", input, "--fit", "crop", "--config", cfg}, exitUsage},
		{"unknown format", []string{"-i", input, "--format", "gif", "--config", cfg}, exitUsage},
		{"extra argument", []string{"-i", input, "extra", "--config", cfg}, exitUsage},
		{"missing source", []string{"-i", filepath.Join(dir, "nope.png"), "--config", cfg}, exitFailure},
		{"broken source", []string{"-i", broken, "--config", cfg}, exitFailure},
		{"source too small", []string{"-i", input, "-s", "64", "--config", cfg}, exitFailure},
		{"inspect non-ico", []string{"--inspect", input}, exitFailure},
		{"missing config", []string{"-i", input, "--config", filepath.Join(dir, "none.yaml")}, exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := run(context.Background(), tt.args, &stdout, &stderr); got != tt.want {
				t.Errorf("Expected exit code %d, got %d (stderr: %s)", tt.want, got, stderr.String())
			}
		})
	}
}
