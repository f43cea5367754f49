package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"icoforge/internal/ico"
)

// writeFileAtomic writes through a temporary file in the destination
// directory and renames it over path once write succeeds.
func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".icoforge-*.tmp")
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

func readEntries(path string) ([]ico.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ico.ReadEntries(f)
}

// Inspect decodes an existing ICO file and lists its entries.
func Inspect(path string) ([]ico.Entry, error) {
	entries, err := readEntries(path)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", path, err)
	}
	return entries, nil
}
