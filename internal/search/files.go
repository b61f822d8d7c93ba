package search

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"github.com/klauspost/readahead"
)

// ErrNotText marks a file whose content is not valid UTF-8.
var ErrNotText = errors.New("not valid UTF-8 text")

const (
	// Files at least this large are read through a readahead reader.
	readaheadThreshold = 1 << 20
	readaheadBuffers   = 4
	readaheadSize      = 1 << 20
)

// readText reads the whole file at path.
func readText(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	var r io.Reader = f
	if info.Size() >= readaheadThreshold {
		ra, err := readahead.NewReaderSize(f, readaheadBuffers, readaheadSize)
		if err != nil {
			return "", fmt.Errorf("readahead %s: %w", path, err)
		}
		defer ra.Close()
		r = ra
	}

	buf := bytes.NewBuffer(make([]byte, 0, info.Size()+bytes.MinRead))
	if _, err := buf.ReadFrom(r); err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	if !utf8.Valid(buf.Bytes()) {
		return "", fmt.Errorf("%s: %w", path, ErrNotText)
	}
	return buf.String(), nil
}

// writeText replaces the content of the existing file at path.
func writeText(path, text string) error {
	return os.WriteFile(path, []byte(text), 0o644)
}
