// Package archive locates single entries inside zip-based package containers.
package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/klauspost/compress/zip"
)

// DefaultMaxEntrySize caps how many bytes are read from a matched entry.
const DefaultMaxEntrySize int64 = 16 << 20

var (
	// ErrEntryNotFound is returned when no entry name matches the pattern.
	ErrEntryNotFound = errors.New("no matching archive entry")

	// ErrEntryTooLarge is returned when the matched entry exceeds the size cap.
	ErrEntryTooLarge = errors.New("archive entry exceeds size limit")
)

// OpenError reports a path that could not be opened as a zip archive.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open archive %q: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Entry is a matched archive member and its full content.
type Entry struct {
	Name string
	Data []byte
}

// Scanner reads the first entry of a zip archive whose name matches a pattern.
type Scanner struct {
	maxEntrySize int64
}

// NewScanner creates a Scanner. A non-positive limit selects DefaultMaxEntrySize.
func NewScanner(maxEntrySize int64) *Scanner {
	if maxEntrySize <= 0 {
		maxEntrySize = DefaultMaxEntrySize
	}
	return &Scanner{maxEntrySize: maxEntrySize}
}

// Find opens the archive at path and returns the first entry, in central
// directory order, whose name matches pattern. Scanning stops at that entry.
// The archive and entry stream are closed before Find returns.
func (s *Scanner) Find(ctx context.Context, path string, pattern *regexp.Regexp) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	rc, err := zip.OpenReader(path)
	if err != nil {
		return Entry{}, &OpenError{Path: path, Err: err}
	}
	defer rc.Close()

	for _, f := range rc.File {
		if !pattern.MatchString(f.Name) {
			continue
		}
		data, err := s.read(f)
		if err != nil {
			return Entry{}, fmt.Errorf("reading %q in %q: %w", f.Name, path, err)
		}
		return Entry{Name: f.Name, Data: data}, nil
	}

	return Entry{}, fmt.Errorf("%w in %q (pattern %q)", ErrEntryNotFound, path, pattern)
}

func (s *Scanner) read(f *zip.File) ([]byte, error) {
	if f.UncompressedSize64 > uint64(s.maxEntrySize) {
		return nil, ErrEntryTooLarge
	}

	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()

	// The header size can lie; never read past the cap.
	data, err := io.ReadAll(io.LimitReader(r, s.maxEntrySize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.maxEntrySize {
		return nil, ErrEntryTooLarge
	}
	return data, nil
}
