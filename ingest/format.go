// Package ingest turns recorder files into acceleration series in g.
package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-modal/timeseries"
)

var (
	// ErrUnsupportedFormat is returned for inputs no reader handles
	ErrUnsupportedFormat = errors.New("unsupported input format")

	// ErrMalformedInput is returned when a file of a supported kind cannot be decoded
	ErrMalformedInput = errors.New("malformed input")
)

// Kind enumerates the supported input formats
type Kind int

const (
	// KindText is a whitespace or comma separated numeric table
	KindText Kind = iota
	// KindMiniSEED is SEED data-only records (version 2)
	KindMiniSEED
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindMiniSEED:
		return "miniseed"
	default:
		return "unknown"
	}
}

// ParseKind maps a format name such as "txt" or "mseed" to a Kind
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "text", "txt", "dat", "csv":
		return KindText, nil
	case "miniseed", "mseed", "ms":
		return KindMiniSEED, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
	}
}

// KindFromPath selects the format from a file extension
func KindFromPath(path string) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, filepath.Base(path))
	}
	return ParseKind(ext)
}

// Options carries the calibration the file itself does not provide
type Options struct {
	SampleRate float64 `json:"sample_rate"` // Hz, single-column text only
	Count      float64 `json:"count"`       // counts per m/s² divisor for miniSEED
	SkipRows   int     `json:"skip_rows"`   // header lines of text files
}

// DefaultOptions returns the default ingestion options
func DefaultOptions() Options {
	return Options{
		SampleRate: 200,
		Count:      318976,
		SkipRows:   1,
	}
}

// Reader decodes one input format into an acceleration series in g
type Reader interface {
	Read(r io.Reader) (*timeseries.TimeSeries, error)
}

// NewReader returns the reader for kind
func NewReader(kind Kind, opts Options) (Reader, error) {
	switch kind {
	case KindText:
		return &TextReader{opts: opts}, nil
	case KindMiniSEED:
		return &MiniSEEDReader{opts: opts}, nil
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrUnsupportedFormat, int(kind))
	}
}

// Read decodes r as kind
func Read(r io.Reader, kind Kind, opts Options) (*timeseries.TimeSeries, error) {
	reader, err := NewReader(kind, opts)
	if err != nil {
		return nil, err
	}
	return reader.Read(r)
}

// ReadFile decodes the file at path, choosing the reader from its extension
func ReadFile(path string, opts Options) (*timeseries.TimeSeries, error) {
	kind, err := KindFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	series, err := Read(f, kind, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return series, nil
}
