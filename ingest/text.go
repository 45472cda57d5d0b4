package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/RyanBlaney/sonido-modal/logging"
	"github.com/RyanBlaney/sonido-modal/timeseries"
)

// TextReader reads numeric tables of accelerations in m/s². A table holds
// either "time acc" rows or a single "acc" column sampled at
// Options.SampleRate. The first Options.SkipRows lines are headers; blank
// lines and lines starting with '#' are ignored.
type TextReader struct {
	opts Options
}

// NewTextReader creates a text reader
func NewTextReader(opts Options) *TextReader {
	return &TextReader{opts: opts}
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == ',' || r == ';'
}

// Read implements Reader
func (tr *TextReader) Read(r io.Reader) (*timeseries.TimeSeries, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var (
		times   []float64
		values  []float64
		columns int
		line    int
	)

	for scanner.Scan() {
		line++
		if line <= tr.opts.SkipRows {
			continue
		}

		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		fields := strings.FieldsFunc(text, isSeparator)
		if columns == 0 {
			columns = len(fields)
			if columns != 1 && columns != 2 {
				return nil, fmt.Errorf("%w: line %d: expected 1 or 2 columns, got %d", ErrMalformedInput, line, columns)
			}
		}
		if len(fields) != columns {
			return nil, fmt.Errorf("%w: line %d: expected %d columns, got %d", ErrMalformedInput, line, columns, len(fields))
		}

		nums := make([]float64, columns)
		for i, field := range fields {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedInput, line, err)
			}
			nums[i] = v
		}

		if columns == 2 {
			times = append(times, nums[0])
		}
		values = append(values, nums[columns-1]*timeseries.MPerS2ToG)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan text input: %w", err)
	}
	if len(values) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrMalformedInput, len(values))
	}

	var (
		series *timeseries.TimeSeries
		err    error
	)
	if columns == 2 {
		series, err = timeseries.FromSamples(times, values)
	} else {
		series, err = timeseries.New(values, tr.opts.SampleRate, 0)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	logging.Debug("Read text acceleration table", logging.Fields{
		"samples":     series.Len(),
		"columns":     columns,
		"sample_rate": series.SampleRate,
	})
	return series, nil
}
