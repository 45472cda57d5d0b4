package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RyanBlaney/sonido-modal/timeseries"
)

func TestKindFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Kind
		err  bool
	}{
		{"record.txt", KindText, false},
		{"RECORD.DAT", KindText, false},
		{"dir/record.csv", KindText, false},
		{"record.mseed", KindMiniSEED, false},
		{"record.miniseed", KindMiniSEED, false},
		{"record.ms", KindMiniSEED, false},
		{"record.gcf", 0, true},
		{"record.wav", 0, true},
		{"record", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			kind, err := KindFromPath(tt.path)
			if tt.err {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}

	assert.Equal(t, "miniseed", KindMiniSEED.String())
	assert.Equal(t, "text", KindText.String())

	_, err := NewReader(Kind(7), DefaultOptions())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
}

func TestTextTwoColumns(t *testing.T) {
	input := "time acc\n0.00 9.80665\n0.01 0\n0.02 -9.80665\n\n# trailing comment\n0.03 0\n"

	series, err := Read(strings.NewReader(input), KindText, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 4, series.Len())
	assert.InDelta(t, 100, series.SampleRate, 1e-9)
	assert.InDelta(t, 0.03, series.Times[3], 1e-12)
	assert.InDelta(t, 1.0, series.Values[0], 1e-5)
	assert.InDelta(t, -1.0, series.Values[2], 1e-5)
	assert.InDelta(t, 9.80665*timeseries.MPerS2ToG, series.Values[0], 1e-12)
}

func TestTextSingleColumnUsesSampleRate(t *testing.T) {
	opts := DefaultOptions()
	opts.SampleRate = 50
	opts.SkipRows = 0

	series, err := Read(strings.NewReader("1\n2\n3\n"), KindText, opts)
	require.NoError(t, err)

	assert.Equal(t, 50.0, series.SampleRate)
	assert.InDeltaSlice(t, []float64{0, 0.02, 0.04}, series.Times, 1e-12)
	assert.InDelta(t, 3*timeseries.MPerS2ToG, series.Values[2], 1e-12)
}

func TestTextCommaSeparated(t *testing.T) {
	series, err := Read(strings.NewReader("t,a\n0,1\n0.5,2\n1.0,3\n"), KindText, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 2, series.SampleRate, 1e-12)
	assert.Equal(t, 3, series.Len())
}

func TestTextMalformed(t *testing.T) {
	tests := map[string]string{
		"bad number":  "h\n0 1\n0.1 x\n",
		"ragged":      "h\n0 1\n0.1\n",
		"too many":    "h\n0 1 2\n",
		"non-uniform": "h\n0 1\n0.1 1\n0.5 1\n",
		"too short":   "h\n0 1\n",
		"header only": "time acc\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Read(strings.NewReader(input), KindText, DefaultOptions())
			assert.True(t, errors.Is(err, ErrMalformedInput), "got %v", err)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "floor3.txt")
	require.NoError(t, os.WriteFile(path, []byte("time acc\n0 1\n0.005 2\n0.010 3\n"), 0o644))

	series, err := ReadFile(path, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 200, series.SampleRate, 1e-9)

	_, err = ReadFile(filepath.Join(dir, "floor3.gcf"), DefaultOptions())
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))

	_, err = ReadFile(filepath.Join(dir, "missing.txt"), DefaultOptions())
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
