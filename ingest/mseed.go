package ingest

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/logging"
	"github.com/RyanBlaney/sonido-modal/timeseries"
)

const (
	fixedHeaderSize = 48
	minRecordLength = 128
	maxRecordLength = 1 << 20
)

// Data encodings of blockette 1000
const (
	EncodingInt16   = 1
	EncodingInt32   = 3
	EncodingFloat32 = 4
	EncodingFloat64 = 5
	EncodingSteim1  = 10
	EncodingSteim2  = 11
)

// Trace is a contiguous run of samples from one channel, in counts
type Trace struct {
	ID         string // NET.STA.LOC.CHA
	Start      time.Time
	SampleRate float64
	Samples    []float64
}

// End returns the time the sample after the last one would have
func (t *Trace) End() time.Time {
	return t.Start.Add(time.Duration(float64(len(t.Samples)) / t.SampleRate * float64(time.Second)))
}

// MiniSEEDReader reads SEED version 2 data records carrying blockette 1000.
// The first contiguous trace in the file is converted from counts to g with
// the calibration count and mean-removed.
type MiniSEEDReader struct {
	opts Options
}

// NewMiniSEEDReader creates a miniSEED reader
func NewMiniSEEDReader(opts Options) *MiniSEEDReader {
	return &MiniSEEDReader{opts: opts}
}

// Read implements Reader
func (mr *MiniSEEDReader) Read(r io.Reader) (*timeseries.TimeSeries, error) {
	if !(mr.opts.Count > 0) || math.IsInf(mr.opts.Count, 0) {
		return nil, common.NewConfigurationError("count", mr.opts.Count, "calibration count must be positive")
	}

	trace, err := ReadTrace(r)
	if err != nil {
		return nil, err
	}

	divisor := timeseries.CountGravityMPerS2 * mr.opts.Count
	values := make([]float64, len(trace.Samples))
	for i, v := range trace.Samples {
		values[i] = v / divisor
	}

	series, err := timeseries.New(common.RemoveMean(values), trace.SampleRate, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}

	logging.Debug("Read miniSEED trace", logging.Fields{
		"id":          trace.ID,
		"start":       trace.Start.Format(time.RFC3339Nano),
		"samples":     series.Len(),
		"sample_rate": series.SampleRate,
	})
	return series, nil
}

// ReadTrace decodes records from r and returns the first contiguous trace.
// Records of other channels are skipped; a gap, overlap or sample rate
// change in the first channel ends the trace.
func ReadTrace(r io.Reader) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read miniSEED input: %w", err)
	}

	var trace *Trace
	for offset := 0; offset+fixedHeaderSize <= len(data); {
		rec, err := parseRecord(data[offset:])
		if err != nil {
			return nil, fmt.Errorf("record at byte %d: %w", offset, err)
		}
		offset += rec.length

		switch {
		case trace == nil:
			trace = &Trace{
				ID:         rec.id,
				Start:      rec.start,
				SampleRate: rec.sampleRate,
				Samples:    rec.samples,
			}
		case rec.id != trace.ID:
			continue
		case rec.sampleRate != trace.SampleRate || !contiguous(trace, rec):
			return trace, nil
		default:
			trace.Samples = append(trace.Samples, rec.samples...)
		}
	}

	if trace == nil || len(trace.Samples) == 0 {
		return nil, fmt.Errorf("%w: no data records", ErrMalformedInput)
	}
	return trace, nil
}

// contiguous reports whether rec starts within half a sample of the trace end
func contiguous(trace *Trace, rec *record) bool {
	gap := rec.start.Sub(trace.End()).Seconds()
	return math.Abs(gap) <= 0.5/trace.SampleRate
}

type record struct {
	id         string
	start      time.Time
	sampleRate float64
	length     int
	samples    []float64
}

func parseRecord(buf []byte) (*record, error) {
	if len(buf) < fixedHeaderSize {
		return nil, fmt.Errorf("%w: truncated fixed header", ErrMalformedInput)
	}
	switch buf[6] {
	case 'D', 'R', 'Q', 'M':
	default:
		return nil, fmt.Errorf("%w: not a data record (quality %q)", ErrMalformedInput, buf[6])
	}

	order := headerByteOrder(buf)

	year := order.Uint16(buf[20:22])
	day := order.Uint16(buf[22:24])
	fract := order.Uint16(buf[28:30])
	start := time.Date(int(year), time.January, 1, int(buf[24]), int(buf[25]), int(buf[26]), int(fract)*100000, time.UTC).
		AddDate(0, 0, int(day)-1)

	numSamples := int(order.Uint16(buf[30:32]))
	sampleRate := nominalRate(int16(order.Uint16(buf[32:34])), int16(order.Uint16(buf[34:36])))
	numBlockettes := int(buf[39])
	dataOffset := int(order.Uint16(buf[44:46]))
	next := int(order.Uint16(buf[46:48]))

	rec := &record{
		id:    recordID(buf),
		start: start,
	}

	var (
		encoding  = -1
		dataOrder binary.ByteOrder
	)
	for i := 0; i < numBlockettes && next != 0; i++ {
		if next+4 > len(buf) {
			return nil, fmt.Errorf("%w: blockette offset %d beyond record", ErrMalformedInput, next)
		}
		kind := order.Uint16(buf[next : next+2])
		following := int(order.Uint16(buf[next+2 : next+4]))

		switch kind {
		case 100:
			if next+8 <= len(buf) {
				if actual := float64(math.Float32frombits(order.Uint32(buf[next+4 : next+8]))); actual > 0 {
					sampleRate = actual
				}
			}
		case 1000:
			if next+8 > len(buf) {
				return nil, fmt.Errorf("%w: truncated blockette 1000", ErrMalformedInput)
			}
			encoding = int(buf[next+4])
			dataOrder = binary.LittleEndian
			if buf[next+5] == 1 {
				dataOrder = binary.BigEndian
			}
			exp := int(buf[next+6])
			if exp < 7 || exp > 20 {
				return nil, fmt.Errorf("%w: record length exponent %d", ErrMalformedInput, exp)
			}
			rec.length = 1 << exp
		}
		next = following
	}

	if encoding < 0 {
		return nil, fmt.Errorf("%w: record without blockette 1000", ErrMalformedInput)
	}
	if rec.length < minRecordLength || rec.length > maxRecordLength || rec.length > len(buf) {
		return nil, fmt.Errorf("%w: record length %d with %d bytes left", ErrMalformedInput, rec.length, len(buf))
	}
	if numSamples > 0 && !(sampleRate > 0) {
		return nil, fmt.Errorf("%w: record without a sample rate", ErrMalformedInput)
	}
	if dataOffset < fixedHeaderSize || dataOffset > rec.length {
		return nil, fmt.Errorf("%w: data offset %d", ErrMalformedInput, dataOffset)
	}
	rec.sampleRate = sampleRate

	samples, err := decodeSamples(buf[dataOffset:rec.length], numSamples, encoding, dataOrder)
	if err != nil {
		return nil, err
	}
	rec.samples = samples
	return rec, nil
}

// headerByteOrder detects the header word order from the start year
func headerByteOrder(buf []byte) binary.ByteOrder {
	year := binary.BigEndian.Uint16(buf[20:22])
	if year >= 1900 && year <= 2500 {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func recordID(buf []byte) string {
	field := func(b []byte) string { return strings.TrimSpace(string(b)) }
	return strings.Join([]string{
		field(buf[18:20]), // network
		field(buf[8:13]),  // station
		field(buf[13:15]), // location
		field(buf[15:18]), // channel
	}, ".")
}

// nominalRate decodes the sample rate factor and multiplier of the fixed header
func nominalRate(factor, multiplier int16) float64 {
	f, m := float64(factor), float64(multiplier)
	switch {
	case factor == 0:
		return 0
	case multiplier == 0:
		m = 1
	}
	switch {
	case f > 0 && m > 0:
		return f * m
	case f > 0 && m < 0:
		return -f / m
	case f < 0 && m > 0:
		return -m / f
	default:
		return 1 / (f * m)
	}
}

func decodeSamples(data []byte, numSamples, encoding int, order binary.ByteOrder) ([]float64, error) {
	out := make([]float64, numSamples)

	width := 0
	switch encoding {
	case EncodingInt16:
		width = 2
	case EncodingInt32, EncodingFloat32:
		width = 4
	case EncodingFloat64:
		width = 8
	case EncodingSteim1, EncodingSteim2:
		if numSamples == 0 {
			return out, nil
		}
		ints, err := decodeSteim(data, numSamples, encoding-EncodingSteim1+1)
		if err != nil {
			return nil, err
		}
		for i, v := range ints {
			out[i] = float64(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: miniSEED encoding %d", ErrUnsupportedFormat, encoding)
	}

	if numSamples*width > len(data) {
		return nil, fmt.Errorf("%w: %d samples of %d bytes exceed %d data bytes", ErrMalformedInput, numSamples, width, len(data))
	}

	for i := range out {
		b := data[i*width : (i+1)*width]
		switch encoding {
		case EncodingInt16:
			out[i] = float64(int16(order.Uint16(b)))
		case EncodingInt32:
			out[i] = float64(int32(order.Uint32(b)))
		case EncodingFloat32:
			out[i] = float64(math.Float32frombits(order.Uint32(b)))
		case EncodingFloat64:
			out[i] = math.Float64frombits(order.Uint64(b))
		}
	}
	return out, nil
}
