package ingest

import (
	"encoding/binary"
	"fmt"

	"github.com/RyanBlaney/sonido-modal/logging"
)

const (
	steimFrameSize = 64
	steimWords     = steimFrameSize / 4
)

// signExtend interprets the low bits of v as a two's complement integer
func signExtend(v uint32, bits uint) int32 {
	shift := 32 - bits
	return int32(v<<shift) >> shift
}

// unpackDiffs splits the low width*count bits of w into count signed
// differences, most significant first.
func unpackDiffs(dst []int32, w uint32, count int, width uint) []int32 {
	mask := uint32(1)<<width - 1
	for i := count - 1; i >= 0; i-- {
		dst = append(dst, signExtend((w>>(uint(i)*width))&mask, width))
	}
	return dst
}

// decodeSteim decodes Steim1 (level 1) or Steim2 (level 2) compressed
// frames into numSamples integer samples. Frames are always big endian.
func decodeSteim(data []byte, numSamples, level int) ([]int32, error) {
	if len(data) < steimFrameSize {
		return nil, fmt.Errorf("%w: steim data shorter than one frame", ErrMalformedInput)
	}

	diffs := make([]int32, 0, numSamples+8)
	var first, last int32

	for frame := 0; frame*steimFrameSize+steimFrameSize <= len(data) && len(diffs) < numSamples; frame++ {
		words := data[frame*steimFrameSize : (frame+1)*steimFrameSize]
		control := binary.BigEndian.Uint32(words[0:4])

		for i := 1; i < steimWords; i++ {
			w := binary.BigEndian.Uint32(words[i*4 : i*4+4])
			nibble := (control >> (30 - 2*uint(i))) & 0x3

			if frame == 0 && i == 1 {
				first = int32(w)
				continue
			}
			if frame == 0 && i == 2 {
				last = int32(w)
				continue
			}

			var err error
			diffs, err = unpackSteimWord(diffs, w, nibble, level)
			if err != nil {
				return nil, err
			}
		}
	}

	if len(diffs) < numSamples {
		return nil, fmt.Errorf("%w: steim frames hold %d samples, header declares %d", ErrMalformedInput, len(diffs), numSamples)
	}

	// the first difference refers to the previous record and is skipped
	samples := make([]int32, numSamples)
	samples[0] = first
	for i := 1; i < numSamples; i++ {
		samples[i] = samples[i-1] + diffs[i]
	}

	if samples[numSamples-1] != last {
		logging.Warn("Steim reverse integration constant mismatch", logging.Fields{
			"expected": last,
			"decoded":  samples[numSamples-1],
		})
	}
	return samples, nil
}

func unpackSteimWord(diffs []int32, w, nibble uint32, level int) ([]int32, error) {
	switch nibble {
	case 0:
		return diffs, nil
	case 1:
		return unpackDiffs(diffs, w, 4, 8), nil
	}

	if level == 1 {
		if nibble == 2 {
			return unpackDiffs(diffs, w, 2, 16), nil
		}
		return append(diffs, int32(w)), nil
	}

	dnib := w >> 30
	if nibble == 2 {
		switch dnib {
		case 1:
			return unpackDiffs(diffs, w, 1, 30), nil
		case 2:
			return unpackDiffs(diffs, w, 2, 15), nil
		case 3:
			return unpackDiffs(diffs, w, 3, 10), nil
		}
	} else {
		switch dnib {
		case 0:
			return unpackDiffs(diffs, w, 5, 6), nil
		case 1:
			return unpackDiffs(diffs, w, 6, 5), nil
		case 2:
			return unpackDiffs(diffs, w, 7, 4), nil
		}
	}
	return nil, fmt.Errorf("%w: invalid steim2 sub-code %d for nibble %d", ErrMalformedInput, dnib, nibble)
}
