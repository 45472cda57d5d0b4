package outwriter

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/RyanBlaney/sonido-modal/modal"
)

// ModeRecord is one row of the result table in a Parquet file
type ModeRecord struct {
	// Label is "mode N"
	Label string `parquet:"label,snappy"`

	// FrequencyHz is the modal frequency
	FrequencyHz float64 `parquet:"frequency_hz,snappy"`

	// LogDecrementPercent is the log-decrement damping ratio (nullable)
	LogDecrementPercent *float64 `parquet:"log_decrement_percent,optional,snappy"`

	// HalfPowerPercent is the half-power damping ratio (nullable)
	HalfPowerPercent *float64 `parquet:"half_power_percent,optional,snappy"`
}

// SpectrumRecord is one bin of the averaged spectrum
type SpectrumRecord struct {
	FrequencyHz float64 `parquet:"frequency_hz,snappy"`
	Magnitude   float64 `parquet:"magnitude,snappy"`
	ModalPeak   bool    `parquet:"modal_peak,snappy"`
}

// WriteModesParquet writes table as ModeRecord rows
func WriteModesParquet(w io.Writer, table modal.ResultTable) error {
	records := make([]ModeRecord, len(table))
	for i, row := range table {
		records[i] = ModeRecord{
			Label:               row.Label,
			FrequencyHz:         row.Frequency,
			LogDecrementPercent: row.LogPercent,
			HalfPowerPercent:    row.HalfPercent,
		}
	}
	return writeParquet(w, records)
}

// WriteSpectrumParquet writes the averaged spectrum of analysis, flagging
// the bins selected as modal peaks.
func WriteSpectrumParquet(w io.Writer, analysis *modal.Analysis) error {
	if analysis.Spectrum == nil {
		return writeParquet(w, []SpectrumRecord{})
	}

	peakBins := make(map[int]bool, len(analysis.Peaks))
	for _, p := range analysis.Peaks {
		peakBins[p.Bin] = true
	}

	records := make([]SpectrumRecord, analysis.Spectrum.Len())
	for i := range records {
		records[i] = SpectrumRecord{
			FrequencyHz: analysis.Spectrum.Frequencies[i],
			Magnitude:   analysis.Spectrum.Magnitudes[i],
			ModalPeak:   peakBins[i],
		}
	}
	return writeParquet(w, records)
}

func writeParquet[T any](w io.Writer, records []T) error {
	// The schema is derived from the struct tags of T
	writer := parquet.NewGenericWriter[T](w)

	if _, err := writer.Write(records); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}
