// Package outwriter renders modal analysis results to the terminal and to
// export files.
package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/RyanBlaney/sonido-modal/modal"
)

// Format is a terminal output format
type Format string

const (
	TableOut Format = "table"
	CSVOut   Format = "csv"
	JSONOut  Format = "json"
)

// ParseFormat validates an output format name
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return TableOut, nil
	case TableOut, CSVOut, JSONOut:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want table, csv or json)", name)
	}
}

// Report is the serializable summary of an analysis
type Report struct {
	Modes            modal.ResultTable      `json:"modes"`
	Frequencies      []float64              `json:"frequencies"`
	PeakDisplacement modal.PeakDisplacement `json:"peak_displacement"`
	NoModes          bool                   `json:"no_modes"`
	Hint             string                 `json:"hint,omitempty"`
}

// NewReport summarizes analysis
func NewReport(analysis *modal.Analysis) Report {
	return Report{
		Modes:            analysis.Table,
		Frequencies:      analysis.Table.Frequencies(),
		PeakDisplacement: analysis.PeakDisplacement,
		NoModes:          analysis.NoModes,
		Hint:             analysis.Hint,
	}
}

// PrintAnalysis writes the result table of analysis to w in format
func PrintAnalysis(w io.Writer, analysis *modal.Analysis, format Format, precision int) error {
	fmtFloat := createFormatter(precision)

	switch format {
	case JSONOut:
		if err := writeJSON(w, NewReport(analysis)); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case CSVOut:
		if err := writeResultsCSV(w, analysis.Table, fmtFloat); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	default:
		if err := writeResultsTable(w, analysis, fmtFloat); err != nil {
			return fmt.Errorf("error writing table output: %w", err)
		}
	}
	return nil
}

// ExportFile writes analysis to path, choosing the format from the
// extension: .xlsx, .parquet, .csv or .json. A parquet export also writes
// the spectrum next to the modes as <name>.spectrum.parquet.
func ExportFile(path string, analysis *modal.Analysis) error {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx":
		return writeWithFile(path, func(w io.Writer) error {
			return WriteWorkbook(w, analysis)
		})
	case ".parquet":
		if err := writeWithFile(path, func(w io.Writer) error {
			return WriteModesParquet(w, analysis.Table)
		}); err != nil {
			return err
		}
		spectrumPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".spectrum.parquet"
		return writeWithFile(spectrumPath, func(w io.Writer) error {
			return WriteSpectrumParquet(w, analysis)
		})
	case ".csv":
		return writeWithFile(path, func(w io.Writer) error {
			return writeResultsCSV(w, analysis.Table, createFormatter(2))
		})
	case ".json":
		return writeWithFile(path, func(w io.Writer) error {
			return writeJSON(w, NewReport(analysis))
		})
	default:
		return fmt.Errorf("unsupported export format %q (want .xlsx, .parquet, .csv or .json)", ext)
	}
}

// writeWithFile creates path, hands it to writer and closes it
func writeWithFile(path string, writer func(io.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := writer(file); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeResultsCSV(w io.Writer, table modal.ResultTable, fmtFloat func(float64) string) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(resultHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range table {
		record := []string{
			row.Label,
			fmtFloat(row.Frequency),
			fmtOptional(row.LogPercent, fmtFloat, ""),
			fmtOptional(row.HalfPercent, fmtFloat, ""),
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

var resultHeader = []string{"mode", "frequency_hz", "log_decrement_percent", "half_power_percent"}

func createFormatter(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}

func fmtOptional(v *float64, fmtFloat func(float64) string, missing string) string {
	if v == nil {
		return missing
	}
	return fmtFloat(*v)
}
