package outwriter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/RyanBlaney/sonido-modal/modal"
)

// Workbook sheet names
const (
	SheetResults      = "Results"
	SheetSpectrum     = "Spectrum"
	SheetDisplacement = "Displacement"
)

// WriteWorkbook writes the result table, the averaged spectrum and the
// displacement series of analysis as an XLSX workbook.
func WriteWorkbook(w io.Writer, analysis *modal.Analysis) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetResults); err != nil {
		return fmt.Errorf("failed to name results sheet: %w", err)
	}
	if err := writeResultsSheet(f, analysis); err != nil {
		return err
	}

	if analysis.Spectrum != nil {
		peakBins := make(map[int]bool, len(analysis.Peaks))
		for _, p := range analysis.Peaks {
			peakBins[p.Bin] = true
		}
		rows := make([][]any, len(analysis.Spectrum.Frequencies))
		for i, freq := range analysis.Spectrum.Frequencies {
			flag := 0
			if peakBins[i] {
				flag = 1
			}
			rows[i] = []any{freq, analysis.Spectrum.Magnitudes[i], flag}
		}
		if err := writeSheet(f, SheetSpectrum, []any{"frequency_hz", "magnitude", "modal_peak"}, rows); err != nil {
			return err
		}
	}

	if analysis.Displacement != nil {
		rows := make([][]any, analysis.Displacement.Len())
		for i, v := range analysis.Displacement.Values {
			rows[i] = []any{analysis.Displacement.Times[i], v}
		}
		if err := writeSheet(f, SheetDisplacement, []any{"time_s", "displacement_cm"}, rows); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeResultsSheet(f *excelize.File, analysis *modal.Analysis) error {
	header := make([]any, len(resultHeader))
	for i, h := range resultHeader {
		header[i] = h
	}

	rows := make([][]any, 0, len(analysis.Table)+2)
	for _, row := range analysis.Table {
		rows = append(rows, []any{row.Label, row.Frequency, optionalCell(row.LogPercent), optionalCell(row.HalfPercent)})
	}
	rows = append(rows,
		[]any{},
		[]any{"peak_displacement_cm", analysis.PeakDisplacement.Value, "at_time_s", analysis.PeakDisplacement.Time},
	)
	if analysis.NoModes {
		rows = append(rows, []any{"hint", analysis.Hint})
	}

	return writeSheet(f, SheetResults, header, rows)
}

func writeSheet(f *excelize.File, sheet string, header []any, rows [][]any) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}

func optionalCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
