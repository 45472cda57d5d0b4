package outwriter

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/RyanBlaney/sonido-modal/modal"
)

var (
	missingColor = color.New(color.FgYellow)
	warnColor    = color.New(color.FgRed, color.Bold)
	labelColor   = color.New(color.FgCyan)
)

// writeResultsTable prints one row per mode followed by the peak displacement
func writeResultsTable(w io.Writer, analysis *modal.Analysis, fmtFloat func(float64) string) error {
	if analysis.NoModes {
		_, err := fmt.Fprintf(w, "%s %s\n", warnColor.Sprint("No modes found:"), analysis.Hint)
		if err != nil {
			return err
		}
		return writeDisplacementLine(w, analysis, fmtFloat)
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Mode", "Frequency (Hz)", "Log decrement (%)", "Half-power (%)"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	missing := missingColor.Sprint("n/a")
	var data [][]string
	for _, row := range analysis.Table {
		data = append(data, []string{
			labelColor.Sprint(row.Label),
			fmtFloat(row.Frequency),
			fmtOptional(row.LogPercent, fmtFloat, missing),
			fmtOptional(row.HalfPercent, fmtFloat, missing),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	return writeDisplacementLine(w, analysis, fmtFloat)
}

func writeDisplacementLine(w io.Writer, analysis *modal.Analysis, fmtFloat func(float64) string) error {
	_, err := fmt.Fprintf(w, "Peak displacement %s cm at %s s\n",
		fmtFloat(analysis.PeakDisplacement.Value), fmtFloat(analysis.PeakDisplacement.Time))
	return err
}
