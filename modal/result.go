package modal

import (
	"fmt"
	"sort"

	"github.com/RyanBlaney/sonido-modal/algorithms/common"
	"github.com/RyanBlaney/sonido-modal/algorithms/damping"
	"github.com/RyanBlaney/sonido-modal/algorithms/peaks"
)

// ResultRow is one identified mode. Damping ratios are in percent; a nil
// ratio means the method produced no value for this mode.
type ResultRow struct {
	Label       string   `json:"label"`
	Frequency   float64  `json:"frequency"`
	LogPercent  *float64 `json:"log_decrement_percent"`
	HalfPercent *float64 `json:"half_power_percent"`
}

// ResultTable is the ordered list of identified modes
type ResultTable []ResultRow

// Frequencies returns the row frequencies in table order
func (t ResultTable) Frequencies() []float64 {
	out := make([]float64, len(t))
	for i, row := range t {
		out[i] = row.Frequency
	}
	return out
}

// Aggregate merges the detected peaks and their damping estimates into a
// table sorted by ascending frequency, rounded to two decimals and labelled
// "mode 1" through "mode n". estimates must pair one-to-one with set.
func Aggregate(set peaks.ModalPeakSet, estimates []damping.Estimate) (ResultTable, error) {
	if len(set) != len(estimates) {
		return nil, common.NewComputationError("aggregation",
			fmt.Sprintf("%d peaks but %d damping estimates", len(set), len(estimates)))
	}

	order := make([]int, len(set))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return set[order[a]].Frequency < set[order[b]].Frequency
	})

	table := make(ResultTable, len(set))
	for rank, i := range order {
		table[rank] = ResultRow{
			Label:       fmt.Sprintf("mode %d", rank+1),
			Frequency:   common.Round(set[i].Frequency, 2),
			LogPercent:  roundedPercent(estimates[i].LogDecrement),
			HalfPercent: roundedPercent(estimates[i].HalfPower),
		}
	}
	return table, nil
}

func roundedPercent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := common.Round(*v, 2)
	return &r
}
