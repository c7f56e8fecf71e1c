// Package profiling computes descriptive summaries of contingency
// tables. The profile feeds the analysis report; it carries no
// inferential statistics of its own.
package profiling

import (
	"chi2ind/domain/crosstab"

	"github.com/montanaflynn/stats"
)

// CellSummary describes the distribution of observed cell counts
type CellSummary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
}

// TableProfile summarizes a contingency table's shape and counts
type TableProfile struct {
	RowCategories int     `json:"row_categories"`
	ColCategories int     `json:"col_categories"`
	CellCount     int     `json:"cell_count"`
	GrandTotal    float64 `json:"grand_total"`
	ZeroCells     int     `json:"zero_cells"`

	Cells     CellSummary `json:"cells"`
	RowTotals []float64   `json:"row_totals"`
	ColTotals []float64   `json:"col_totals"`
}

// Profile computes the descriptive summary of the table
func Profile(table *crosstab.Table) TableProfile {
	flat := make([]float64, 0, table.NumCells())
	zeros := 0
	for _, cell := range table.Stack() {
		flat = append(flat, cell.Count)
		if cell.Count == 0 {
			zeros++
		}
	}

	min, _ := stats.Min(flat)
	max, _ := stats.Max(flat)
	mean, _ := stats.Mean(flat)
	median, _ := stats.Median(flat)
	stdDev, _ := stats.StandardDeviation(flat)

	return TableProfile{
		RowCategories: table.NumRows(),
		ColCategories: table.NumCols(),
		CellCount:     table.NumCells(),
		GrandTotal:    table.Total(),
		ZeroCells:     zeros,
		Cells: CellSummary{
			Min:    min,
			Max:    max,
			Mean:   mean,
			Median: median,
			StdDev: stdDev,
		},
		RowTotals: table.RowTotals(),
		ColTotals: table.ColTotals(),
	}
}
