package profiling

import (
	"math"
	"testing"

	"chi2ind/domain/crosstab"
)

func TestProfile(t *testing.T) {
	table, err := crosstab.New(
		[]string{"A", "B"},
		[]string{"X", "Y"},
		[][]float64{{50, 10}, {0, 60}},
	)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}

	p := Profile(table)

	if p.RowCategories != 2 || p.ColCategories != 2 || p.CellCount != 4 {
		t.Errorf("unexpected shape: %+v", p)
	}
	if p.GrandTotal != 120 {
		t.Errorf("expected grand total 120, got %g", p.GrandTotal)
	}
	if p.ZeroCells != 1 {
		t.Errorf("expected 1 zero cell, got %d", p.ZeroCells)
	}
	if p.Cells.Min != 0 || p.Cells.Max != 60 {
		t.Errorf("expected min 0 max 60, got %+v", p.Cells)
	}
	if math.Abs(p.Cells.Mean-30) > 1e-9 {
		t.Errorf("expected mean 30, got %g", p.Cells.Mean)
	}
	if math.Abs(p.Cells.Median-30) > 1e-9 {
		t.Errorf("expected median 30, got %g", p.Cells.Median)
	}
	if p.RowTotals[0] != 60 || p.ColTotals[0] != 50 {
		t.Errorf("unexpected marginals: rows %v cols %v", p.RowTotals, p.ColTotals)
	}
}
