// Package posthoc flags which cells of a contingency table drive a
// significant chi-squared result, by testing each standardized residual
// against two-tailed critical z-values.
package posthoc

import (
	"chi2ind/domain/crosstab"
	"chi2ind/internal/errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// FrequencyRecord is one contingency-table cell with its observed
// frequency and post-hoc significance flag. Records are emitted in the
// row-major flattening order of the source table and never mutated
// after creation.
type FrequencyRecord struct {
	Row         string  `json:"row"`
	Col         string  `json:"col"`
	Frequency   float64 `json:"frequency"`
	Significant bool    `json:"significant"`
}

// Correction adjusts the significance level for multiple comparisons.
// Only the identity strategy ships with this package; the interface is
// the extension point for Bonferroni-style strategies supplied by
// callers.
type Correction interface {
	Name() string
	// Adjust maps the requested alpha to the per-cell alpha given the
	// number of simultaneous comparisons.
	Adjust(alpha float64, comparisons int) float64
}

// NoCorrection leaves alpha untouched.
type NoCorrection struct{}

func (NoCorrection) Name() string { return "none" }

func (NoCorrection) Adjust(alpha float64, comparisons int) float64 { return alpha }

// Tester performs the post-hoc residual significance test
type Tester struct {
	correction Correction
}

// NewTester creates a tester with no multiple-comparison correction
func NewTester() *Tester {
	return &Tester{correction: NoCorrection{}}
}

// NewTesterWithCorrection creates a tester using the given correction strategy
func NewTesterWithCorrection(c Correction) *Tester {
	if c == nil {
		c = NoCorrection{}
	}
	return &Tester{correction: c}
}

// Correction returns the active correction strategy
func (t *Tester) Correction() Correction {
	return t.correction
}

// CriticalValues returns the two-tailed critical z-values for alpha:
// lower = Phi^-1(alpha/2), upper = Phi^-1(1 - alpha/2).
func CriticalValues(alpha float64) (lower, upper float64, err error) {
	if !(alpha > 0 && alpha < 1) {
		return 0, 0, errors.InvalidInputf("alpha must be in (0, 1), got %g", alpha)
	}
	lower = distuv.UnitNormal.Quantile(alpha / 2)
	upper = distuv.UnitNormal.Quantile(1 - alpha/2)
	return lower, upper, nil
}

// TestResiduals tests every standardized residual for significance.
//
// A cell is significant when its residual falls strictly outside the
// two-tailed critical interval; a residual exactly on a boundary is not
// significant. The output carries one record per table cell in row-major
// order. The function is pure: same inputs, same records.
func (t *Tester) TestResiduals(table *crosstab.Table, stdResiduals mat.Matrix, alpha float64) ([]FrequencyRecord, error) {
	if table == nil {
		return nil, errors.InvalidInput("contingency table is nil")
	}
	if stdResiduals == nil {
		return nil, errors.InvalidInput("standardized residual matrix is nil")
	}
	nr, nc := stdResiduals.Dims()
	if nr != table.NumRows() || nc != table.NumCols() {
		return nil, errors.InvalidInputf("residual matrix is %dx%d but table is %dx%d",
			nr, nc, table.NumRows(), table.NumCols())
	}

	effAlpha := t.correction.Adjust(alpha, table.NumCells())
	lowerZ, upperZ, err := CriticalValues(effAlpha)
	if err != nil {
		return nil, err
	}

	records := make([]FrequencyRecord, 0, table.NumCells())
	for i, rowCat := range table.Rows() {
		for j, colCat := range table.Cols() {
			r := stdResiduals.At(i, j)
			records = append(records, FrequencyRecord{
				Row:         rowCat,
				Col:         colCat,
				Frequency:   table.Count(i, j),
				Significant: r < lowerZ || r > upperZ,
			})
		}
	}
	return records, nil
}
