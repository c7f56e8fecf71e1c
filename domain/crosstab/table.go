package crosstab

import (
	"math"

	"chi2ind/internal/errors"
)

// Cell is one observation of a contingency table: a (row category,
// column category) pair with its observed count.
type Cell struct {
	Row   string  `json:"row"`
	Col   string  `json:"col"`
	Count float64 `json:"count"`
}

// Table is a dense rectangular contingency table. Row and column
// category order is fixed at construction and drives the row-major
// flattening order used by every downstream stage. Immutable after
// construction: constructors and accessors copy.
type Table struct {
	rows   []string
	cols   []string
	counts [][]float64
}

// New builds a table from ordered category names and a dense counts
// matrix with one row per row category and one column per column category.
func New(rows, cols []string, counts [][]float64) (*Table, error) {
	if len(rows) < 2 || len(cols) < 2 {
		return nil, errors.InvalidInputf("contingency table must be at least 2x2, got %dx%d", len(rows), len(cols))
	}
	if err := checkUnique(rows, "row"); err != nil {
		return nil, err
	}
	if err := checkUnique(cols, "column"); err != nil {
		return nil, err
	}
	if len(counts) != len(rows) {
		return nil, errors.InvalidInputf("counts have %d rows, expected %d", len(counts), len(rows))
	}

	copied := make([][]float64, len(rows))
	for i, row := range counts {
		if len(row) != len(cols) {
			return nil, errors.InvalidInputf("counts row %d has %d cells, expected %d", i, len(row), len(cols))
		}
		copied[i] = make([]float64, len(cols))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.InvalidInputf("cell (%s, %s) is not a finite count", rows[i], cols[j])
			}
			if v < 0 {
				return nil, errors.InvalidInputf("cell (%s, %s) has negative count %g", rows[i], cols[j], v)
			}
			copied[i][j] = v
		}
	}

	return &Table{
		rows:   append([]string(nil), rows...),
		cols:   append([]string(nil), cols...),
		counts: copied,
	}, nil
}

// NewFromCells builds a table from individual cell observations.
// Category order follows first appearance in the input. The table must
// come out dense: every (row, col) pair appears exactly once.
func NewFromCells(cells []Cell) (*Table, error) {
	var rows, cols []string
	rowIdx := map[string]int{}
	colIdx := map[string]int{}
	for _, c := range cells {
		if _, ok := rowIdx[c.Row]; !ok {
			rowIdx[c.Row] = len(rows)
			rows = append(rows, c.Row)
		}
		if _, ok := colIdx[c.Col]; !ok {
			colIdx[c.Col] = len(cols)
			cols = append(cols, c.Col)
		}
	}
	if len(rows) < 2 || len(cols) < 2 {
		return nil, errors.InvalidInputf("contingency table must be at least 2x2, got %dx%d", len(rows), len(cols))
	}

	counts := make([][]float64, len(rows))
	seen := make([][]bool, len(rows))
	for i := range counts {
		counts[i] = make([]float64, len(cols))
		seen[i] = make([]bool, len(cols))
	}
	for _, c := range cells {
		i, j := rowIdx[c.Row], colIdx[c.Col]
		if seen[i][j] {
			return nil, errors.InvalidInputf("duplicate cell (%s, %s)", c.Row, c.Col)
		}
		seen[i][j] = true
		counts[i][j] = c.Count
	}
	for i := range seen {
		for j := range seen[i] {
			if !seen[i][j] {
				return nil, errors.InvalidInputf("missing cell (%s, %s): table must be dense", rows[i], cols[j])
			}
		}
	}

	return New(rows, cols, counts)
}

// Rows returns the ordered row category names
func (t *Table) Rows() []string {
	return append([]string(nil), t.rows...)
}

// Cols returns the ordered column category names
func (t *Table) Cols() []string {
	return append([]string(nil), t.cols...)
}

// NumRows returns the number of row categories
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of column categories
func (t *Table) NumCols() int { return len(t.cols) }

// NumCells returns the total number of table cells
func (t *Table) NumCells() int { return len(t.rows) * len(t.cols) }

// Count returns the observed count at position (i, j)
func (t *Table) Count(i, j int) float64 {
	return t.counts[i][j]
}

// Counts returns a copy of the dense counts matrix
func (t *Table) Counts() [][]float64 {
	out := make([][]float64, len(t.counts))
	for i, row := range t.counts {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// Total returns the grand total of all counts
func (t *Table) Total() float64 {
	total := 0.0
	for _, row := range t.counts {
		for _, v := range row {
			total += v
		}
	}
	return total
}

// RowTotals returns the marginal totals per row category
func (t *Table) RowTotals() []float64 {
	totals := make([]float64, len(t.rows))
	for i, row := range t.counts {
		for _, v := range row {
			totals[i] += v
		}
	}
	return totals
}

// ColTotals returns the marginal totals per column category
func (t *Table) ColTotals() []float64 {
	totals := make([]float64, len(t.cols))
	for _, row := range t.counts {
		for j, v := range row {
			totals[j] += v
		}
	}
	return totals
}

// Stack flattens the table into cells in row-major order, the canonical
// ordering shared with residual matrices and frequency records.
func (t *Table) Stack() []Cell {
	cells := make([]Cell, 0, t.NumCells())
	for i, rowCat := range t.rows {
		for j, colCat := range t.cols {
			cells = append(cells, Cell{Row: rowCat, Col: colCat, Count: t.counts[i][j]})
		}
	}
	return cells
}

func checkUnique(names []string, kind string) error {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			return errors.InvalidInputf("duplicate %s category %q", kind, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
