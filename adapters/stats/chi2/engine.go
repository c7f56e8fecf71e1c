// Package chi2 wraps the chi-squared test of independence for dense
// contingency tables. It produces the statistic, p-value, degrees of
// freedom, expected frequencies, and both Pearson and standardized
// residuals in one pass, so post-hoc cell tests can run downstream.
package chi2

import (
	"math"

	"chi2ind/domain/crosstab"
	"chi2ind/internal/errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Lambda selects the statistic from the Cressie-Read power divergence
// family. LambdaPearson gives the ordinary chi-squared statistic.
type Lambda float64

const (
	LambdaPearson          Lambda = 1
	LambdaLogLikelihood    Lambda = 0
	LambdaFreemanTukey     Lambda = -0.5
	LambdaModLogLikelihood Lambda = -1
	LambdaNeyman           Lambda = -2
	LambdaCressieRead      Lambda = 2.0 / 3.0
)

// Options configures a single analysis run.
type Options struct {
	// Correction applies Yates' continuity correction. Only takes
	// effect on 2x2 tables (df == 1).
	Correction bool
	// Lambda chooses the power divergence statistic.
	Lambda Lambda
	// ShiftZeros adds 0.5 to every cell before residual computation
	// when the table contains a zero cell. The statistic itself is
	// computed from the unshifted counts.
	ShiftZeros bool
}

// DefaultOptions mirrors the scipy chi2_contingency defaults except for
// the continuity correction, which stays off unless asked for.
func DefaultOptions() Options {
	return Options{
		Correction: false,
		Lambda:     LambdaPearson,
		ShiftZeros: false,
	}
}

// Result holds the complete output of one chi-squared independence test.
// Produced once per analysis run and never mutated afterwards.
type Result struct {
	Statistic  float64
	PValue     float64
	DF         int
	EffectSize float64 // Cramer's V

	Expected         *mat.Dense
	PearsonResiduals *mat.Dense
	StdResiduals     *mat.Dense

	Table *crosstab.Table
}

// Engine computes chi-squared independence tests over contingency tables
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Analyze runs the chi-squared test of independence on the table
func (e *Engine) Analyze(table *crosstab.Table) (*Result, error) {
	if table == nil {
		return nil, errors.InvalidInput("contingency table is nil")
	}

	nr, nc := table.NumRows(), table.NumCols()
	rowTotals := table.RowTotals()
	colTotals := table.ColTotals()
	total := table.Total()

	for i, rt := range rowTotals {
		if rt == 0 {
			return nil, errors.UpstreamComputation("row category " + table.Rows()[i] + " has zero marginal total")
		}
	}
	for j, ct := range colTotals {
		if ct == 0 {
			return nil, errors.UpstreamComputation("column category " + table.Cols()[j] + " has zero marginal total")
		}
	}

	// Expected frequencies under independence
	expected := mat.NewDense(nr, nc, nil)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			expected.Set(i, j, rowTotals[i]*colTotals[j]/total)
		}
	}

	df := (nr - 1) * (nc - 1)

	observed := table.Counts()
	if e.opts.Correction && df == 1 {
		applyContinuityCorrection(observed, expected)
	}

	stat, err := powerDivergence(observed, expected, float64(e.opts.Lambda))
	if err != nil {
		return nil, err
	}

	chiDist := distuv.ChiSquared{K: float64(df)}
	pValue := 1 - chiDist.CDF(stat)
	if pValue < 0 {
		pValue = 0
	}

	pearson, stdres, err := e.residuals(table)
	if err != nil {
		return nil, err
	}

	// Cramer's V = sqrt(chi2 / (n * min(r-1, c-1)))
	minDim := math.Min(float64(nr-1), float64(nc-1))
	cramerV := math.Sqrt(stat / (total * minDim))

	return &Result{
		Statistic:        stat,
		PValue:           pValue,
		DF:               df,
		EffectSize:       cramerV,
		Expected:         expected,
		PearsonResiduals: pearson,
		StdResiduals:     stdres,
		Table:            table,
	}, nil
}

// residuals computes Pearson and standardized residuals. When the table
// contains a zero cell and ShiftZeros is on, every cell gets 0.5 added
// and the expected frequencies for the residuals are re-derived from the
// shifted table. The residual shift never touches the statistic.
func (e *Engine) residuals(table *crosstab.Table) (pearson, stdres *mat.Dense, err error) {
	counts := table.Counts()
	if hasZeroCell(counts) {
		if !e.opts.ShiftZeros {
			return nil, nil, errors.UpstreamComputation("table contains a zero cell; standardized residuals are undefined without the zero-cell shift")
		}
		for i := range counts {
			for j := range counts[i] {
				counts[i][j] += 0.5
			}
		}
	}

	nr, nc := len(counts), len(counts[0])
	rowTotals := make([]float64, nr)
	colTotals := make([]float64, nc)
	total := 0.0
	for i := range counts {
		for j, v := range counts[i] {
			rowTotals[i] += v
			colTotals[j] += v
			total += v
		}
	}

	pearson = mat.NewDense(nr, nc, nil)
	stdres = mat.NewDense(nr, nc, nil)
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			exp := rowTotals[i] * colTotals[j] / total
			diff := counts[i][j] - exp
			pearson.Set(i, j, diff/math.Sqrt(exp))

			// Standardized residual: Pearson residual rescaled by the
			// marginal proportions, approximately N(0,1) under
			// independence.
			denom := math.Sqrt(exp * (1 - rowTotals[i]/total) * (1 - colTotals[j]/total))
			stdres.Set(i, j, diff/denom)
		}
	}
	return pearson, stdres, nil
}

// applyContinuityCorrection moves each observed count 0.5 toward its
// expected value, clamped so a count never crosses its expectation.
func applyContinuityCorrection(observed [][]float64, expected *mat.Dense) {
	for i := range observed {
		for j := range observed[i] {
			diff := expected.At(i, j) - observed[i][j]
			shift := math.Min(0.5, math.Abs(diff))
			if diff > 0 {
				observed[i][j] += shift
			} else {
				observed[i][j] -= shift
			}
		}
	}
}

// powerDivergence computes the Cressie-Read family statistic
//
//	2/(lambda*(lambda+1)) * sum o * ((o/e)^lambda - 1)
//
// with the usual limit conventions at lambda=0 (G-test) and lambda=-1.
func powerDivergence(observed [][]float64, expected *mat.Dense, lambda float64) (float64, error) {
	stat := 0.0
	for i := range observed {
		for j, o := range observed[i] {
			e := expected.At(i, j)
			switch {
			case lambda == 0:
				// 2 * sum o*ln(o/e), with 0*ln(0) = 0
				if o > 0 {
					stat += 2 * o * math.Log(o/e)
				}
			case lambda == -1:
				// 2 * sum e*ln(e/o)
				if o == 0 {
					return 0, errors.UpstreamComputation("modified log-likelihood statistic is undefined for zero observed counts")
				}
				stat += 2 * e * math.Log(e/o)
			default:
				if o == 0 {
					if lambda < 0 {
						return 0, errors.UpstreamComputation("power divergence statistic is undefined for zero observed counts with negative lambda")
					}
					continue
				}
				stat += 2 / (lambda * (lambda + 1)) * o * (math.Pow(o/e, lambda) - 1)
			}
		}
	}
	return stat, nil
}

func hasZeroCell(counts [][]float64) bool {
	for i := range counts {
		for j := range counts[i] {
			if counts[i][j] == 0 {
				return true
			}
		}
	}
	return false
}
