package chi2

import (
	"math"
	"testing"

	"chi2ind/domain/crosstab"
	"chi2ind/internal/errors"
)

func mustTable(t *testing.T, rows, cols []string, counts [][]float64) *crosstab.Table {
	t.Helper()
	table, err := crosstab.New(rows, cols, counts)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return table
}

// Strongly associated 2x2 table: expected counts are all 30, so the
// Pearson statistic is 4 * 20^2/30 = 53.333.
func strongTable(t *testing.T) *crosstab.Table {
	return mustTable(t,
		[]string{"A", "B"},
		[]string{"X", "Y"},
		[][]float64{{50, 10}, {10, 50}},
	)
}

func TestAnalyze_StrongAssociation(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	result, err := engine.Analyze(strongTable(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(result.Statistic-53.3333333) > 1e-6 {
		t.Errorf("expected statistic 53.333, got %f", result.Statistic)
	}
	if result.DF != 1 {
		t.Errorf("expected df=1, got %d", result.DF)
	}
	// Critical value for df=1 at alpha=0.05
	if result.Statistic <= 3.841 {
		t.Errorf("statistic %f should exceed critical value 3.841", result.Statistic)
	}
	if result.PValue > 1e-10 {
		t.Errorf("expected near-zero p-value, got %g", result.PValue)
	}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(result.Expected.At(i, j)-30) > 1e-9 {
				t.Errorf("expected frequency (%d,%d) should be 30, got %f", i, j, result.Expected.At(i, j))
			}
		}
	}

	// Standardized residuals: 20/sqrt(30 * 0.5 * 0.5) = 7.302967
	want := 7.302967
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			got := math.Abs(result.StdResiduals.At(i, j))
			if math.Abs(got-want) > 1e-5 {
				t.Errorf("std residual (%d,%d): expected |%f|, got %f", i, j, want, got)
			}
			if got <= 1.96 {
				t.Errorf("std residual (%d,%d) magnitude %f should exceed 1.96", i, j, got)
			}
		}
	}

	// Pearson residuals: 20/sqrt(30) = 3.651484
	if math.Abs(math.Abs(result.PearsonResiduals.At(0, 0))-3.651484) > 1e-5 {
		t.Errorf("unexpected Pearson residual %f", result.PearsonResiduals.At(0, 0))
	}

	// Cramer's V = sqrt(53.333 / 120) = 0.6667
	if math.Abs(result.EffectSize-0.666667) > 1e-5 {
		t.Errorf("expected Cramer's V 0.6667, got %f", result.EffectSize)
	}
}

func TestAnalyze_IndependentTable(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	table := mustTable(t,
		[]string{"A", "B"},
		[]string{"X", "Y"},
		[][]float64{{25, 25}, {25, 25}},
	)

	result, err := engine.Analyze(table)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Statistic != 0 {
		t.Errorf("expected statistic 0 for uniform table, got %f", result.Statistic)
	}
	if math.Abs(result.PValue-1) > 1e-9 {
		t.Errorf("expected p-value 1, got %f", result.PValue)
	}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(result.StdResiduals.At(i, j)) > 1e-9 {
				t.Errorf("expected zero residual at (%d,%d), got %f", i, j, result.StdResiduals.At(i, j))
			}
		}
	}
}

func TestAnalyze_YatesCorrection(t *testing.T) {
	plain, err := NewEngine(DefaultOptions()).Analyze(strongTable(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	opts := DefaultOptions()
	opts.Correction = true
	corrected, err := NewEngine(opts).Analyze(strongTable(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Each |o-e| drops from 20 to 19.5: statistic = 4 * 19.5^2/30 = 50.7
	if math.Abs(corrected.Statistic-50.7) > 1e-6 {
		t.Errorf("expected corrected statistic 50.7, got %f", corrected.Statistic)
	}
	if corrected.Statistic >= plain.Statistic {
		t.Errorf("Yates correction should reduce the statistic: %f >= %f", corrected.Statistic, plain.Statistic)
	}
	// Residuals come from the raw counts, not the corrected ones
	if math.Abs(corrected.StdResiduals.At(0, 0)-plain.StdResiduals.At(0, 0)) > 1e-12 {
		t.Error("continuity correction must not change residuals")
	}
}

func TestAnalyze_LogLikelihoodLambda(t *testing.T) {
	opts := DefaultOptions()
	opts.Lambda = LambdaLogLikelihood
	result, err := NewEngine(opts).Analyze(strongTable(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// G = 2*(2*50*ln(50/30) + 2*10*ln(10/30)) = 58.22063
	if math.Abs(result.Statistic-58.220633) > 1e-5 {
		t.Errorf("expected G statistic 58.22063, got %f", result.Statistic)
	}
}

func TestAnalyze_ZeroMarginal(t *testing.T) {
	table := mustTable(t,
		[]string{"A", "B"},
		[]string{"X", "Y", "Z"},
		[][]float64{{10, 20, 0}, {15, 5, 0}},
	)

	_, err := NewEngine(DefaultOptions()).Analyze(table)
	if err == nil {
		t.Fatal("expected error for zero column marginal")
	}
	if !errors.IsUpstreamComputation(err) {
		t.Errorf("expected UPSTREAM_COMPUTATION, got %s", errors.GetCode(err))
	}
}

func TestAnalyze_ZeroCellRequiresShift(t *testing.T) {
	table := mustTable(t,
		[]string{"A", "B"},
		[]string{"X", "Y"},
		[][]float64{{10, 0}, {5, 8}},
	)

	_, err := NewEngine(DefaultOptions()).Analyze(table)
	if err == nil {
		t.Fatal("expected error for zero cell without shift")
	}
	if !errors.IsUpstreamComputation(err) {
		t.Errorf("expected UPSTREAM_COMPUTATION, got %s", errors.GetCode(err))
	}

	opts := DefaultOptions()
	opts.ShiftZeros = true
	result, err := NewEngine(opts).Analyze(table)
	if err != nil {
		t.Fatalf("unexpected error with shift enabled: %v", err)
	}

	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			v := result.StdResiduals.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("std residual (%d,%d) should be finite, got %f", i, j, v)
			}
		}
	}

	// The shift only affects residuals: the statistic matches the
	// Pearson formula over the raw counts.
	wantStat := 0.0
	counts := table.Counts()
	rowTotals := table.RowTotals()
	colTotals := table.ColTotals()
	total := table.Total()
	for i := range counts {
		for j := range counts[i] {
			exp := rowTotals[i] * colTotals[j] / total
			wantStat += (counts[i][j] - exp) * (counts[i][j] - exp) / exp
		}
	}
	if math.Abs(result.Statistic-wantStat) > 1e-9 {
		t.Errorf("shift must not change the statistic: expected %f, got %f", wantStat, result.Statistic)
	}
}

func TestAnalyze_NilTable(t *testing.T) {
	_, err := NewEngine(DefaultOptions()).Analyze(nil)
	if err == nil {
		t.Fatal("expected error for nil table")
	}
	if !errors.IsInvalidInput(err) {
		t.Errorf("expected INVALID_INPUT, got %s", errors.GetCode(err))
	}
}
