// Package app orchestrates the chi-squared independence analysis as
// explicit sequential stages: contingency table, chi-squared result,
// post-hoc frequency records, table profile. Every stage is a pure
// function of the previous stage's output; nothing is computed lazily
// or cached behind the caller's back.
package app

import (
	"chi2ind/adapters/stats/chi2"
	"chi2ind/domain/core"
	"chi2ind/domain/crosstab"
	"chi2ind/domain/posthoc"
	"chi2ind/internal"
	"chi2ind/internal/profiling"

	"gonum.org/v1/gonum/mat"
)

// ContingencyEngine is the upstream chi-squared collaborator
type ContingencyEngine interface {
	Analyze(table *crosstab.Table) (*chi2.Result, error)
}

// ResidualTester flags significant cells from standardized residuals
type ResidualTester interface {
	TestResiduals(table *crosstab.Table, stdResiduals mat.Matrix, alpha float64) ([]posthoc.FrequencyRecord, error)
}

// Analysis is the immutable artifact of one analysis run
type Analysis struct {
	ID        core.AnalysisID           `json:"id"`
	CreatedAt core.Timestamp            `json:"created_at"`
	Alpha     float64                   `json:"alpha"`
	Table     *crosstab.Table           `json:"-"`
	Chi2      *chi2.Result              `json:"-"`
	Records   []posthoc.FrequencyRecord `json:"records"`
	Profile   profiling.TableProfile    `json:"profile"`
}

// AnalysisService runs the staged analysis pipeline
type AnalysisService struct {
	engine ContingencyEngine
	tester ResidualTester
	log    *internal.Logger
}

// NewAnalysisService creates a service with the standard engine and an
// uncorrected residual tester.
func NewAnalysisService(engineOpts chi2.Options) *AnalysisService {
	return &AnalysisService{
		engine: chi2.NewEngine(engineOpts),
		tester: posthoc.NewTester(),
		log:    internal.NewDefaultLogger(),
	}
}

// NewAnalysisServiceWith wires custom collaborators, e.g. a tester with
// a multiple-comparison correction strategy.
func NewAnalysisServiceWith(engine ContingencyEngine, tester ResidualTester) *AnalysisService {
	return &AnalysisService{
		engine: engine,
		tester: tester,
		log:    internal.NewDefaultLogger(),
	}
}

// Run executes the full pipeline over the table at significance level
// alpha and returns the analysis artifact. No retries: invalid input and
// degenerate tables surface immediately.
func (s *AnalysisService) Run(table *crosstab.Table, alpha float64) (*Analysis, error) {
	result, err := s.engine.Analyze(table)
	if err != nil {
		return nil, err
	}
	s.log.Debug("chi2 stage done: stat=%.4f df=%d p=%.6f", result.Statistic, result.DF, result.PValue)

	records, err := s.tester.TestResiduals(table, result.StdResiduals, alpha)
	if err != nil {
		return nil, err
	}

	analysis := &Analysis{
		ID:        core.NewAnalysisID(),
		CreatedAt: core.Now(),
		Alpha:     alpha,
		Table:     table,
		Chi2:      result,
		Records:   records,
		Profile:   profiling.Profile(table),
	}
	s.log.Info("analysis %s: stat=%.4f p=%.6f, %d/%d cells significant",
		analysis.ID, result.Statistic, result.PValue, analysis.SignificantCells(), len(records))
	return analysis, nil
}

// SignificantCells counts the records flagged significant
func (a *Analysis) SignificantCells() int {
	n := 0
	for _, r := range a.Records {
		if r.Significant {
			n++
		}
	}
	return n
}
