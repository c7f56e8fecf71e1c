package report

import (
	"strings"
	"testing"

	"chi2ind/adapters/stats/chi2"
	"chi2ind/app"
	"chi2ind/domain/crosstab"
)

func runAnalysis(t *testing.T) *app.Analysis {
	t.Helper()
	table, err := crosstab.New(
		[]string{"A", "B"},
		[]string{"X", "Y"},
		[][]float64{{50, 10}, {10, 50}},
	)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	analysis, err := app.NewAnalysisService(chi2.DefaultOptions()).Run(table, 0.05)
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	return analysis
}

func TestMarkdown(t *testing.T) {
	md := NewBuilder().Markdown(runAnalysis(t))

	for _, want := range []string{
		"# Chi-squared test of independence",
		"| Statistic | 53.3333 |",
		"| Degrees of freedom | 1 |",
		"| Cramer's V | 0.6667 |",
		"| Alpha | 0.05 |",
		"| A | X | 50 | 7.303 | * |",
		"| A | Y | 10 | -7.303 |  |",
		"2x2 table, 4 cells, grand total 120, 0 zero cells.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n%s", want, md)
		}
	}
}

func TestHTML(t *testing.T) {
	out := string(NewBuilder().HTML(runAnalysis(t)))

	if !strings.Contains(out, "<table>") {
		t.Errorf("expected HTML table in output:\n%s", out)
	}
	if !strings.Contains(out, "<h1") {
		t.Errorf("expected heading in output:\n%s", out)
	}
}
