// Package report renders an analysis artifact as a markdown summary,
// with optional HTML conversion for embedding.
package report

import (
	"fmt"
	"strings"

	"chi2ind/app"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Builder renders analysis reports
type Builder struct{}

// NewBuilder creates a report builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Markdown renders the analysis as a markdown document
func (b *Builder) Markdown(a *app.Analysis) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Chi-squared test of independence\n\n")
	fmt.Fprintf(&sb, "Analysis `%s`, generated %s.\n\n", a.ID, a.CreatedAt)

	fmt.Fprintf(&sb, "## Test result\n\n")
	fmt.Fprintf(&sb, "| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&sb, "| Statistic | %.4f |\n", a.Chi2.Statistic)
	fmt.Fprintf(&sb, "| Degrees of freedom | %d |\n", a.Chi2.DF)
	fmt.Fprintf(&sb, "| P-value | %.6g |\n", a.Chi2.PValue)
	fmt.Fprintf(&sb, "| Cramer's V | %.4f |\n", a.Chi2.EffectSize)
	fmt.Fprintf(&sb, "| Alpha | %g |\n\n", a.Alpha)

	fmt.Fprintf(&sb, "## Cells\n\n")
	fmt.Fprintf(&sb, "Cells marked `*` deviate significantly from independence at alpha=%g.\n\n", a.Alpha)
	sb.WriteString("| Row | Column | Frequency | Std. residual | |\n|---|---|---|---|---|\n")
	nc := a.Table.NumCols()
	for i, rec := range a.Records {
		marker := ""
		if rec.Significant {
			marker = "*"
		}
		fmt.Fprintf(&sb, "| %s | %s | %g | %.3f | %s |\n",
			rec.Row, rec.Col, rec.Frequency, a.Chi2.StdResiduals.At(i/nc, i%nc), marker)
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "## Table profile\n\n")
	p := a.Profile
	fmt.Fprintf(&sb, "%dx%d table, %d cells, grand total %g, %d zero cells.\n",
		p.RowCategories, p.ColCategories, p.CellCount, p.GrandTotal, p.ZeroCells)
	fmt.Fprintf(&sb, "Cell counts: min %g, max %g, mean %.2f, median %g, std dev %.2f.\n",
		p.Cells.Min, p.Cells.Max, p.Cells.Mean, p.Cells.Median, p.Cells.StdDev)

	return sb.String()
}

// HTML renders the markdown report as an HTML fragment
func (b *Builder) HTML(a *app.Analysis) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(b.Markdown(a)))
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.Render(doc, renderer)
}
