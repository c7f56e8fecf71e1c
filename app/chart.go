package app

import (
	"chi2ind/adapters/chart"
)

// RenderChart renders the analysis as a grouped bar chart and, when
// path is non-empty, saves it as a PNG at the configured DPI. An empty
// path renders without persisting, matching the staged pipeline: the
// chart is the last stage and consumes only the frequency records.
func (s *AnalysisService) RenderChart(a *Analysis, xVar chart.XVariable, cfg chart.Config, path string) (*chart.Chart, error) {
	c, err := chart.NewRenderer().Render(a.Records, xVar, cfg)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := c.Save(path); err != nil {
			return nil, err
		}
		s.log.Info("analysis %s: chart saved to %s", a.ID, path)
	}
	return c, nil
}
