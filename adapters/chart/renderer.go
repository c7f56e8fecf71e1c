// Package chart renders post-hoc frequency records as grouped bar
// charts. Bars are grouped by one table variable and hued by the other;
// cells flagged significant get a marker glyph centered above their bar.
package chart

import (
	"math"
	"os"

	"chi2ind/domain/posthoc"
	"chi2ind/internal"
	"chi2ind/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Renderer draws grouped bar charts from frequency records
type Renderer struct {
	log *internal.Logger
}

// NewRenderer creates a renderer with the default logger
func NewRenderer() *Renderer {
	return &Renderer{log: internal.NewDefaultLogger()}
}

// Chart is a rendered, not yet persisted bar chart
type Chart struct {
	plot *plot.Plot
	cfg  Config
}

// Render builds the grouped bar chart. Nothing is written to disk; call
// Save on the returned chart to persist it.
//
// Bars and significance markers for one hue group come from the same
// ordered value slice, so a marker can never land on the wrong bar.
func (r *Renderer) Render(records []posthoc.FrequencyRecord, xVar XVariable, cfg Config) (*Chart, error) {
	xCats, hueCats, lookup, err := groupRecords(records, xVar)
	if err != nil {
		return nil, err
	}

	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel
	p.Legend.Top = cfg.LegendTop
	p.Legend.Left = cfg.LegendLeft

	step := cfg.BarWidth + cfg.BarGap
	for gi, hue := range hueCats {
		values := make(plotter.Values, len(xCats))
		flags := make([]bool, len(xCats))
		for xi, x := range xCats {
			rec, ok := lookup[groupKey{x: x, hue: hue}]
			if !ok {
				return nil, errors.InvalidInputf("no frequency record for (%s, %s)", x, hue)
			}
			values[xi] = rec.Frequency
			flags[xi] = rec.Significant
		}

		offset := vg.Length(float64(gi)-float64(len(hueCats)-1)/2) * step

		bars, err := plotter.NewBarChart(values, cfg.BarWidth)
		if err != nil {
			return nil, errors.RenderError("failed to build bar group "+hue, err)
		}
		bars.Color = cfg.Palette[gi%len(cfg.Palette)]
		bars.Offset = offset
		p.Add(bars)
		p.Legend.Add(hue, bars)

		p.Add(&sigMarkers{
			values: values,
			flags:  flags,
			offset: offset,
			glyph:  cfg.MarkerGlyph,
		})
	}

	p.NominalX(xCats...)
	p.X.Tick.Label.Rotation = cfg.XTickRotation * math.Pi / 180
	if cfg.XTickRotation != 0 {
		p.X.Tick.Label.XAlign = text.XRight
		p.X.Tick.Label.YAlign = text.YCenter
	}

	r.log.Debug("rendered %d bars in %d hue groups", len(xCats)*len(hueCats), len(hueCats))
	return &Chart{plot: p, cfg: cfg}, nil
}

// Save writes the chart as a PNG at the configured size and DPI
func (c *Chart) Save(path string) error {
	if path == "" {
		return errors.RenderError("output path is empty", nil)
	}

	canvas := vgimg.NewWith(
		vgimg.UseWH(c.cfg.Width, c.cfg.Height),
		vgimg.UseDPI(c.cfg.DPI),
	)
	c.plot.Draw(draw.New(canvas))

	f, err := os.Create(path)
	if err != nil {
		return errors.RenderError("failed to create chart file "+path, err)
	}
	defer f.Close()

	png := vgimg.PngCanvas{Canvas: canvas}
	if _, err := png.WriteTo(f); err != nil {
		return errors.RenderError("failed to write chart file "+path, err)
	}
	return nil
}

type groupKey struct {
	x   string
	hue string
}

// groupRecords splits records into x-axis and hue categories, both in
// first-appearance order, with a dense (x, hue) -> record lookup.
func groupRecords(records []posthoc.FrequencyRecord, xVar XVariable) (xCats, hueCats []string, lookup map[groupKey]posthoc.FrequencyRecord, err error) {
	if len(records) == 0 {
		return nil, nil, nil, errors.InvalidInput("no frequency records to plot")
	}

	seenX := map[string]bool{}
	seenHue := map[string]bool{}
	lookup = make(map[groupKey]posthoc.FrequencyRecord, len(records))
	for _, rec := range records {
		x, hue := rec.Row, rec.Col
		if xVar == XCol {
			x, hue = rec.Col, rec.Row
		}
		if !seenX[x] {
			seenX[x] = true
			xCats = append(xCats, x)
		}
		if !seenHue[hue] {
			seenHue[hue] = true
			hueCats = append(hueCats, hue)
		}
		key := groupKey{x: x, hue: hue}
		if _, dup := lookup[key]; dup {
			return nil, nil, nil, errors.InvalidInputf("duplicate frequency record for (%s, %s)", x, hue)
		}
		lookup[key] = rec
	}
	return xCats, hueCats, lookup, nil
}

// sigMarkers draws the significance glyph above flagged bars of one hue
// group, using the same nominal x positions and canvas offset as the
// bars themselves.
type sigMarkers struct {
	values plotter.Values
	flags  []bool
	offset vg.Length
	glyph  string
}

func (m *sigMarkers) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)

	style := plt.X.Label.TextStyle
	style.XAlign = text.XCenter
	style.YAlign = text.YBottom

	for i, v := range m.values {
		if !m.flags[i] {
			continue
		}
		pt := vg.Point{
			X: trX(float64(i)) + m.offset,
			Y: trY(float64(v)) + vg.Points(2),
		}
		c.FillText(style, pt, m.glyph)
	}
}

// DataRange reserves vertical headroom above flagged bars so the glyph
// stays inside the canvas.
func (m *sigMarkers) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, xmax = 0, float64(len(m.values)-1)
	ymin, ymax = 0, 0
	for i, v := range m.values {
		top := float64(v)
		if m.flags[i] {
			top *= 1.08
		}
		if top > ymax {
			ymax = top
		}
	}
	return xmin, xmax, ymin, ymax
}
