package chart

import (
	"image/color"

	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// XVariable selects which table variable lands on the x axis. The other
// variable becomes the hue grouping.
type XVariable int

const (
	// XRow puts row categories on the x axis, column categories as hue
	XRow XVariable = iota
	// XCol puts column categories on the x axis, row categories as hue
	XCol
)

// Config enumerates the chart styling options. Every field has a
// documented effect; there is deliberately no open-ended parameter bag.
type Config struct {
	// Title is drawn above the plot. Optional.
	Title string
	// XLabel and YLabel name the axes. YLabel defaults to "Frequency".
	XLabel string
	YLabel string
	// BarWidth is the width of each individual bar.
	BarWidth vg.Length
	// BarGap separates bars within one x-axis group.
	BarGap vg.Length
	// Palette supplies hue-group colors, cycled when there are more
	// groups than colors.
	Palette []color.Color
	// LegendTop and LegendLeft position the hue legend inside the plot.
	LegendTop  bool
	LegendLeft bool
	// XTickRotation rotates x tick labels, in degrees counterclockwise.
	XTickRotation float64
	// MarkerGlyph is drawn centered above each significant bar.
	MarkerGlyph string
	// Width and Height give the canvas size.
	Width  vg.Length
	Height vg.Length
	// DPI is the raster resolution used when the chart is saved.
	DPI int
}

// NewConfig returns the default chart configuration: 600 DPI export,
// asterisk significance markers, rotated x tick labels.
func NewConfig() Config {
	return Config{
		YLabel:        "Frequency",
		BarWidth:      vg.Points(18),
		BarGap:        vg.Points(2),
		Palette:       plotutil.DefaultColors,
		LegendTop:     true,
		LegendLeft:    false,
		XTickRotation: 45,
		MarkerGlyph:   "*",
		Width:         6 * vg.Inch,
		Height:        4 * vg.Inch,
		DPI:           600,
	}
}
