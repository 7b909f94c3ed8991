// Package chart renders the final experiment's histogram as a PNG image
// (gonum/plot) or an interactive HTML page (go-echarts).
package chart

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"phaseshift/domain/analysis"
	"phaseshift/domain/core"
	"phaseshift/domain/experiment"
	"phaseshift/internal/errors"
)

// PNGRenderer draws histogram_cs_<cs>.png
type PNGRenderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewPNGRenderer returns a renderer with a 10x5 inch canvas
func NewPNGRenderer() *PNGRenderer {
	return &PNGRenderer{
		Width:  10 * vg.Inch,
		Height: 5 * vg.Inch,
	}
}

// Name implements ports.RendererPort
func (r *PNGRenderer) Name() string { return "png" }

// Render implements ports.RendererPort
func (r *PNGRenderer) Render(ctx context.Context, result *experiment.Result, dir string) ([]core.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if result == nil || result.Summary == nil {
		return nil, errors.ValidationError("no summary to plot")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory %s", dir)
	}

	p, err := HistogramPlot(result.Summary.Last)
	if err != nil {
		return nil, err
	}
	p.Title.Text = "Histogram of Integer Values from Phase Shifter"

	filename := filepath.Join(dir, experiment.HistogramName(result.Settings.CS)+".png")
	if err := p.Save(r.Width, r.Height, filename); err != nil {
		return nil, errors.Wrapf(err, "saving %s", filename)
	}
	return []core.Artifact{{Kind: core.ArtifactHistogramPNG, Path: filename}}, nil
}

// HistogramPlot builds a plot with one bar per histogram bin
func HistogramPlot(h analysis.Histogram) (*plot.Plot, error) {
	if h.Bins() == 0 || len(h.Edges) != h.Bins()+1 {
		return nil, errors.ValidationError(fmt.Sprintf("histogram has %d bins and %d edges", h.Bins(), len(h.Edges)))
	}

	bins := make([]plotter.HistogramBin, h.Bins())
	for k := range bins {
		bins[k] = plotter.HistogramBin{Min: h.Edges[k], Max: h.Edges[k+1], Weight: h.Counts[k]}
	}
	hist := &plotter.Histogram{
		Bins:      bins,
		Width:     h.Edges[1] - h.Edges[0],
		FillColor: color.NRGBA{B: 255, A: 178},
		LineStyle: plotter.DefaultLineStyle,
	}

	p := plot.New()
	p.X.Label.Text = "Integer Values"
	p.Y.Label.Text = "Frequency"
	p.Add(plotter.NewGrid())
	p.Add(hist)
	return p, nil
}
