package chart

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"phaseshift/domain/core"
	"phaseshift/domain/experiment"
	"phaseshift/internal/errors"
)

// HTMLRenderer writes histogram_cs_<cs>.html, an interactive bar chart
type HTMLRenderer struct{}

// NewHTMLRenderer creates an HTML renderer
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// Name implements ports.RendererPort
func (r *HTMLRenderer) Name() string { return "html" }

// Render implements ports.RendererPort
func (r *HTMLRenderer) Render(ctx context.Context, result *experiment.Result, dir string) ([]core.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory %s", dir)
	}

	filename := filepath.Join(dir, experiment.HistogramName(result.Settings.CS)+".html")
	f, err := os.Create(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s", filename)
	}

	if err := WriteHTML(f, result); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, errors.Wrapf(err, "closing %s", filename)
	}
	return []core.Artifact{{Kind: core.ArtifactHistogramHTML, Path: filename}}, nil
}

// WriteHTML renders the final experiment's histogram as a standalone page
func WriteHTML(w io.Writer, result *experiment.Result) error {
	if result == nil || result.Summary == nil {
		return errors.ValidationError("no summary to chart")
	}
	h := result.Summary.Last
	if h.Bins() == 0 || len(h.Edges) != h.Bins()+1 {
		return errors.ValidationError(fmt.Sprintf("histogram has %d bins and %d edges", h.Bins(), len(h.Edges)))
	}

	labels := make([]string, h.Bins())
	items := make([]opts.BarData, h.Bins())
	for k := range labels {
		labels[k] = fmt.Sprintf("%.2f", (h.Edges[k]+h.Edges[k+1])/2)
		items[k] = opts.BarData{Value: h.Counts[k]}
	}

	avg := result.Summary.Average
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: experiment.HistogramName(result.Settings.CS),
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: "Histogram of Integer Values from Phase Shifter",
			Subtitle: fmt.Sprintf("%s, cs=%d nc=%d %s | avg min %.2f max %.2f mean %.2f median %.2f stddev %.2f",
				result.Expression, result.Settings.CS, result.Settings.NC, result.Settings.Method,
				avg.Min, avg.Max, avg.Mean, avg.Median, avg.StdDev),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Integer Values"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Frequency"}),
	)
	bar.SetXAxis(labels).AddSeries("frequency", items)

	if err := bar.Render(w); err != nil {
		return errors.Wrap(err, "rendering histogram chart")
	}
	return nil
}
