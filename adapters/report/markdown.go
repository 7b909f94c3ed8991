package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"phaseshift/domain/core"
	"phaseshift/domain/experiment"
	"phaseshift/internal/errors"
)

// MarkdownRenderer writes report_cs_<cs>.md and an HTML rendering of it
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a Markdown renderer
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Name implements ports.RendererPort
func (r *MarkdownRenderer) Name() string { return "md" }

// Render implements ports.RendererPort
func (r *MarkdownRenderer) Render(ctx context.Context, result *experiment.Result, dir string) ([]core.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if result == nil || result.Summary == nil {
		return nil, errors.ValidationError("no summary to report")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory %s", dir)
	}

	md := Markdown(result)
	base := filepath.Join(dir, experiment.ReportName(result.Settings.CS))
	if err := os.WriteFile(base+".md", md, 0644); err != nil {
		return nil, errors.Wrapf(err, "writing %s.md", base)
	}
	if err := os.WriteFile(base+".html", ToHTML(md), 0644); err != nil {
		return nil, errors.Wrapf(err, "writing %s.html", base)
	}
	return []core.Artifact{
		{Kind: core.ArtifactMarkdown, Path: base + ".md"},
		{Kind: core.ArtifactHTMLReport, Path: base + ".html"},
	}, nil
}

// Markdown formats the run settings, averaged statistics and per-experiment table
func Markdown(result *experiment.Result) []byte {
	s := result.Settings
	avg := result.Summary.Average

	var b strings.Builder
	fmt.Fprintf(&b, "# Phase shifter run %s\n\n", result.RunID)
	fmt.Fprintf(&b, "Polynomial `%s` (degree %d, entry %d), fingerprint `%s`.\n\n",
		result.Expression, s.Degree, s.Entry, result.Fingerprint.Short())

	b.WriteString("## Settings\n\n| Parameter | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| cs | %d |\n| nc | %d |\n| method | %s |\n", s.CS, s.NC, s.Method)
	fmt.Fprintf(&b, "| num_integers | %d |\n| bit_width | %d |\n", s.Layout.NumIntegers, s.Layout.BitWidth)
	fmt.Fprintf(&b, "| cycles | %d |\n| experiments | %d |\n| seed | %d |\n\n", s.Cycles, s.Experiments, s.Seed)

	fmt.Fprintf(&b, "## Averaged statistics after %d experiments\n\n", result.Summary.Experiments)
	b.WriteString("| Statistic | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Average Minimum Frequency | %g |\n", avg.Min)
	fmt.Fprintf(&b, "| Average Maximum Frequency | %g |\n", avg.Max)
	fmt.Fprintf(&b, "| Average Mean Frequency | %.2f |\n", avg.Mean)
	fmt.Fprintf(&b, "| Average Median Frequency | %g |\n", avg.Median)
	fmt.Fprintf(&b, "| Average Standard Deviation of Frequencies | %.2f |\n", avg.StdDev)
	fmt.Fprintf(&b, "| Mean uniformity p-value | %.4f |\n\n", result.Summary.MeanPValue)

	b.WriteString("## Experiments\n\n")
	b.WriteString("| # | Samples | Distinct | Range | Min | Max | Mean | Median | StdDev | χ² | p |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|---|---|\n")
	for _, es := range result.Summary.PerExperiment {
		fs := es.Frequency
		fmt.Fprintf(&b, "| %d | %d | %d | %d..%d | %g | %g | %.2f | %g | %.2f | %.2f | %.4f |\n",
			es.Index+1, es.Samples, es.Distinct, es.MinValue, es.MaxValue,
			fs.Min, fs.Max, fs.Mean, fs.Median, fs.StdDev, es.Uniform.ChiSquare, es.Uniform.PValue)
	}
	return []byte(b.String())
}

// ToHTML renders Markdown as a complete HTML page
func ToHTML(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.CompletePage,
		Title: "Phase shifter report",
	})
	return markdown.ToHTML(md, p, renderer)
}
