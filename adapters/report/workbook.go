// Package report writes run summaries as an XLSX workbook and as
// Markdown with an HTML rendering.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"phaseshift/domain/core"
	"phaseshift/domain/experiment"
	"phaseshift/internal/errors"
)

const (
	sheetSummary     = "Summary"
	sheetExperiments = "Experiments"
	sheetHistogram   = "Histogram"
)

// WorkbookRenderer writes report_cs_<cs>.xlsx
type WorkbookRenderer struct{}

// NewWorkbookRenderer creates a workbook renderer
func NewWorkbookRenderer() *WorkbookRenderer {
	return &WorkbookRenderer{}
}

// Name implements ports.RendererPort
func (r *WorkbookRenderer) Name() string { return "xlsx" }

// Render implements ports.RendererPort
func (r *WorkbookRenderer) Render(ctx context.Context, result *experiment.Result, dir string) ([]core.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if result == nil || result.Summary == nil {
		return nil, errors.ValidationError("no summary to export")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating output directory %s", dir)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, errors.Wrap(err, "naming summary sheet")
	}
	if err := writeSummarySheet(f, result); err != nil {
		return nil, err
	}
	if err := writeExperimentsSheet(f, result); err != nil {
		return nil, err
	}
	if err := writeHistogramSheet(f, result); err != nil {
		return nil, err
	}

	filename := filepath.Join(dir, experiment.ReportName(result.Settings.CS)+".xlsx")
	if err := f.SaveAs(filename); err != nil {
		return nil, errors.Wrapf(err, "saving %s", filename)
	}
	return []core.Artifact{{Kind: core.ArtifactWorkbook, Path: filename}}, nil
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "writing %s!%s", sheet, cell)
		}
	}
	return nil
}

func writeSummarySheet(f *excelize.File, result *experiment.Result) error {
	s := result.Settings
	avg := result.Summary.Average
	rows := [][]interface{}{
		{"Run ID", result.RunID.String()},
		{"Fingerprint", result.Fingerprint.String()},
		{"Polynomial", result.Expression},
		{"Degree", s.Degree},
		{"Entry", s.Entry},
		{"Channel separation (cs)", s.CS},
		{"Channels (nc)", s.NC},
		{"Method", s.Method.String()},
		{"Integers per cycle", s.Layout.NumIntegers},
		{"Bit width", s.Layout.BitWidth},
		{"Cycles", s.Cycles},
		{"Experiments", s.Experiments},
		{"Seed", s.Seed},
		{},
		{"Average Minimum Frequency", avg.Min},
		{"Average Maximum Frequency", avg.Max},
		{"Average Mean Frequency", avg.Mean},
		{"Average Median Frequency", avg.Median},
		{"Average Standard Deviation of Frequencies", avg.StdDev},
		{"Mean Uniformity p-value", result.Summary.MeanPValue},
	}
	return setRows(f, sheetSummary, rows)
}

func writeExperimentsSheet(f *excelize.File, result *experiment.Result) error {
	if _, err := f.NewSheet(sheetExperiments); err != nil {
		return errors.Wrap(err, "creating experiments sheet")
	}
	rows := [][]interface{}{
		{"Experiment", "Samples", "Distinct", "Min Value", "Max Value",
			"Min Frequency", "Max Frequency", "Mean Frequency", "Median Frequency", "StdDev Frequency", "Chi-Square", "p-value"},
	}
	for _, es := range result.Summary.PerExperiment {
		fs := es.Frequency
		rows = append(rows, []interface{}{
			es.Index + 1, es.Samples, es.Distinct, es.MinValue, es.MaxValue,
			fs.Min, fs.Max, fs.Mean, fs.Median, fs.StdDev, es.Uniform.ChiSquare, es.Uniform.PValue,
		})
	}
	return setRows(f, sheetExperiments, rows)
}

func writeHistogramSheet(f *excelize.File, result *experiment.Result) error {
	if _, err := f.NewSheet(sheetHistogram); err != nil {
		return errors.Wrap(err, "creating histogram sheet")
	}
	h := result.Summary.Last
	if len(h.Edges) != h.Bins()+1 {
		return errors.ValidationError(fmt.Sprintf("histogram has %d bins and %d edges", h.Bins(), len(h.Edges)))
	}
	rows := [][]interface{}{{"Bin", "Lower Edge", "Upper Edge", "Count"}}
	for k, c := range h.Counts {
		rows = append(rows, []interface{}{k, h.Edges[k], h.Edges[k+1], c})
	}
	return setRows(f, sheetHistogram, rows)
}
