package report

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"phaseshift/domain/analysis"
	"phaseshift/domain/core"
	"phaseshift/domain/experiment"
	"phaseshift/domain/lfsr"
)

func sampleResult(t *testing.T) *experiment.Result {
	t.Helper()
	summary, err := analysis.Analyze([][]int64{
		{0, 1, 2, 3, 0, 1, 2, 3},
		{-1, 0, 0, 0},
	})
	require.NoError(t, err)
	settings := experiment.Settings{
		Degree: 10, Entry: 1, CS: 30, NC: 20, Method: lfsr.Separated,
		Layout: lfsr.Layout{NumIntegers: 4, BitWidth: 2}, Cycles: 2, Experiments: 2, Seed: 5,
	}
	p := lfsr.Polynomial{1, 0, 0, 0, 0, 0, 0, 1, 0, 0, 1}
	return &experiment.Result{
		RunID:       core.NewRunID(),
		Settings:    settings,
		Expression:  p.String(),
		Fingerprint: settings.Fingerprint(p),
		Summary:     summary,
	}
}

func TestWorkbookRenderer(t *testing.T) {
	dir := t.TempDir()
	artifacts, err := NewWorkbookRenderer().Render(context.Background(), sampleResult(t), dir)
	require.NoError(t, err)
	require.Len(t, artifacts, 1)
	assert.Equal(t, filepath.Join(dir, "report_cs_30.xlsx"), artifacts[0].Path)

	f, err := excelize.OpenFile(artifacts[0].Path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Experiments", "Histogram"}, f.GetSheetList())

	rows, err := f.GetRows("Experiments")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	assert.Equal(t, "Experiment", rows[0][0])

	hist, err := f.GetRows("Histogram")
	require.NoError(t, err)
	// header plus two bins for the values {-1, 0}
	assert.Len(t, hist, 3)

	polynomial, err := f.GetCellValue("Summary", "B3")
	require.NoError(t, err)
	assert.Equal(t, "X^10 + X^3 + 1", polynomial)
}

func TestMarkdownRenderer(t *testing.T) {
	dir := t.TempDir()
	artifacts, err := NewMarkdownRenderer().Render(context.Background(), sampleResult(t), dir)
	require.NoError(t, err)
	require.Len(t, artifacts, 2)

	md, err := os.ReadFile(filepath.Join(dir, "report_cs_30.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "Average Standard Deviation of Frequencies")
	assert.Contains(t, string(md), "X^10 + X^3 + 1")

	page, err := os.ReadFile(filepath.Join(dir, "report_cs_30.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), "<table>")
	assert.Contains(t, string(page), "<title>Phase shifter report</title>")
}

func TestRenderersRejectMissingSummary(t *testing.T) {
	_, err := NewWorkbookRenderer().Render(context.Background(), &experiment.Result{}, t.TempDir())
	assert.Error(t, err)
	_, err = NewMarkdownRenderer().Render(context.Background(), nil, t.TempDir())
	assert.Error(t, err)
}
