package workspace

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apkt-tools/apkt-agent/internal/model"
)

func TestNewRun(t *testing.T) {
	root := t.TempDir()

	ctx, err := NewRun(root, "se004_kumulatif", "202511")
	require.NoError(t, err)

	assert.Contains(t, ctx.RunID, "se004_kumulatif_202511_")
	for _, dir := range []string{ctx.ExcelDir, ctx.ParsedDir, ctx.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err, dir)
		assert.True(t, info.IsDir())
	}

	m, err := ReadManifest(ctx.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, ctx.RunID, m["run_id"])
	assert.Equal(t, "se004_kumulatif", m["dataset"])
	assert.Equal(t, "202511", m["period_ym"])
}

func TestNewRun_InvalidPeriod(t *testing.T) {
	_, err := NewRun(t.TempDir(), "se004_kumulatif", "2025-11")
	assert.Error(t, err)
}

func TestListExcelFiles(t *testing.T) {
	ctx, err := NewRun(t.TempDir(), "se004_kumulatif", "202511")
	require.NoError(t, err)

	for _, name := range []string{"b.xlsx", "a.xlsx", "~$a.xlsx", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(ctx.ExcelDir, name), []byte("x"), 0o644))
	}

	files, err := ctx.ListExcelFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.xlsx", filepath.Base(files[0]))
	assert.Equal(t, "b.xlsx", filepath.Base(files[1]))
}

func TestFinalize(t *testing.T) {
	ctx, err := NewRun(t.TempDir(), "se004_kumulatif", "202511")
	require.NoError(t, err)

	report := &model.RunReport{
		RunID:       ctx.RunID,
		Dataset:     ctx.Dataset,
		PeriodYM:    ctx.PeriodYM,
		Status:      model.RunPartial,
		StartedAt:   time.Now().UTC(),
		CompletedAt: time.Now().UTC(),
		Rows:        42,
		Warnings:    []string{"bad_number field=saidi_jam"},
		Failures: []model.UnitFailure{
			{Unit: "WIL_ACEH", File: "a.xlsx", Error: "download timed out"},
		},
		OutputCSV: filepath.Join(ctx.ParsedDir, "out.csv"),
	}
	require.NoError(t, ctx.Finalize(report))

	m, err := ReadManifest(ctx.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, "partial", m["status"])
	assert.Equal(t, float64(42), m["rows"])
	assert.Len(t, m["warnings"], 1)
	assert.Len(t, m["failures"], 1)
}
