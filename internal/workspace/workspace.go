// Package workspace manages the per-run directory layout and the
// manifest written alongside every run's artifacts.
package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/apkt-tools/apkt-agent/internal/model"
	"github.com/apkt-tools/apkt-agent/internal/se004"
)

// RunContext is the directory layout for a single extraction run:
//
//	<root>/runs/<run_id>/raw/excel   downloaded reports
//	<root>/runs/<run_id>/parsed      normalized CSV
//	<root>/runs/<run_id>/logs        screenshots, debug artifacts
type RunContext struct {
	RunID        string `json:"run_id"`
	Dataset      string `json:"dataset"`
	PeriodYM     string `json:"period_ym"`
	RunDir       string `json:"run_dir"`
	ExcelDir     string `json:"excel_dir"`
	ParsedDir    string `json:"parsed_dir"`
	LogsDir      string `json:"logs_dir"`
	ManifestPath string `json:"manifest_path"`
}

// NewRun creates the run directory tree and seeds the manifest.
func NewRun(root, dataset, periodYM string) (*RunContext, error) {
	if !se004.ValidPeriodYM(periodYM) {
		return nil, eris.Errorf("workspace: invalid period %q, expected YYYYMM", periodYM)
	}

	suffix := strings.ToUpper(uuid.NewString()[:4])
	runID := time.Now().Format("20060102_150405") + "_" + dataset + "_" + periodYM + "_" + suffix

	runDir := filepath.Join(root, "runs", runID)
	ctx := &RunContext{
		RunID:        runID,
		Dataset:      dataset,
		PeriodYM:     periodYM,
		RunDir:       runDir,
		ExcelDir:     filepath.Join(runDir, "raw", "excel"),
		ParsedDir:    filepath.Join(runDir, "parsed"),
		LogsDir:      filepath.Join(runDir, "logs"),
		ManifestPath: filepath.Join(runDir, "manifest.json"),
	}

	for _, dir := range []string{ctx.ExcelDir, ctx.ParsedDir, ctx.LogsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, eris.Wrapf(err, "workspace: create %s", dir)
		}
	}

	seed := manifest{
		RunID:     runID,
		Dataset:   dataset,
		PeriodYM:  periodYM,
		CreatedAt: time.Now().UTC(),
	}
	if err := writeJSON(ctx.ManifestPath, seed); err != nil {
		return nil, err
	}

	zap.L().Info("created run", zap.String("run_id", runID), zap.String("dir", runDir))
	return ctx, nil
}

// ListExcelFiles returns the xlsx files in the run's download
// directory, sorted by name, skipping editor temp files.
func (c *RunContext) ListExcelFiles() ([]string, error) {
	entries, err := filepath.Glob(filepath.Join(c.ExcelDir, "*.xlsx"))
	if err != nil {
		return nil, eris.Wrapf(err, "workspace: list %s", c.ExcelDir)
	}
	files := entries[:0]
	for _, e := range entries {
		if strings.HasPrefix(filepath.Base(e), "~$") {
			continue
		}
		files = append(files, e)
	}
	return files, nil
}

// manifest is the on-disk manifest schema. The seed form is written
// at run creation; Finalize overwrites it with the full report.
type manifest struct {
	RunID     string    `json:"run_id"`
	Dataset   string    `json:"dataset"`
	PeriodYM  string    `json:"period_ym"`
	CreatedAt time.Time `json:"created_at"`

	Status      model.RunStatus        `json:"status,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	Downloads   []model.DownloadedFile `json:"downloads,omitempty"`
	Failures    []model.UnitFailure    `json:"failures,omitempty"`
	Rows        int                    `json:"rows,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
	OutputCSV   string                 `json:"output_csv,omitempty"`
}

// Finalize writes the completed run report into the manifest. All
// warnings are surfaced here, never only logged.
func (c *RunContext) Finalize(report *model.RunReport) error {
	completed := report.CompletedAt
	m := manifest{
		RunID:       c.RunID,
		Dataset:     c.Dataset,
		PeriodYM:    c.PeriodYM,
		CreatedAt:   report.StartedAt,
		Status:      report.Status,
		CompletedAt: &completed,
		Downloads:   report.Downloads,
		Failures:    report.Failures,
		Rows:        report.Rows,
		Warnings:    report.Warnings,
		OutputCSV:   report.OutputCSV,
	}
	return writeJSON(c.ManifestPath, m)
}

// ReadManifest loads a run's manifest from disk.
func ReadManifest(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "workspace: read manifest %s", path)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, eris.Wrapf(err, "workspace: parse manifest %s", path)
	}
	return m, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "workspace: marshal %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "workspace: write %s", path)
	}
	return nil
}
