package dataset

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/apkt-tools/apkt-agent/internal/browser"
	"github.com/apkt-tools/apkt-agent/internal/config"
	"github.com/apkt-tools/apkt-agent/internal/model"
	"github.com/apkt-tools/apkt-agent/internal/output"
	"github.com/apkt-tools/apkt-agent/internal/se004"
	"github.com/apkt-tools/apkt-agent/internal/store"
	"github.com/apkt-tools/apkt-agent/internal/workspace"
)

// parseWorkers bounds the parallel workbook parses. xlsx decoding is
// CPU-bound so a small pool is enough.
const parseWorkers = 4

// Runner orchestrates a full fetch-parse-emit run for one dataset.
type Runner struct {
	cfg    *config.Config
	reg    *Registry
	runLog *store.RunLog
}

// RunOpts configures one run.
type RunOpts struct {
	Dataset  string
	PeriodYM string
	Units    []string // unit codes; empty falls back to config, then all
	OTP      browser.OTPFunc
}

// NewRunner creates a runner.
func NewRunner(cfg *config.Config, reg *Registry, runLog *store.RunLog) *Runner {
	return &Runner{cfg: cfg, reg: reg, runLog: runLog}
}

// Run downloads every document for the dataset and period, parses the
// workbooks in parallel, and writes one combined CSV. Per-document
// failures degrade the run to partial; only setup and login failures
// abort it.
func (r *Runner) Run(ctx context.Context, opts RunOpts) (*model.RunReport, error) {
	ds, err := r.reg.Get(opts.Dataset)
	if err != nil {
		return nil, err
	}

	units := r.resolveUnits(opts.Units)
	docs, err := ds.Documents(units, opts.PeriodYM)
	if err != nil {
		return nil, err
	}

	ws, err := workspace.NewRun(r.cfg.Workspace.Root, ds.Name(), opts.PeriodYM)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("run_id", ws.RunID),
		zap.String("dataset", ds.Name()),
		zap.String("period", opts.PeriodYM),
	)
	log.Info("run started", zap.Int("documents", len(docs)))

	report := &model.RunReport{
		RunID:     ws.RunID,
		Dataset:   ds.Name(),
		PeriodYM:  opts.PeriodYM,
		StartedAt: time.Now().UTC(),
	}

	logID, err := r.runLog.Start(ctx, ws.RunID, ds.Name(), opts.PeriodYM)
	if err != nil {
		return nil, err
	}

	if err := r.fetch(ctx, ds, docs, ws, report, opts.OTP); err != nil {
		r.finish(ctx, ws, logID, report, model.RunFailed)
		return report, err
	}

	if err := r.parseAndEmit(ctx, ds, ws, report); err != nil {
		r.finish(ctx, ws, logID, report, model.RunFailed)
		return report, err
	}

	status := model.RunSuccess
	if len(report.Failures) > 0 {
		status = model.RunPartial
	}
	if report.Rows == 0 && len(report.Failures) > 0 {
		status = model.RunFailed
	}
	r.finish(ctx, ws, logID, report, status)

	log.Info("run finished",
		zap.String("status", string(status)),
		zap.Int("rows", report.Rows),
		zap.Int("failures", len(report.Failures)),
	)
	return report, nil
}

// resolveUnits picks the unit list: explicit flag, then config, then
// every known unit.
func (r *Runner) resolveUnits(units []string) []string {
	if len(units) > 0 {
		return units
	}
	if len(r.cfg.APKT.Units) > 0 {
		return r.cfg.APKT.Units
	}
	return se004.UnitCodes()
}

// fetch logs in once and downloads every document sequentially. The
// portal session is stateful so downloads cannot overlap.
func (r *Runner) fetch(ctx context.Context, ds Dataset, docs []Document, ws *workspace.RunContext, report *model.RunReport, otp browser.OTPFunc) error {
	log := zap.L().With(zap.String("dataset", ds.Name()))

	creds, err := config.LoadCredentials(r.cfg.APKT.CredentialsFile)
	if err != nil {
		return err
	}

	session, err := browser.Open(ctx, r.cfg.Browser, ws.LogsDir)
	if err != nil {
		return err
	}
	defer session.Close()

	if err := session.Login(r.cfg.APKT, *creds, otp); err != nil {
		return eris.Wrap(err, "runner: portal login")
	}

	reportURL := ds.ReportURL(r.cfg.APKT)
	for _, doc := range docs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		filter := browser.ReportFilter{
			UnitLabel: doc.UnitLabel,
			PeriodYM:  report.PeriodYM,
			Kelompok:  doc.Kelompok,
		}
		if err := session.OpenReport(reportURL, filter); err != nil {
			log.Warn("open report failed", zap.String("unit", doc.UnitCode), zap.Error(err))
			report.Failures = append(report.Failures, model.UnitFailure{
				Unit: doc.UnitCode, File: doc.Filename, Error: err.Error(),
			})
			continue
		}

		file, err := session.DownloadExport(ws.ExcelDir, doc.Filename, r.cfg.Browser.DownloadRetries)
		if err != nil {
			log.Warn("download failed", zap.String("unit", doc.UnitCode), zap.Error(err))
			report.Failures = append(report.Failures, model.UnitFailure{
				Unit: doc.UnitCode, File: doc.Filename, Error: err.Error(),
			})
			continue
		}
		file.Unit = doc.UnitCode
		report.Downloads = append(report.Downloads, file)
	}

	if len(report.Downloads) == 0 && len(docs) > 0 {
		return eris.Errorf("runner: all %d downloads failed", len(docs))
	}
	return nil
}

// parseAndEmit parses every downloaded workbook in parallel and writes
// the combined CSV, rows grouped by source file in filename order.
func (r *Runner) parseAndEmit(ctx context.Context, ds Dataset, ws *workspace.RunContext, report *model.RunReport) error {
	files, err := ws.ListExcelFiles()
	if err != nil {
		return err
	}
	sort.Strings(files)

	// Each worker writes only its own index, so no locking is needed;
	// failures are folded into the report after Wait.
	outputs := make([]*ParseOutput, len(files))
	parseErrs := make([]error, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parseWorkers)
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			outputs[i], parseErrs[i] = ds.Parse(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var rows [][]string
	for i, out := range outputs {
		if err := parseErrs[i]; err != nil {
			// Recorded, not fatal: one bad workbook must not discard
			// the rest of the batch.
			zap.L().Warn("parse failed", zap.String("file", files[i]), zap.Error(err))
			report.Failures = append(report.Failures, model.UnitFailure{
				Unit:  se004.UnitFromFilename(filepath.Base(files[i])),
				File:  filepath.Base(files[i]),
				Error: err.Error(),
			})
			continue
		}
		rows = append(rows, out.Rows...)
		report.Warnings = append(report.Warnings, out.Warnings...)
	}

	outPath := filepath.Join(ws.ParsedDir, fmt.Sprintf("%s_%s.csv", ds.Name(), report.PeriodYM))
	if err := output.WriteCSV(outPath, ds.Columns(), rows); err != nil {
		return err
	}
	report.OutputCSV = outPath
	report.Rows = len(rows)
	return nil
}

// ParseDir parses an existing directory of workbooks without touching
// the portal, for re-runs over already-downloaded exports.
func (r *Runner) ParseDir(ctx context.Context, datasetName, dir, outPath string) (*model.RunReport, error) {
	ds, err := r.reg.Get(datasetName)
	if err != nil {
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return nil, eris.Wrapf(err, "runner: list %s", dir)
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, eris.Errorf("runner: no .xlsx files in %s", dir)
	}

	report := &model.RunReport{
		Dataset:   ds.Name(),
		StartedAt: time.Now().UTC(),
	}

	var rows [][]string
	for _, path := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out, err := ds.Parse(path)
		if err != nil {
			zap.L().Warn("parse failed", zap.String("file", path), zap.Error(err))
			report.Failures = append(report.Failures, model.UnitFailure{
				Unit:  se004.UnitFromFilename(filepath.Base(path)),
				File:  filepath.Base(path),
				Error: err.Error(),
			})
			continue
		}
		rows = append(rows, out.Rows...)
		report.Warnings = append(report.Warnings, out.Warnings...)
	}

	if err := output.WriteCSV(outPath, ds.Columns(), rows); err != nil {
		return nil, err
	}
	report.OutputCSV = outPath
	report.Rows = len(rows)
	report.CompletedAt = time.Now().UTC()
	if len(report.Failures) > 0 {
		report.Status = model.RunPartial
	} else {
		report.Status = model.RunSuccess
	}
	return report, nil
}

// finish stamps the report, writes the manifest, and records the run.
func (r *Runner) finish(ctx context.Context, ws *workspace.RunContext, logID string, report *model.RunReport, status model.RunStatus) {
	log := zap.L().With(zap.String("run_id", report.RunID))

	report.Status = status
	report.CompletedAt = time.Now().UTC()

	if err := ws.Finalize(report); err != nil {
		log.Error("write manifest", zap.Error(err))
	}

	if status == model.RunFailed {
		msg := "run failed"
		if n := len(report.Failures); n > 0 {
			msg = report.Failures[n-1].Error
		}
		if err := r.runLog.Fail(ctx, logID, msg); err != nil {
			log.Error("record run failure", zap.Error(err))
		}
		return
	}
	if err := r.runLog.Complete(ctx, logID, report); err != nil {
		log.Error("record run completion", zap.Error(err))
	}
}
