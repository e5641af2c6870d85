// Package sink uploads normalized CSV output to Google Sheets.
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/apkt-tools/apkt-agent/internal/output"
)

// Mode selects how uploaded rows interact with existing data.
type Mode string

const (
	ModeReplace Mode = "replace" // clear the worksheet, upload header + rows
	ModeAppend  Mode = "append"  // keep existing rows, append data only
)

// ParseMode validates a mode flag value.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeReplace, ModeAppend:
		return Mode(s), nil
	default:
		return "", eris.Errorf("sink: unknown mode %q (valid: replace, append)", s)
	}
}

// UploadResult summarizes one upload.
type UploadResult struct {
	Rows      int    `json:"rows"`
	Cols      int    `json:"cols"`
	Worksheet string `json:"worksheet"`
}

// api is the slice of the Sheets surface the uploader needs; tests
// substitute a fake.
type api interface {
	SheetTitles(ctx context.Context) ([]string, error)
	AddSheet(ctx context.Context, title string, rows, cols int64) error
	Clear(ctx context.Context, title string) error
	Update(ctx context.Context, rangeA1 string, values [][]any) error
	RowCount(ctx context.Context, title string) (int, error)
}

// Uploader writes record sets to one spreadsheet. Calls are
// rate-limited client-side to stay under the per-minute write quota.
type Uploader struct {
	api     api
	limiter *rate.Limiter
}

// NewUploader builds an uploader from a service-account credentials
// file. The credentials path is configuration; there is no fixed
// filename.
func NewUploader(ctx context.Context, credentialsPath, spreadsheetID string) (*Uploader, error) {
	srv, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsPath),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sink: build sheets service")
	}
	return newUploader(&sheetsAPI{srv: srv, spreadsheetID: spreadsheetID}), nil
}

func newUploader(a api) *Uploader {
	return &Uploader{
		api:     a,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

// UploadCSV reads a semicolon-delimited file and writes it to the
// named worksheet, creating the worksheet if needed.
func (u *Uploader) UploadCSV(ctx context.Context, csvPath, worksheet string, mode Mode) (*UploadResult, error) {
	header, rows, err := output.ReadCSVFile(csvPath)
	if err != nil {
		return nil, err
	}
	return u.Upload(ctx, header, rows, worksheet, mode)
}

// Upload writes header and rows to the worksheet according to mode.
func (u *Uploader) Upload(ctx context.Context, header []string, rows [][]string, worksheet string, mode Mode) (*UploadResult, error) {
	log := zap.L().With(zap.String("worksheet", worksheet), zap.String("mode", string(mode)))

	if err := u.ensureWorksheet(ctx, worksheet, int64(len(rows)+100), int64(len(header)+5)); err != nil {
		return nil, err
	}

	writeFull := func() error {
		log.Info("uploading rows", zap.Int("rows", len(rows)))
		return u.update(ctx, worksheet+"!A1", toValues(header, rows))
	}

	switch mode {
	case ModeAppend:
		existing, err := u.rowCount(ctx, worksheet)
		if err != nil {
			return nil, err
		}
		if existing == 0 {
			// Empty sheet: the header goes in too.
			if err := writeFull(); err != nil {
				return nil, err
			}
			break
		}
		start := existing + 1
		log.Info("appending rows", zap.Int("start_row", start), zap.Int("rows", len(rows)))
		if err := u.update(ctx, fmt.Sprintf("%s!A%d", worksheet, start), toValues(nil, rows)); err != nil {
			return nil, err
		}
	default:
		if err := u.clear(ctx, worksheet); err != nil {
			return nil, err
		}
		if err := writeFull(); err != nil {
			return nil, err
		}
	}

	return &UploadResult{Rows: len(rows), Cols: len(header), Worksheet: worksheet}, nil
}

func (u *Uploader) ensureWorksheet(ctx context.Context, title string, rows, cols int64) error {
	if err := u.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "sink: rate limit")
	}
	titles, err := u.api.SheetTitles(ctx)
	if err != nil {
		return err
	}
	for _, t := range titles {
		if t == title {
			return nil
		}
	}
	if err := u.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "sink: rate limit")
	}
	zap.L().Info("creating worksheet", zap.String("title", title))
	return u.api.AddSheet(ctx, title, rows, cols)
}

func (u *Uploader) rowCount(ctx context.Context, title string) (int, error) {
	if err := u.limiter.Wait(ctx); err != nil {
		return 0, eris.Wrap(err, "sink: rate limit")
	}
	return u.api.RowCount(ctx, title)
}

func (u *Uploader) clear(ctx context.Context, title string) error {
	if err := u.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "sink: rate limit")
	}
	return u.api.Clear(ctx, title)
}

func (u *Uploader) update(ctx context.Context, rangeA1 string, values [][]any) error {
	if err := u.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "sink: rate limit")
	}
	return u.api.Update(ctx, rangeA1, values)
}

// toValues converts string rows to the Sheets value grid. When header
// is nil only the data rows are sent.
func toValues(header []string, rows [][]string) [][]any {
	out := make([][]any, 0, len(rows)+1)
	if header != nil {
		h := make([]any, len(header))
		for i, v := range header {
			h[i] = v
		}
		out = append(out, h)
	}
	for _, row := range rows {
		r := make([]any, len(row))
		for i, v := range row {
			r[i] = v
		}
		out = append(out, r)
	}
	return out
}

// sheetsAPI is the real implementation over the Sheets v4 service.
type sheetsAPI struct {
	srv           *sheets.Service
	spreadsheetID string
}

func (a *sheetsAPI) SheetTitles(ctx context.Context) ([]string, error) {
	ss, err := a.srv.Spreadsheets.Get(a.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, eris.Wrap(err, "sink: get spreadsheet")
	}
	titles := make([]string, 0, len(ss.Sheets))
	for _, sh := range ss.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (a *sheetsAPI) AddSheet(ctx context.Context, title string, rows, cols int64) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{
					Title: title,
					GridProperties: &sheets.GridProperties{
						RowCount:    rows,
						ColumnCount: cols,
					},
				},
			},
		}},
	}
	_, err := a.srv.Spreadsheets.BatchUpdate(a.spreadsheetID, req).Context(ctx).Do()
	return eris.Wrapf(err, "sink: add sheet %s", title)
}

func (a *sheetsAPI) Clear(ctx context.Context, title string) error {
	_, err := a.srv.Spreadsheets.Values.Clear(a.spreadsheetID, title, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return eris.Wrapf(err, "sink: clear %s", title)
}

func (a *sheetsAPI) Update(ctx context.Context, rangeA1 string, values [][]any) error {
	vr := &sheets.ValueRange{Values: values}
	_, err := a.srv.Spreadsheets.Values.Update(a.spreadsheetID, rangeA1, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	return eris.Wrapf(err, "sink: update %s", rangeA1)
}

func (a *sheetsAPI) RowCount(ctx context.Context, title string) (int, error) {
	resp, err := a.srv.Spreadsheets.Values.Get(a.spreadsheetID, title+"!A:A").Context(ctx).Do()
	if err != nil {
		return 0, eris.Wrapf(err, "sink: row count %s", title)
	}
	return len(resp.Values), nil
}
