package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/apkt-tools/apkt-agent/internal/model"
	"github.com/apkt-tools/apkt-agent/internal/se004"
)

// Download retry backoff, matching the portal's habit of silently
// dropping the first export request under load.
var downloadBackoff = []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second}

// ReportFilter selects one report on the APKT-SS page.
type ReportFilter struct {
	UnitLabel string // visible dropdown text, e.g. "DISTRIBUSI LAMPUNG"
	PeriodYM  string // YYYYMM
	Kelompok  string // fault group dropdown, "" when the report has none
}

// OpenReport navigates to the APKT-SS report page and applies the
// unit and period filters.
func (s *Session) OpenReport(reportURL string, filter ReportFilter) error {
	log := zap.L().With(zap.String("unit", filter.UnitLabel), zap.String("period", filter.PeriodYM))

	if err := s.Navigate(reportURL); err != nil {
		s.Screenshot("report_navigate_failed.png")
		return err
	}

	if err := s.selectByLabel(`select#unitInduk, select[name="unitInduk"]`, filter.UnitLabel); err != nil {
		s.Screenshot("report_unit_filter_failed.png")
		return err
	}

	monthLabel, yearLabel, err := periodDropdownLabels(filter.PeriodYM)
	if err != nil {
		return err
	}
	if err := s.selectByLabel(`select#bulan, select[name="bulan"]`, monthLabel); err != nil {
		s.Screenshot("report_month_filter_failed.png")
		return err
	}
	if err := s.selectByLabel(`select#tahun, select[name="tahun"]`, yearLabel); err != nil {
		s.Screenshot("report_year_filter_failed.png")
		return err
	}

	if filter.Kelompok != "" {
		if err := s.selectByLabel(`select#kelompok, select[name="kelompok"]`, strings.ToUpper(filter.Kelompok)); err != nil {
			s.Screenshot("report_kelompok_filter_failed.png")
			return err
		}
	}

	log.Info("report filters applied")
	return nil
}

// periodDropdownLabels splits YYYYMM into the Indonesian month name and
// year the portal dropdowns use.
func periodDropdownLabels(periodYM string) (month, year string, err error) {
	month, year, err = se004.PeriodYMToLabel(periodYM)
	if err != nil {
		return "", "", eris.Wrap(err, "browser: period filter")
	}
	return month, year, nil
}

// DownloadExport clicks the Excel export control and waits for the
// file to land, retrying with backoff on timeouts or empty files.
func (s *Session) DownloadExport(excelDir, targetName string, retries int) (model.DownloadedFile, error) {
	log := zap.L().With(zap.String("file", targetName))
	if retries <= 0 {
		retries = len(downloadBackoff)
	}

	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			backoff := downloadBackoff[min(attempt-1, len(downloadBackoff)-1)]
			log.Warn("retrying download", zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(lastErr))
			time.Sleep(backoff)
		}

		file, err := s.downloadOnce(excelDir, targetName)
		if err == nil {
			log.Info("download complete", zap.Int64("bytes", file.Size))
			return file, nil
		}
		lastErr = err
	}

	s.Screenshot(fmt.Sprintf("download_failed_%s.png", targetName))
	return model.DownloadedFile{}, eris.Wrapf(lastErr, "browser: download %s", targetName)
}

func (s *Session) downloadOnce(excelDir, targetName string) (model.DownloadedFile, error) {
	wait := s.browser.WaitDownload(excelDir)

	if err := s.clickExport(); err != nil {
		return model.DownloadedFile{}, err
	}

	info := s.waitDownloadInfo(wait)
	if info == nil {
		return model.DownloadedFile{}, eris.New("browser: download did not start")
	}

	src := filepath.Join(excelDir, info.GUID)
	dst := filepath.Join(excelDir, targetName)
	if err := os.Rename(src, dst); err != nil {
		return model.DownloadedFile{}, eris.Wrapf(err, "browser: move download to %s", dst)
	}

	stat, err := os.Stat(dst)
	if err != nil {
		return model.DownloadedFile{}, eris.Wrap(err, "browser: stat download")
	}
	if stat.Size() == 0 {
		return model.DownloadedFile{}, eris.Errorf("browser: empty download %s", targetName)
	}

	return model.DownloadedFile{
		Filename:     targetName,
		Path:         dst,
		Size:         stat.Size(),
		DownloadedAt: time.Now().UTC(),
	}, nil
}

// waitDownloadInfo bounds the WaitDownload callback with the session
// timeout so a stalled export cannot hang the run.
func (s *Session) waitDownloadInfo(wait func() *proto.PageDownloadWillBegin) *proto.PageDownloadWillBegin {
	done := make(chan *proto.PageDownloadWillBegin, 1)
	go func() { done <- wait() }()
	select {
	case info := <-done:
		return info
	case <-time.After(s.downloadTimeout):
		return nil
	}
}

func (s *Session) clickExport() error {
	el, err := s.page.Timeout(s.timeout).ElementR("button, a", "(?i)ekspor|export|excel")
	if err != nil {
		return eris.Wrap(err, "browser: find export button")
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return eris.Wrap(err, "browser: click export button")
	}
	return nil
}
