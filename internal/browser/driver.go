// Package browser drives the APKT portal through a Chromium session:
// SSO/IAM login with a human-in-the-loop OTP, report page navigation,
// filter selection, and Excel export download.
package browser

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/apkt-tools/apkt-agent/internal/config"
)

// Session owns one Chromium instance and its page.
type Session struct {
	launcher        *launcher.Launcher
	browser         *rod.Browser
	page            *rod.Page
	timeout         time.Duration
	downloadTimeout time.Duration
	logsDir         string
}

// Open launches Chromium and creates a blank page. logsDir receives
// failure screenshots.
func Open(ctx context.Context, cfg config.BrowserConfig, logsDir string) (*Session, error) {
	log := zap.L()
	log.Info("launching browser", zap.Bool("headless", cfg.Headless))

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(true)

	controlURL, err := l.Launch()
	if err != nil {
		return nil, eris.Wrap(err, "browser: launch chromium")
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, eris.Wrap(err, "browser: connect")
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		l.Cleanup()
		return nil, eris.Wrap(err, "browser: create page")
	}

	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	downloadTimeout := time.Duration(cfg.DownloadTimeoutSecs) * time.Second
	if downloadTimeout <= 0 {
		downloadTimeout = 60 * time.Second
	}

	return &Session{
		launcher:        l,
		browser:         b,
		page:            page,
		timeout:         timeout,
		downloadTimeout: downloadTimeout,
		logsDir:         logsDir,
	}, nil
}

// Close tears down the page, browser, and launcher.
func (s *Session) Close() {
	log := zap.L()
	if s.page != nil {
		if err := s.page.Close(); err != nil {
			log.Warn("close page", zap.Error(err))
		}
	}
	if s.browser != nil {
		if err := s.browser.Close(); err != nil {
			log.Warn("close browser", zap.Error(err))
		}
	}
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
}

// Navigate loads a URL and waits for the page to settle.
func (s *Session) Navigate(url string) error {
	page := s.page.Timeout(s.timeout)
	if err := page.Navigate(url); err != nil {
		return eris.Wrapf(err, "browser: navigate %s", url)
	}
	if err := page.WaitLoad(); err != nil {
		return eris.Wrapf(err, "browser: wait load %s", url)
	}
	return nil
}

// CurrentURL returns the page's current location.
func (s *Session) CurrentURL() string {
	info, err := s.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

// waitURLContains polls until the current URL contains substr.
func (s *Session) waitURLContains(substr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if containsFold(s.CurrentURL(), substr) {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return eris.Errorf("browser: timed out waiting for URL containing %q (at %s)", substr, s.CurrentURL())
}

// Screenshot saves a failure screenshot into the logs directory.
// Best-effort: screenshot failures only log.
func (s *Session) Screenshot(name string) {
	log := zap.L()
	data, err := s.page.Screenshot(false, nil)
	if err != nil {
		log.Warn("screenshot failed", zap.Error(err))
		return
	}
	path := filepath.Join(s.logsDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn("write screenshot", zap.Error(err))
		return
	}
	log.Info("screenshot saved", zap.String("path", path))
}

// selectByLabel picks a <select> option by its visible text.
func (s *Session) selectByLabel(selector, label string) error {
	el, err := s.page.Timeout(s.timeout).Element(selector)
	if err != nil {
		return eris.Wrapf(err, "browser: find %s", selector)
	}
	if err := el.Select([]string{label}, true, rod.SelectorTypeText); err != nil {
		return eris.Wrapf(err, "browser: select %q in %s", label, selector)
	}
	return nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
