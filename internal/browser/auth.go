package browser

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/proto"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/apkt-tools/apkt-agent/internal/config"
)

const (
	otpAttempts = 3
	iamHost     = "iam.pln.co.id"
	portalHost  = "new-apkt.pln.co.id"
)

// OTPFunc supplies a one-time password. The default reads from stdin.
type OTPFunc func(attempt int) (string, error)

// StdinOTP prompts on the terminal for the authenticator code.
func StdinOTP(attempt int) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter OTP code (attempt %d/%d): ", attempt, otpAttempts)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", eris.Wrap(err, "browser: read otp from stdin")
	}
	return strings.TrimSpace(line), nil
}

// Login walks the full SSO chain: portal login page, SSO button, IAM
// credential form, optional TOTP challenge, redirect back to the portal.
func (s *Session) Login(cfg config.APKTConfig, creds config.Credentials, otp OTPFunc) error {
	log := zap.L().With(zap.String("user", creds.Username))
	if otp == nil {
		otp = StdinOTP
	}

	if err := s.Navigate(cfg.LoginURL); err != nil {
		s.Screenshot("login_navigate_failed.png")
		return err
	}

	if err := s.clickSSO(); err != nil {
		s.Screenshot("login_sso_failed.png")
		return err
	}

	if err := s.waitURLContains(iamHost, s.timeout); err != nil {
		s.Screenshot("login_iam_redirect_failed.png")
		return err
	}
	log.Info("reached IAM login form")

	if err := s.submitCredentials(creds); err != nil {
		s.Screenshot("login_credentials_failed.png")
		return err
	}

	// The IAM either redirects straight to the portal or asks for a
	// TOTP code first.
	if err := s.waitEither(portalHost, cfg.IAMTOTPURLPrefix, s.timeout); err != nil {
		s.Screenshot("login_post_credentials_failed.png")
		return err
	}

	if containsFold(s.CurrentURL(), cfg.IAMTOTPURLPrefix) {
		if err := s.submitOTP(otp); err != nil {
			s.Screenshot("login_otp_failed.png")
			return err
		}
	}

	if err := s.waitURLContains(portalHost, s.timeout); err != nil {
		s.Screenshot("login_portal_redirect_failed.png")
		return eris.Wrap(err, "browser: portal redirect after login")
	}
	log.Info("login complete", zap.String("url", s.CurrentURL()))
	return nil
}

func (s *Session) clickSSO() error {
	el, err := s.page.Timeout(s.timeout).ElementR("button, a", "(?i)sso")
	if err != nil {
		return eris.Wrap(err, "browser: find SSO button")
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return eris.Wrap(err, "browser: click SSO button")
	}
	return nil
}

func (s *Session) submitCredentials(creds config.Credentials) error {
	page := s.page.Timeout(s.timeout)

	user, err := page.Element(`input[name="username"], input[name="email"], input[type="text"]`)
	if err != nil {
		return eris.Wrap(err, "browser: find username field")
	}
	if err := user.Input(creds.Username); err != nil {
		return eris.Wrap(err, "browser: fill username")
	}

	pass, err := page.Element(`input[type="password"]`)
	if err != nil {
		return eris.Wrap(err, "browser: find password field")
	}
	if err := pass.Input(creds.Password); err != nil {
		return eris.Wrap(err, "browser: fill password")
	}

	submit, err := page.Element(`button[type="submit"], input[type="submit"]`)
	if err != nil {
		return eris.Wrap(err, "browser: find login submit")
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return eris.Wrap(err, "browser: click login submit")
	}
	return nil
}

// submitOTP gives the operator three tries at the authenticator code.
func (s *Session) submitOTP(otp OTPFunc) error {
	log := zap.L()
	for attempt := 1; attempt <= otpAttempts; attempt++ {
		code, err := otp(attempt)
		if err != nil {
			return err
		}
		if code == "" {
			log.Warn("empty OTP code", zap.Int("attempt", attempt))
			continue
		}

		page := s.page.Timeout(s.timeout)
		field, err := page.Element(`input[name="otp"], input[name="totp"], input[autocomplete="one-time-code"], input[type="text"]`)
		if err != nil {
			return eris.Wrap(err, "browser: find OTP field")
		}
		if err := field.SelectAllText(); err == nil {
			_ = field.Input("")
		}
		if err := field.Input(code); err != nil {
			return eris.Wrap(err, "browser: fill OTP")
		}

		submit, err := page.Element(`button[type="submit"], input[type="submit"]`)
		if err != nil {
			return eris.Wrap(err, "browser: find OTP submit")
		}
		if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return eris.Wrap(err, "browser: click OTP submit")
		}

		if err := s.waitURLContains(portalHost, s.timeout); err == nil {
			return nil
		}
		log.Warn("OTP rejected", zap.Int("attempt", attempt))
	}
	return eris.Errorf("browser: OTP rejected after %d attempts", otpAttempts)
}

// waitEither polls until the URL contains one of two substrings.
func (s *Session) waitEither(a, b string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		url := s.CurrentURL()
		if containsFold(url, a) || (b != "" && containsFold(url, b)) {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return eris.Errorf("browser: timed out waiting for %q or %q (at %s)", a, b, s.CurrentURL())
}
