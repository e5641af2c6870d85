package config

import (
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds the full application configuration.
type Config struct {
	APKT      APKTConfig      `yaml:"apkt" mapstructure:"apkt"`
	Browser   BrowserConfig   `yaml:"browser" mapstructure:"browser"`
	Workspace WorkspaceConfig `yaml:"workspace" mapstructure:"workspace"`
	Sheets    SheetsConfig    `yaml:"sheets" mapstructure:"sheets"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// APKTConfig holds the portal endpoints.
type APKTConfig struct {
	LoginURL         string `yaml:"login_url" mapstructure:"login_url"`
	IAMLoginURL      string `yaml:"iam_login_url" mapstructure:"iam_login_url"`
	IAMTOTPURLPrefix string `yaml:"iam_totp_url_prefix" mapstructure:"iam_totp_url_prefix"`
	APKTSSURL        string `yaml:"apktss_url" mapstructure:"apktss_url"`
	CredentialsFile  string `yaml:"credentials_file" mapstructure:"credentials_file"`

	// Units restricts which unit codes a run fetches. Empty means every
	// known unit.
	Units []string `yaml:"units" mapstructure:"units"`
}

// BrowserConfig configures the Chromium automation session.
type BrowserConfig struct {
	Headless            bool `yaml:"headless" mapstructure:"headless"`
	TimeoutSecs         int  `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	DownloadTimeoutSecs int  `yaml:"download_timeout_secs" mapstructure:"download_timeout_secs"`
	DownloadRetries     int  `yaml:"download_retries" mapstructure:"download_retries"`
}

// WorkspaceConfig configures where run artifacts land.
type WorkspaceConfig struct {
	Root string `yaml:"root" mapstructure:"root"`
}

// SheetsConfig holds the Google Sheets sink settings. The service
// account credential file location is caller-supplied configuration,
// never a fixed filename.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	Worksheet       string `yaml:"worksheet" mapstructure:"worksheet"`
	CredentialsPath string `yaml:"credentials_path" mapstructure:"credentials_path"`
}

// StoreConfig configures the run-log database.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("APKT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("apkt.login_url", "https://new-apkt.pln.co.id/login")
	v.SetDefault("apkt.iam_login_url", "https://iam.pln.co.id/")
	v.SetDefault("apkt.iam_totp_url_prefix", "https://iam.pln.co.id/totp")
	v.SetDefault("apkt.apktss_url", "https://new-apktss.pln.co.id/")
	v.SetDefault("apkt.credentials_file", "credentials/credentials.yaml")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout_secs", 30)
	v.SetDefault("browser.download_timeout_secs", 60)
	v.SetDefault("browser.download_retries", 3)
	v.SetDefault("workspace.root", "./workspace")
	v.SetDefault("sheets.worksheet", "se004_kumulatif")
	v.SetDefault("store.path", "apkt-agent.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}

// Credentials are the portal login credentials, kept in a separate
// file so the main config can be committed.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// LoadCredentials reads the credentials YAML from the given path.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read credentials %s", path)
	}
	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, eris.Wrapf(err, "config: parse credentials %s", path)
	}
	if creds.Username == "" || creds.Password == "" {
		return nil, eris.Errorf("config: credentials %s missing username or password", path)
	}
	return &creds, nil
}
