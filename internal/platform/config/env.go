package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Data sources the card can read clubs from.
const (
	SourceSQLite   = "sqlite"
	SourcePipeline = "pipeline"
)

// Config is the process configuration, read from CLUBS_* variables.
type Config struct {
	Env          string `env:"ENV" envDefault:"development"`
	Addr         string `env:"ADDR" envDefault:":8080"`
	ManifestPath string `env:"MANIFEST" envDefault:"extension.hcl"`
	DBPath       string `env:"DB_PATH" envDefault:"studentclubs.db"`

	DataSource     string `env:"DATA_SOURCE" envDefault:"sqlite"`
	DataConnectURL string `env:"DATA_CONNECT_URL"`
	EthosURL       string `env:"ETHOS_URL"`
	CardID         string `env:"CARD_ID" envDefault:"student-clubs"`
	CardPrefix     string `env:"CARD_PREFIX"`
	EthosAPIKey    string `env:"ETHOS_API_KEY"`
	PreviewMode    bool   `env:"PREVIEW_MODE"`
	DevBannerID    string `env:"DEV_BANNER_ID" envDefault:"B00000001"`

	RefreshInterval time.Duration `env:"REFRESH_INTERVAL" envDefault:"5m"`
	SessionIdle     time.Duration `env:"SESSION_IDLE" envDefault:"30m"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	SlowRequest time.Duration `env:"SLOW_REQUEST" envDefault:"200ms"`
	SlowQuery   time.Duration `env:"SLOW_QUERY" envDefault:"50ms"`

	CSRFKey        string   `env:"CSRF_KEY"`
	TrustedOrigins []string `env:"TRUSTED_ORIGINS" envSeparator:","`
	FrameAncestors string   `env:"FRAME_ANCESTORS"`
	ResendKey      string   `env:"RESEND_KEY"`
	EmailFrom      string   `env:"EMAIL_FROM" envDefault:"Student Clubs <noreply@example.edu>"`
	NotifyEmail    string   `env:"NOTIFY_EMAIL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
}

// Config errors
var (
	ErrUnknownSource      = errors.New("unknown data source")
	ErrMissingDataConnect = errors.New("pipeline data source requires CLUBS_DATA_CONNECT_URL")
	ErrMissingEthosURL    = errors.New("pipeline data source requires CLUBS_ETHOS_URL")
	ErrMissingCSRFKey     = errors.New("production requires a 32 byte CLUBS_CSRF_KEY")
)

// ParseEnvPrefix loads configuration from environment variables, with every
// variable name prefixed.
func ParseEnvPrefix(target any, prefix string) error {
	if err := env.ParseWithOptions(target, env.Options{Prefix: prefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from path when the file exists. Variables
// already set in the process environment win.
func LoadDotEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("dotenv_load_failed", "path", path, "error", err)
		}
		return
	}
	slog.Info("dotenv_loaded", "path", path)
}

// Load reads .env (if present) and the CLUBS_* environment into a Config.
func Load() (Config, error) {
	LoadDotEnv(".env")
	var cfg Config
	if err := ParseEnvPrefix(&cfg, "CLUBS_"); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Production reports whether the service runs in production.
func (c Config) Production() bool {
	return c.Env == "production"
}

// Validate checks the combinations env tags cannot express.
func (c Config) Validate() error {
	switch c.DataSource {
	case SourceSQLite:
	case SourcePipeline:
		if c.DataConnectURL == "" {
			return ErrMissingDataConnect
		}
		if c.EthosURL == "" {
			return ErrMissingEthosURL
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.DataSource)
	}
	if c.Production() && len(c.CSRFKey) != 32 {
		return ErrMissingCSRFKey
	}
	return nil
}
