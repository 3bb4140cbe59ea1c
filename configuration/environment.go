// Package configuration reads the dashboard's settings from the environment
// and optional .env files.
package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-faster/errors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/spektr-org/gccdash/roster"
)

const Production = "production"

// LoadEnv loads the env files that exist, in order, without overriding
// variables already set. It returns how many were found.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			existing = append(existing, file)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

type DataOptions struct {
	Source            string `env:"DATA_SOURCE" envDefault:"db.json"`
	CredentialsSource string `env:"CREDENTIALS_SOURCE" envDefault:"user.json"`
	Watch             bool   `env:"WATCH_DATA" envDefault:"false"`
	// Empty means the built-in axis table.
	AxesPath string `env:"AXES_PATH"`
	// Refuse to start when an axis maps to a field the dataset does not have.
	AxesStrict bool `env:"AXES_STRICT" envDefault:"false"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type RateLimitOptions struct {
	Enabled bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	// Login attempts per client, in limiter's "<limit>-<period>" form (S, M, H, D).
	Login string `env:"RATE_LIMIT_LOGIN" envDefault:"10-M"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if !r.Enabled {
		return nil
	}
	if _, err := limiter.NewRateFromFormatted(r.Login); err != nil {
		return errors.Wrapf(err, "invalid RATE_LIMIT_LOGIN=%q", r.Login)
	}
	return nil
}

// Rate returns the parsed login rate.
func (r *RateLimitOptions) Rate() limiter.Rate {
	rate, err := limiter.NewRateFromFormatted(r.Login)
	if err != nil {
		return limiter.Rate{Period: time.Minute, Limit: 10}
	}
	return rate
}

type CORSOptions struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
}

type ExportOptions struct {
	Timezone   string `env:"EXPORT_TIMEZONE" envDefault:"UTC"`
	DateLayout string `env:"EXPORT_DATE_LAYOUT" envDefault:"1/2/2006"`
}

type Configuration struct {
	Data       DataOptions
	Prometheus PrometheusOptions
	RateLimit  RateLimitOptions
	CORS       CORSOptions
	Export     ExportOptions

	ServerPort       int    `env:"PORT" envDefault:"3200"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	StaticDir        string `env:"STATIC_DIR"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"text"`
	// The server looks for this header in the request; when absent it generates a random uuidv4
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
	// The server looks for this header in the request; when absent it uses request.RemoteAddr
	RealIPHeader string `env:"REAL_IP_HEADER" envDefault:"X-Real-IP"`
	// Session ID cookie key
	SidCookieKey string `env:"SID_COOKIE_KEY" envDefault:"gcc_dashboard_session"`

	location *time.Location
	logger   *logrus.Logger
}

// Load reads env files (missing ones are skipped) and the environment into a
// new Configuration.
func Load(envFiles ...string) (*Configuration, error) {
	c := &Configuration{}
	if err := c.load(envFiles); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return errors.Wrap(err, "load env files")
	}
	if n == 0 && len(envFiles) > 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return errors.Wrap(err, "parse environment")
	}

	if err := c.RateLimit.Validate(); err != nil {
		return errors.Wrap(err, "rate limit configuration error")
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	loc, err := time.LoadLocation(c.Export.Timezone)
	if err != nil {
		return errors.Wrapf(err, "invalid EXPORT_TIMEZONE=%q", c.Export.Timezone)
	}
	c.location = loc
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return errors.Errorf("invalid PORT=%d", c.ServerPort)
	}
	if strings.TrimSpace(c.Data.Source) == "" {
		return errors.New("DATA_SOURCE must not be empty")
	}

	c.logger = NewLogger(c.LogrusLogLevel(), c.LogFormat, os.Stdout)

	if c.GoAppEnvironment == Production {
		c.SocketAddress = fmt.Sprintf(":%d", c.ServerPort)
	} else {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) validateLogging() error {
	format := strings.ToLower(strings.TrimSpace(c.LogFormat))
	switch format {
	case "", "text":
		format = "text"
	case "json":
	default:
		return errors.Errorf("invalid LOG_FORMAT=%q (expected text|json)", c.LogFormat)
	}
	c.LogFormat = format

	switch strings.ToLower(c.LogLevel) {
	case "silent", "error", "warn", "info", "debug":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		return errors.Errorf("invalid LOG_LEVEL=%q (expected silent|error|warn|info|debug)", c.LogLevel)
	}
	return nil
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

// DateFormat is how epoch-millisecond dates are displayed and exported.
func (c *Configuration) DateFormat() roster.DateFormat {
	loc := c.location
	if loc == nil {
		loc = time.UTC
	}
	return roster.DateFormat{Layout: c.Export.DateLayout, Location: loc}
}

func (c *Configuration) Scheme() string {
	if c.GoAppEnvironment == Production {
		return "https"
	}
	return "http"
}
