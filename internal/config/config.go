// Package config defines dropwatch settings, their defaults and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/jmylchreest/dropwatch/internal/auction"
	"github.com/jmylchreest/dropwatch/internal/extract"
)

// EnvPrefix is the prefix for environment overrides (DROPWATCH_MAX_DURATION).
const EnvPrefix = "DROPWATCH"

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds all settings for a monitoring run.
type Config struct {
	URL       string `mapstructure:"url" validate:"required,url"`
	Output    string `mapstructure:"output" validate:"required"`
	Format    string `mapstructure:"format" validate:"oneof=csv json yaml"`
	FetchMode string `mapstructure:"fetch_mode" validate:"oneof=dynamic static"`

	Filters  []string `mapstructure:"filters"`
	PageSize int      `mapstructure:"page_size" validate:"gte=0"`

	PollInterval    time.Duration `mapstructure:"poll_interval" validate:"gt=0"`
	ScrollSettle    time.Duration `mapstructure:"scroll_settle" validate:"gte=0"`
	EmptyRetryDelay time.Duration `mapstructure:"empty_retry_delay" validate:"gte=0"`
	SetupTimeout    time.Duration `mapstructure:"setup_timeout" validate:"gt=0"`
	MaxDuration     time.Duration `mapstructure:"max_duration" validate:"gt=0"`

	StuckThreshold int           `mapstructure:"stuck_threshold" validate:"min=2"`
	ConfirmEnded   bool          `mapstructure:"confirm_ended"`
	ConfirmDelay   time.Duration `mapstructure:"confirm_delay" validate:"gte=0"`

	Browser   Browser           `mapstructure:"browser"`
	Selectors extract.Selectors `mapstructure:"selectors"`
	Publish   Publish           `mapstructure:"publish"`
}

// Browser configures the headless Chrome session.
type Browser struct {
	Headless   bool          `mapstructure:"headless"`
	Stealth    bool          `mapstructure:"stealth"`
	UserAgent  string        `mapstructure:"user_agent"`
	ChromePath string        `mapstructure:"chrome_path"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Publish configures uploading the final snapshot to S3-compatible storage.
// Publishing is disabled while Bucket is empty.
type Publish struct {
	Bucket         string `mapstructure:"bucket"`
	Region         string `mapstructure:"region" validate:"required_with=Bucket"`
	Endpoint       string `mapstructure:"endpoint" validate:"omitempty,url"`
	Prefix         string `mapstructure:"prefix"`
	AccessKey      string `mapstructure:"access_key"`
	SecretKey      string `mapstructure:"secret_key"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
}

// Enabled reports whether a bucket is configured.
func (p Publish) Enabled() bool {
	return p.Bucket != ""
}

// Defaults returns the settings of an unconfigured run.
func Defaults() Config {
	return Config{
		URL:       "https://www.dropcatch.com",
		Output:    "dropcatch_results.csv",
		Format:    "csv",
		FetchMode: "dynamic",
		Filters: []string{
			".com",
			"AuctionsEndingToday",
			"AuctionsWithBids",
			"NoDashes",
			"NoNumbers",
		},
		PageSize:        250,
		PollInterval:    5 * time.Second,
		ScrollSettle:    2 * time.Second,
		EmptyRetryDelay: 5 * time.Second,
		SetupTimeout:    20 * time.Second,
		MaxDuration:     60 * time.Minute,
		StuckThreshold:  auction.DefaultStuckThreshold,
		ConfirmEnded:    true,
		ConfirmDelay:    time.Second,
		Browser: Browser{
			Headless: true,
			Timeout:  30 * time.Second,
		},
		Selectors: extract.DefaultSelectors(),
		Publish: Publish{
			Prefix: "dropwatch",
		},
	}
}

// SetDefaults registers every key with v so that environment variables and
// config files can override nested settings.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("url", d.URL)
	v.SetDefault("output", d.Output)
	v.SetDefault("format", d.Format)
	v.SetDefault("fetch_mode", d.FetchMode)
	v.SetDefault("filters", d.Filters)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("poll_interval", d.PollInterval)
	v.SetDefault("scroll_settle", d.ScrollSettle)
	v.SetDefault("empty_retry_delay", d.EmptyRetryDelay)
	v.SetDefault("setup_timeout", d.SetupTimeout)
	v.SetDefault("max_duration", d.MaxDuration)
	v.SetDefault("stuck_threshold", d.StuckThreshold)
	v.SetDefault("confirm_ended", d.ConfirmEnded)
	v.SetDefault("confirm_delay", d.ConfirmDelay)

	v.SetDefault("browser.headless", d.Browser.Headless)
	v.SetDefault("browser.stealth", d.Browser.Stealth)
	v.SetDefault("browser.user_agent", d.Browser.UserAgent)
	v.SetDefault("browser.chrome_path", d.Browser.ChromePath)
	v.SetDefault("browser.timeout", d.Browser.Timeout)

	v.SetDefault("selectors.domain", d.Selectors.Domain)
	v.SetDefault("selectors.row", d.Selectors.Row)
	v.SetDefault("selectors.price", d.Selectors.Price)
	v.SetDefault("selectors.type", d.Selectors.Type)
	v.SetDefault("selectors.bids", d.Selectors.Bids)
	v.SetDefault("selectors.time", d.Selectors.Time)
	v.SetDefault("selectors.ended", d.Selectors.Ended)
	v.SetDefault("selectors.time_container", d.Selectors.TimeContainer)

	v.SetDefault("publish.bucket", d.Publish.Bucket)
	v.SetDefault("publish.region", d.Publish.Region)
	v.SetDefault("publish.endpoint", d.Publish.Endpoint)
	v.SetDefault("publish.prefix", d.Publish.Prefix)
	v.SetDefault("publish.access_key", d.Publish.AccessKey)
	v.SetDefault("publish.secret_key", d.Publish.SecretKey)
	v.SetDefault("publish.force_path_style", d.Publish.ForcePathStyle)
}

// BindEnv enables DROPWATCH_* overrides, including nested keys
// (DROPWATCH_PUBLISH_BUCKET), and loads a .env file when present.
func BindEnv(v *viper.Viper) {
	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

// Load decodes v into a Config and validates it. v must have been prepared
// with SetDefaults; keys without a default are not decoded.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatValidationError(e))
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, e.Param())
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be %s %s", field, e.Tag(), e.Param())
	default:
		return fmt.Sprintf("%s failed validation '%s'", field, e.Tag())
	}
}
