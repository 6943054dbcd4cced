package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/viper"
)

func TestDefaults_Valid(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("Defaults().Validate() error = %v", err)
	}
}

func TestLoad_DefaultsOnly(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	got, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Defaults(), got); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DROPWATCH_MAX_DURATION", "90m")
	t.Setenv("DROPWATCH_STUCK_THRESHOLD", "4")
	t.Setenv("DROPWATCH_PUBLISH_BUCKET", "drops")
	t.Setenv("DROPWATCH_PUBLISH_REGION", "us-east-1")
	t.Setenv("DROPWATCH_BROWSER_HEADLESS", "false")

	v := viper.New()
	SetDefaults(v)
	BindEnv(v)

	got, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.MaxDuration != 90*time.Minute {
		t.Errorf("MaxDuration = %v, want 90m", got.MaxDuration)
	}
	if got.StuckThreshold != 4 {
		t.Errorf("StuckThreshold = %d, want 4", got.StuckThreshold)
	}
	if !got.Publish.Enabled() || got.Publish.Region != "us-east-1" {
		t.Errorf("Publish = %+v", got.Publish)
	}
	if got.Browser.Headless {
		t.Error("expected headless to be disabled")
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".dropwatch.yaml")
	content := `
output: results.json
format: json
filters:
  - .net
poll_interval: 2s
selectors:
  row: tr.lot
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig() error = %v", err)
	}

	got, err := Load(v)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Output != "results.json" || got.Format != "json" {
		t.Errorf("output = %q format = %q", got.Output, got.Format)
	}
	if diff := cmp.Diff([]string{".net"}, got.Filters); diff != "" {
		t.Errorf("Filters mismatch (-want +got):\n%s", diff)
	}
	if got.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v", got.PollInterval)
	}
	if got.Selectors.Row != "tr.lot" {
		t.Errorf("Selectors.Row = %q", got.Selectors.Row)
	}
	if got.Selectors.Domain != Defaults().Selectors.Domain {
		t.Errorf("unset selector lost its default: %q", got.Selectors.Domain)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"bad format", func(c *Config) { c.Format = "xml" }, "Format"},
		{"bad fetch mode", func(c *Config) { c.FetchMode = "headful" }, "FetchMode"},
		{"missing url", func(c *Config) { c.URL = "" }, "URL"},
		{"relative url", func(c *Config) { c.URL = "dropcatch" }, "URL"},
		{"zero poll interval", func(c *Config) { c.PollInterval = 0 }, "PollInterval"},
		{"threshold too low", func(c *Config) { c.StuckThreshold = 1 }, "StuckThreshold"},
		{"bucket without region", func(c *Config) { c.Publish.Bucket = "drops" }, "Publish.Region"},
		{"missing domain selector", func(c *Config) { c.Selectors.Domain = "" }, "Selectors.Domain"},
		{"zero browser timeout", func(c *Config) { c.Browser.Timeout = 0 }, "Browser.Timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err, tt.field)
			}
		})
	}
}

func TestPublish_Enabled(t *testing.T) {
	if (Publish{}).Enabled() {
		t.Error("empty publish config should be disabled")
	}
	if !(Publish{Bucket: "b"}).Enabled() {
		t.Error("bucket should enable publishing")
	}
}
