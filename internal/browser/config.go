// Package browser drives the auction results page in headless Chrome via
// chromedp. A Session applies the view filters and page size once, then
// captures the rendered DOM on demand.
package browser

import (
	"time"
)

// Config holds configuration for a browser session.
type Config struct {
	URL        string
	Filters    []string // checkbox names to tick before monitoring
	PageSize   int      // results per page; 0 keeps the site default
	UserAgent  string
	ChromePath string
	Headless   bool
	Stealth    bool // inject anti-automation patches before navigation

	Timeout      time.Duration // per navigation or capture
	SetupTimeout time.Duration // per view-setting step
	ScrollSettle time.Duration // pause after scrolling before a capture
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		UserAgent:    defaultUserAgent,
		Headless:     true,
		Timeout:      30 * time.Second,
		SetupTimeout: 20 * time.Second,
		ScrollSettle: 2 * time.Second,
	}
}

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.SetupTimeout <= 0 {
		c.SetupTimeout = d.SetupTimeout
	}
	if c.ScrollSettle < 0 {
		c.ScrollSettle = 0
	}
	return c
}
