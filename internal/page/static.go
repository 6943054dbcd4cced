package page

import (
	"context"
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/jmylchreest/dropwatch/internal/logger"
)

// StaticConfig holds configuration for the static source.
type StaticConfig struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// DefaultStaticConfig returns sensible defaults.
func DefaultStaticConfig() StaticConfig {
	return StaticConfig{
		UserAgent: defaultUserAgent,
		Timeout:   30 * time.Second,
	}
}

// Chrome user agent for better compatibility
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Static re-downloads the results page with Colly on every capture. It suits
// server-rendered mirrors and saved pages; view settings cannot be applied.
type Static struct {
	config StaticConfig
	opened bool
}

// NewStatic creates a static source.
func NewStatic(cfg StaticConfig) *Static {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultStaticConfig().UserAgent
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultStaticConfig().Timeout
	}
	return &Static{config: cfg}
}

// Open verifies the page can be fetched.
func (s *Static) Open(ctx context.Context) error {
	if _, err := s.fetch(ctx); err != nil {
		return err
	}
	s.opened = true
	return nil
}

// Capture fetches the page again.
func (s *Static) Capture(ctx context.Context) (string, error) {
	if !s.opened {
		return "", ErrNotOpen
	}
	return s.fetch(ctx)
}

// Reset is a no-op; a static page has no view state.
func (s *Static) Reset(ctx context.Context) error {
	logger.Debug("static source has no view settings to reset", "url", s.config.URL)
	return nil
}

func (s *Static) fetch(ctx context.Context) (string, error) {
	// Create a new collector for each request
	c := colly.NewCollector(
		colly.UserAgent(s.config.UserAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.config.Timeout)

	var (
		html     string
		status   int
		fetchErr error
	)

	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		html = string(r.Body)
		logger.Debug("static capture response received",
			"status", r.StatusCode,
			"body_size", len(r.Body))
	})

	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
		fetchErr = fmt.Errorf("fetch error: %w", err)
	})

	if err := c.Visit(s.config.URL); err != nil {
		if fetchErr != nil {
			return "", fetchErr
		}
		return "", fmt.Errorf("failed to visit URL: %w", err)
	}
	if fetchErr != nil {
		return "", fetchErr
	}

	logger.Debug("static capture complete", "url", s.config.URL, "status", status)
	return html, nil
}

// Close releases resources.
func (s *Static) Close() error {
	s.opened = false
	return nil
}

// Type returns the source type.
func (s *Static) Type() string {
	return "static"
}
