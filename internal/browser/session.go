package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/dropwatch/internal/logger"
	"github.com/jmylchreest/dropwatch/internal/page"
)

const (
	scrollToBottomJS = `window.scrollTo(0, document.body.scrollHeight);`
	scrollToTopJS    = `window.scrollTo(0, 0);`
)

// Session keeps a single Chrome tab open on the results page for the whole
// monitoring run. It implements page.Source.
type Session struct {
	config Config

	allocCtx    context.Context
	allocCancel context.CancelFunc
	tabCtx      context.Context
	tabCancel   context.CancelFunc
}

var _ page.Source = (*Session)(nil)

// NewSession creates a session. No browser is started until Open.
func NewSession(cfg Config) *Session {
	return &Session{config: cfg.withDefaults()}
}

// Open starts Chrome, loads the results page and applies the view settings.
// Failing to apply a setting is logged, not returned.
func (s *Session) Open(ctx context.Context) error {
	if s.tabCtx != nil {
		return errors.New("session already open")
	}

	chromePath, err := FindChromePath(s.config.ChromePath)
	if err != nil {
		if s.config.ChromePath != "" {
			return err
		}
		logger.Warn("no Chrome binary found, relying on chromedp lookup")
	}

	s.allocCtx, s.allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOptions(s.config, chromePath)...)
	s.tabCtx, s.tabCancel = chromedp.NewContext(s.allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			logger.Debug("chromedp", "msg", fmt.Sprintf(format, args...))
		}),
	)

	// The first Run starts the browser and binds it to the tab context.
	if err := chromedp.Run(s.tabCtx); err != nil {
		_ = s.Close()
		return fmt.Errorf("start browser: %w", err)
	}

	logger.Debug("browser started",
		"headless", s.config.Headless,
		"stealth", s.config.Stealth,
		"chrome", chromePath)

	var actions []chromedp.Action
	if s.config.Stealth {
		actions = append(actions, injectStealthScript())
	}
	var title, html string
	actions = append(actions,
		chromedp.Navigate(s.config.URL),
		chromedp.WaitReady("body"),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &html),
	)

	if err := s.run(ctx, s.config.Timeout, actions...); err != nil {
		s.saveDebugScreenshot()
		_ = s.Close()
		return fmt.Errorf("load %s: %w", s.config.URL, err)
	}

	if challenge := detectChallenge(title, html); challenge != "" {
		logger.Warn("challenge page detected, results may be empty", "url", s.config.URL, "type", challenge)
	}

	s.applySettings(ctx)
	return nil
}

// Capture scrolls to the bottom so lazy rows render, waits for the page to
// settle and returns the DOM.
func (s *Session) Capture(ctx context.Context) (string, error) {
	if s.tabCtx == nil {
		return "", page.ErrNotOpen
	}

	var html string
	err := s.run(ctx, s.config.Timeout+s.config.ScrollSettle,
		chromedp.Evaluate(scrollToBottomJS, nil),
		chromedp.Sleep(s.config.ScrollSettle),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("capture: %w", err)
	}
	return html, nil
}

// Reset re-applies filters and page size, for when the results list has
// emptied out.
func (s *Session) Reset(ctx context.Context) error {
	if s.tabCtx == nil {
		return page.ErrNotOpen
	}
	s.applySettings(ctx)
	return nil
}

// Close shuts the tab and the browser process.
func (s *Session) Close() error {
	if s.tabCancel != nil {
		s.tabCancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	s.tabCtx, s.tabCancel = nil, nil
	s.allocCtx, s.allocCancel = nil, nil
	return nil
}

// Type returns the source type.
func (s *Session) Type() string {
	return "dynamic"
}

// run executes actions on the tab, bounded by timeout and by ctx. Cancelling
// the run context aborts the actions without closing the tab.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithTimeout(s.tabCtx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (s *Session) saveDebugScreenshot() {
	if s.tabCtx == nil {
		return
	}
	shot := captureScreenshot(s.tabCtx)
	if shot == nil {
		return
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("dropwatch-debug-%d.png", time.Now().UnixNano()))
	if err := os.WriteFile(path, shot, 0o644); err == nil {
		logger.Debug("debug screenshot saved", "path", path)
	}
}

// detectChallenge reports the kind of bot-protection page, or "".
func detectChallenge(title, html string) string {
	t := strings.ToLower(title)
	h := strings.ToLower(html)

	switch {
	case strings.Contains(t, "just a moment"),
		strings.Contains(t, "attention required"),
		strings.Contains(h, "cf_chl_opt"),
		strings.Contains(h, "cf-turnstile"):
		return "cloudflare"
	case strings.Contains(h, "hcaptcha.com"), strings.Contains(h, "h-captcha"):
		return "hcaptcha"
	case strings.Contains(h, "google.com/recaptcha"), strings.Contains(h, "g-recaptcha"):
		return "recaptcha"
	case strings.Contains(t, "access denied"), strings.Contains(h, "robot or human"):
		return "anti-bot"
	}
	return ""
}
