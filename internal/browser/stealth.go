package browser

import (
	"context"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// stealthScript hides the most common headless Chrome giveaways. It runs
// before any page script on every new document.
const stealthScript = `
(function() {
    Object.defineProperty(navigator, 'webdriver', { get: () => undefined, configurable: true });
    Object.defineProperty(navigator, 'languages', { get: () => Object.freeze(['en-US', 'en']), configurable: true });
    if (navigator.plugins.length === 0) {
        Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3], configurable: true });
    }
    if (!window.chrome) {
        Object.defineProperty(window, 'chrome', { value: { runtime: {} }, writable: true, configurable: false });
    }
    if (navigator.hardwareConcurrency === 0) {
        Object.defineProperty(navigator, 'hardwareConcurrency', { get: () => 4, configurable: true });
    }
    const query = Permissions.prototype.query;
    Permissions.prototype.query = function(p) {
        if (p && p.name === 'notifications') {
            return Promise.resolve({ state: Notification.permission });
        }
        return query.call(this, p);
    };
})();
`

// allocatorOptions builds the Chrome flags for cfg.
func allocatorOptions(cfg Config, chromePath string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(cfg.UserAgent),
	)

	if cfg.Stealth {
		opts = append(opts,
			chromedp.Flag("excludeSwitches", "enable-automation"),
			chromedp.Flag("useAutomationExtension", false),
			chromedp.Flag("disable-infobars", true),
			chromedp.Flag("disable-background-timer-throttling", true),
			chromedp.Flag("disable-backgrounding-occluded-windows", true),
			chromedp.Flag("disable-renderer-backgrounding", true),
			chromedp.Flag("lang", "en-US,en"),
		)
	}

	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	return opts
}

// injectStealthScript registers stealthScript for every new document. It
// must run before navigation.
func injectStealthScript() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	})
}

// captureScreenshot grabs the viewport for debugging, or nil if the browser
// is no longer responsive.
func captureScreenshot(ctx context.Context) []byte {
	var buf []byte
	captureCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := chromedp.Run(captureCtx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil
	}
	return buf
}
