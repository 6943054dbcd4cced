package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/jmylchreest/dropwatch/internal/logger"
)

const (
	pageSizeSelect   = "mat-select[role='combobox']"
	pageSizeOptionID = "#mat-option-3" // the option rendered for 250 rows
	pageSizeDefault  = 250

	dropdownSettle = 2 * time.Second
	pageSizeSettle = 5 * time.Second
)

// applySettings ticks every configured filter and expands the page size.
// Each step is best effort: a missing control is logged and skipped.
func (s *Session) applySettings(ctx context.Context) {
	logger.Info("applying view settings", "filters", len(s.config.Filters), "page_size", s.config.PageSize)

	for _, name := range s.config.Filters {
		if err := s.tickFilter(ctx, name); err != nil {
			logger.Warn("filter not applied", "filter", name, "error", err)
			continue
		}
		logger.Debug("filter applied", "filter", name)
	}

	if s.config.PageSize <= 0 {
		return
	}
	if err := s.expandPageSize(ctx); err != nil {
		logger.Warn("page size not changed, proceeding with current view", "page_size", s.config.PageSize, "error", err)
		return
	}
	logger.Info("page view expanded", "page_size", s.config.PageSize)
}

func (s *Session) tickFilter(ctx context.Context, name string) error {
	sel := fmt.Sprintf("[name=%s]", strconv.Quote(name))
	return s.run(ctx, s.config.SetupTimeout,
		chromedp.WaitReady(sel, chromedp.ByQuery),
		chromedp.Evaluate(checkScript(sel), nil),
	)
}

func (s *Session) expandPageSize(ctx context.Context) error {
	err := s.run(ctx, s.config.SetupTimeout,
		chromedp.Evaluate(scrollToBottomJS, nil),
		chromedp.Sleep(dropdownSettle),
		chromedp.WaitVisible(pageSizeSelect, chromedp.ByQuery),
		chromedp.Evaluate(clickScript(pageSizeSelect), nil),
		chromedp.Sleep(dropdownSettle),
	)
	if err != nil {
		return fmt.Errorf("open page size dropdown: %w", err)
	}

	if err := s.pickPageSize(ctx); err != nil {
		return err
	}

	return s.run(ctx, s.config.SetupTimeout+pageSizeSettle,
		chromedp.Sleep(pageSizeSettle),
		chromedp.Evaluate(scrollToTopJS, nil),
	)
}

// pickPageSize clicks the known option id for the default size, falling back
// to the option whose label contains the size.
func (s *Session) pickPageSize(ctx context.Context) error {
	if s.config.PageSize == pageSizeDefault {
		err := s.run(ctx, s.config.SetupTimeout,
			chromedp.WaitVisible(pageSizeOptionID, chromedp.ByQuery),
			chromedp.Evaluate(clickScript(pageSizeOptionID), nil),
		)
		if err == nil {
			return nil
		}
		logger.Debug("page size option id not found, trying label", "error", err)
	}

	xpath := optionXPath(s.config.PageSize)
	err := s.run(ctx, s.config.SetupTimeout,
		chromedp.WaitVisible(xpath, chromedp.BySearch),
		chromedp.Evaluate(clickXPathScript(xpath), nil),
	)
	if err != nil {
		return fmt.Errorf("select page size option: %w", err)
	}
	return nil
}

func optionXPath(size int) string {
	return fmt.Sprintf("//mat-option//span[contains(text(), '%d')]", size)
}

// checkScript clicks the checkbox matched by sel unless it is already checked.
func checkScript(sel string) string {
	return fmt.Sprintf(`(() => {
    const el = document.querySelector(%s);
    if (el && !el.checked) { el.click(); }
    return !!el;
})()`, strconv.Quote(sel))
}

// clickScript clicks through overlays, which a synthetic mouse event cannot.
func clickScript(sel string) string {
	return fmt.Sprintf(`document.querySelector(%s).click();`, strconv.Quote(sel))
}

func clickXPathScript(xpath string) string {
	return fmt.Sprintf(`document.evaluate(%s, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue.click();`,
		strconv.Quote(xpath))
}
