// Package page defines how the monitor obtains the rendered results page.
// Implement Source to feed auction rows from a browser, a plain HTTP fetch,
// or a fixture in tests.
package page

import (
	"context"
	"errors"
)

// Source supplies the current rendered results page. A Source is used by a
// single monitoring run and is not safe for concurrent use.
type Source interface {
	// Open navigates to the results page and applies the view settings.
	// Failures of individual settings are tolerated; an error means the
	// page itself could not be loaded.
	Open(ctx context.Context) error

	// Capture returns the page HTML as currently rendered.
	Capture(ctx context.Context) (string, error)

	// Reset re-applies the view settings, e.g. after the page lost its
	// filters and shows no rows.
	Reset(ctx context.Context) error

	// Close releases any resources (browser instances, etc.).
	Close() error

	// Type returns a string identifying the source (e.g., "static", "dynamic").
	Type() string
}

// ErrNotOpen is returned by Capture before Open succeeded.
var ErrNotOpen = errors.New("page source not open")
