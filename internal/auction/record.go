// Package auction tracks the lifecycle of domain auctions observed on the
// results page and decides when an auction has ended.
package auction

import "strings"

// Status is the tracked lifecycle state of an auction.
type Status string

const (
	StatusActive    Status = "Active"
	StatusFinalized Status = "Finalized"
)

// Placeholders used when an optional column is missing from a row.
const (
	DefaultType = "N/A"
	DefaultBids = "0"
)

// DateLayout is the layout of Record.Date.
const DateLayout = "2006-01-02"

// Record is the last known state of a single auction.
type Record struct {
	Domain     string
	Price      string
	Status     Status
	Type       string
	Bids       string
	RawTime    string
	StuckCount int
	Date       string

	// Seen counts the cycles in which the domain was observed.
	Seen int
}

// Finalized reports whether the record has reached the terminal state.
func (r Record) Finalized() bool {
	return r.Status == StatusFinalized
}

// Observation is one row as read from the page during a poll cycle.
type Observation struct {
	Domain  string
	Price   string // raw text, e.g. "$5,069"
	Type    string
	Bids    string
	RawTime string
}

// NormalizePrice strips currency symbols, thousands separators and
// surrounding whitespace: "$5,069" becomes "5069".
func NormalizePrice(raw string) string {
	s := strings.ReplaceAll(raw, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	return strings.TrimSpace(s)
}
