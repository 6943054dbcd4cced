// Package extract reads auction rows out of the rendered results page.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/dropwatch/internal/auction"
	"github.com/jmylchreest/dropwatch/internal/logger"
)

// EndedText is the time text recorded for rows that only carry the ended
// marker element.
const EndedText = "Ended"

// Selectors locates the parts of an auction row. Every row-scoped selector is
// evaluated inside the Row ancestor of a Domain element.
type Selectors struct {
	Domain        string `mapstructure:"domain" validate:"required"`
	Row           string `mapstructure:"row" validate:"required"`
	Price         string `mapstructure:"price" validate:"required"`
	Type          string `mapstructure:"type"`
	Bids          string `mapstructure:"bids"`
	Time          string `mapstructure:"time"`
	Ended         string `mapstructure:"ended"`
	TimeContainer string `mapstructure:"time_container"`
}

// DefaultSelectors matches the dropcatch.com results table.
func DefaultSelectors() Selectors {
	return Selectors{
		Domain:        "#domainName",
		Row:           "section",
		Price:         "#domainPrice",
		Type:          ".dc-table-search-results__type",
		Bids:          "#bidCount",
		Time:          "#time-remaining",
		Ended:         "[translation='TimeRemaining_Ended']",
		TimeContainer: "app-time-remaining",
	}
}

// Result holds the rows read from one page capture.
type Result struct {
	Rows    []auction.Observation
	Visible int // domain elements on the page
	Skipped int // visible rows missing a required field
}

// Extractor turns page HTML into observations.
type Extractor struct {
	sel Selectors
}

// New creates an extractor. Empty selectors fall back to the defaults.
func New(sel Selectors) *Extractor {
	def := DefaultSelectors()
	sel.Domain = coalesce(sel.Domain, def.Domain)
	sel.Row = coalesce(sel.Row, def.Row)
	sel.Price = coalesce(sel.Price, def.Price)
	sel.Type = coalesce(sel.Type, def.Type)
	sel.Bids = coalesce(sel.Bids, def.Bids)
	sel.Time = coalesce(sel.Time, def.Time)
	sel.Ended = coalesce(sel.Ended, def.Ended)
	sel.TimeContainer = coalesce(sel.TimeContainer, def.TimeContainer)
	return &Extractor{sel: sel}
}

// Extract parses html and returns every row that has a domain and a price.
// Rows missing either are skipped without affecting their siblings.
func (e *Extractor) Extract(html string) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Result{}, fmt.Errorf("parse page: %w", err)
	}

	var res Result
	anchors := doc.Find(e.sel.Domain)
	res.Visible = anchors.Length()

	anchors.Each(func(i int, a *goquery.Selection) {
		obs, ok := e.row(a)
		if !ok {
			res.Skipped++
			logger.Debug("row skipped", "index", i, "domain", cleanText(a.Text()))
			return
		}
		res.Rows = append(res.Rows, obs)
	})

	return res, nil
}

func (e *Extractor) row(anchor *goquery.Selection) (auction.Observation, bool) {
	domain := cleanText(anchor.Text())
	if domain == "" {
		return auction.Observation{}, false
	}

	row := anchor.Closest(e.sel.Row)
	if row.Length() == 0 {
		return auction.Observation{}, false
	}

	price := lookup(row, e.sel.Price)
	if !price.Found {
		return auction.Observation{}, false
	}

	return auction.Observation{
		Domain:  domain,
		Price:   price.Value,
		Type:    lookup(row, e.sel.Type).Or(auction.DefaultType),
		Bids:    lookup(row, e.sel.Bids).Or(auction.DefaultBids),
		RawTime: e.timeText(row).Or(""),
	}, true
}

// timeText prefers the live timer, then the ended marker, then whatever the
// timer container holds.
func (e *Extractor) timeText(row *goquery.Selection) Field {
	return lookup(row, e.sel.Time).
		OrElse(func() Field {
			if exists(row, e.sel.Ended) {
				return Found(EndedText)
			}
			return Absent
		}).
		OrElse(func() Field {
			return lookup(row, e.sel.TimeContainer)
		})
}

func lookup(scope *goquery.Selection, selector string) Field {
	if selector == "" {
		return Absent
	}
	s := scope.Find(selector).First()
	if s.Length() == 0 {
		return Absent
	}
	return Found(cleanText(s.Text()))
}

func exists(scope *goquery.Selection, selector string) bool {
	return selector != "" && scope.Find(selector).Length() > 0
}

// cleanText collapses whitespace runs into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
