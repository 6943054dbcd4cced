// Package report renders auction snapshots as terminal tables.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/shopspring/decimal"

	"github.com/jmylchreest/dropwatch/internal/auction"
	"github.com/jmylchreest/dropwatch/internal/output"
)

// Summary aggregates a snapshot.
type Summary struct {
	Tracked   int
	Active    int
	Finalized int
	Unpriced  int // rows whose price did not parse as a number
	Total     decimal.Decimal
	Top       output.Row
}

// Summarize counts statuses and totals prices. Prices are the normalized
// strings stored in the snapshot.
func Summarize(rows []output.Row) Summary {
	s := Summary{Tracked: len(rows), Total: decimal.Zero}
	var top decimal.Decimal

	for _, r := range rows {
		switch auction.Status(r.Status) {
		case auction.StatusActive:
			s.Active++
		case auction.StatusFinalized:
			s.Finalized++
		}

		price, err := decimal.NewFromString(r.Price)
		if err != nil {
			s.Unpriced++
			continue
		}
		s.Total = s.Total.Add(price)
		if s.Top.Domain == "" || price.GreaterThan(top) {
			top = price
			s.Top = r
		}
	}
	return s
}

// Render writes rows as a table followed by the summary footer.
func Render(w io.Writer, title string, rows []output.Row) Summary {
	sum := Summarize(rows)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	if title != "" {
		t.SetTitle(title)
	}

	header := make(table.Row, len(output.Columns))
	for i, c := range output.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, r := range rows {
		fields := r.Fields()
		row := make(table.Row, len(fields))
		for i, f := range fields {
			row[i] = f
		}
		t.AppendRow(row)
	}

	t.AppendFooter(table.Row{
		fmt.Sprintf("%d tracked", sum.Tracked),
		sum.Total.StringFixed(2),
		fmt.Sprintf("%d active / %d finalized", sum.Active, sum.Finalized),
		"", "", "",
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
	})
	t.SetStyle(table.StyleRounded)
	t.Render()

	return sum
}
