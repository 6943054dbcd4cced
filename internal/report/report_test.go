package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jmylchreest/dropwatch/internal/output"
)

func sampleRows() []output.Row {
	return []output.Row{
		{Domain: "alpha.com", Price: "5069", Status: "Active", Date: "2026-10-15", Type: "Private Seller", Bids: "12"},
		{Domain: "beta.net", Price: "999.50", Status: "Finalized", Date: "2026-10-15", Type: "N/A", Bids: "0"},
		{Domain: "gamma.io", Price: "call", Status: "Finalized", Date: "2026-10-15", Type: "N/A", Bids: "3"},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRows())

	if s.Tracked != 3 || s.Active != 1 || s.Finalized != 2 {
		t.Errorf("counts = %d/%d/%d", s.Tracked, s.Active, s.Finalized)
	}
	if s.Unpriced != 1 {
		t.Errorf("Unpriced = %d, want 1", s.Unpriced)
	}
	if got := s.Total.StringFixed(2); got != "6068.50" {
		t.Errorf("Total = %s, want 6068.50", got)
	}
	if s.Top.Domain != "alpha.com" {
		t.Errorf("Top = %q, want alpha.com", s.Top.Domain)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	if s.Tracked != 0 || !s.Total.IsZero() || s.Top.Domain != "" {
		t.Errorf("unexpected summary for empty snapshot: %+v", s)
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	sum := Render(&buf, "run abc", sampleRows())

	out := buf.String()
	for _, want := range []string{"run abc", "DOMAIN", "alpha.com", "beta.net", "3 TRACKED", "6068.50", "1 ACTIVE / 2 FINALIZED"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
	if sum.Tracked != 3 {
		t.Errorf("Render() summary Tracked = %d", sum.Tracked)
	}
}
