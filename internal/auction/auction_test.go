package auction

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const testDate = "2026-10-15"

// --- NormalizePrice Tests ---

func TestNormalizePrice(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"$5,069", "5069"},
		{"$999", "999"},
		{" $1,234,567 ", "1234567"},
		{"42", "42"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizePrice(tt.raw); got != tt.want {
			t.Errorf("NormalizePrice(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

// --- Decide Tests ---

func TestDecide_EndedMarkerFinalizes(t *testing.T) {
	p := Policy{StuckThreshold: 5}

	for _, text := range []string{"Ended", "ended", "Auction ENDED", "ended 2m ago"} {
		d := p.Decide(text, "", 0)
		if d.Status != StatusFinalized {
			t.Errorf("Decide(%q) status = %s, want Finalized", text, d.Status)
		}
		if !d.Ended {
			t.Errorf("Decide(%q) Ended = false", text)
		}
	}
}

func TestDecide_EndedMarkerDoesNotCountAsStuck(t *testing.T) {
	p := Policy{StuckThreshold: 5}

	d := p.Decide("Ended", "Ended", 3)
	if d.StuckCount != 0 {
		t.Errorf("StuckCount = %d, want 0", d.StuckCount)
	}
}

func TestDecide_ShortOrEmptyTextFinalizes(t *testing.T) {
	p := Policy{StuckThreshold: 5}

	for _, text := range []string{"", "-", "0"} {
		if d := p.Decide(text, "2h 1m", 0); d.Status != StatusFinalized {
			t.Errorf("Decide(%q) status = %s, want Finalized", text, d.Status)
		}
	}
}

func TestDecide_RunningTimerIsActive(t *testing.T) {
	p := Policy{StuckThreshold: 5}

	d := p.Decide("2h 15m", "2h 16m", 4)
	if d.Status != StatusActive {
		t.Errorf("status = %s, want Active", d.Status)
	}
	if d.StuckCount != 0 {
		t.Errorf("StuckCount = %d, want reset to 0", d.StuckCount)
	}
}

func TestDecide_UnchangedTextIncrementsStuckCount(t *testing.T) {
	p := Policy{StuckThreshold: 5}

	d := p.Decide("2h 15m", "2h 15m", 2)
	if d.StuckCount != 3 {
		t.Errorf("StuckCount = %d, want 3", d.StuckCount)
	}
	if d.Frozen || d.Status != StatusActive {
		t.Errorf("unexpected decision %+v", d)
	}
}

func TestDecide_FrozenAtThreshold(t *testing.T) {
	p := Policy{StuckThreshold: 5}

	d := p.Decide("2h 15m", "2h 15m", 4)
	if !d.Frozen {
		t.Fatal("expected frozen at threshold")
	}
	if d.Status != StatusFinalized {
		t.Errorf("status = %s, want Finalized", d.Status)
	}
}

func TestDecide_ZeroThresholdUsesDefault(t *testing.T) {
	p := Policy{}

	if d := p.Decide("5m", "5m", DefaultStuckThreshold-2); d.Frozen {
		t.Error("should not freeze below the default threshold")
	}
	if d := p.Decide("5m", "5m", DefaultStuckThreshold-1); !d.Frozen {
		t.Error("should freeze at the default threshold")
	}
}

func TestIsBorderline(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"", true},
		{"x", true},
		{"Ended", false},
		{"2h", false},
		{"1d 4h", false},
	}
	for _, tt := range tests {
		if got := IsBorderline(tt.text); got != tt.want {
			t.Errorf("IsBorderline(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

// --- Apply Tests ---

func TestApply_CreatesRecordWithDefaults(t *testing.T) {
	l := NewLedger()
	p := Policy{StuckThreshold: 5}

	rec, _ := p.Apply(l, Observation{Domain: "alpha.com", Price: "$5,069", RawTime: "2h 15m"}, testDate)

	want := Record{
		Domain:  "alpha.com",
		Price:   "5069",
		Status:  StatusActive,
		Type:    DefaultType,
		Bids:    DefaultBids,
		RawTime: "2h 15m",
		Date:    testDate,
		Seen:    1,
	}
	if diff := cmp.Diff(want, rec); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}

	stored, ok := l.Get("alpha.com")
	if !ok {
		t.Fatal("record not stored in ledger")
	}
	if diff := cmp.Diff(rec, stored); diff != "" {
		t.Errorf("stored record mismatch (-want +got):\n%s", diff)
	}
}

func TestApply_UpdatesFieldsEveryCycle(t *testing.T) {
	l := NewLedger()
	p := Policy{StuckThreshold: 5}

	p.Apply(l, Observation{Domain: "alpha.com", Price: "$10", Bids: "1", RawTime: "Ended"}, "2026-10-14")
	rec, _ := p.Apply(l, Observation{Domain: "alpha.com", Price: "$25", Bids: "3", Type: "Private Seller", RawTime: "Ended"}, testDate)

	if rec.Price != "25" || rec.Bids != "3" || rec.Type != "Private Seller" || rec.Date != testDate {
		t.Errorf("fields not refreshed: %+v", rec)
	}
	if rec.Seen != 2 {
		t.Errorf("Seen = %d, want 2", rec.Seen)
	}
}

func TestApply_StuckCountResetsWhenTextChanges(t *testing.T) {
	l := NewLedger()
	p := Policy{StuckThreshold: 10}

	texts := []string{"3m", "3m", "3m", "2m", "2m"}
	wantStuck := []int{0, 1, 2, 0, 1}
	for i, text := range texts {
		rec, _ := p.Apply(l, Observation{Domain: "beta.com", Price: "$1", RawTime: text}, testDate)
		if rec.StuckCount != wantStuck[i] {
			t.Errorf("cycle %d: StuckCount = %d, want %d", i, rec.StuckCount, wantStuck[i])
		}
	}
}

func TestApply_FrozenStaysFinalized(t *testing.T) {
	l := NewLedger()
	p := Policy{StuckThreshold: 3}

	for i := 0; i < 4; i++ {
		p.Apply(l, Observation{Domain: "gamma.com", Price: "$1", RawTime: "45m"}, testDate)
	}
	rec, _ := l.Get("gamma.com")
	if !rec.Finalized() {
		t.Fatalf("expected Finalized after threshold, got %+v", rec)
	}

	// The timer starts moving again; the stuck count resets but the status
	// must not revert.
	rec, d := p.Apply(l, Observation{Domain: "gamma.com", Price: "$1", RawTime: "44m"}, testDate)
	if d.Status != StatusActive {
		t.Fatalf("raw decision should be Active, got %s", d.Status)
	}
	if !rec.Finalized() {
		t.Error("finalized record reverted to Active")
	}
	if rec.StuckCount != 0 {
		t.Errorf("StuckCount = %d, want 0", rec.StuckCount)
	}
}

func TestApply_FreshRecordCanFlipToActive(t *testing.T) {
	l := NewLedger()
	p := DefaultPolicy()

	rec, _ := p.Apply(l, Observation{Domain: "delta.com", Price: "$1", RawTime: ""}, testDate)
	if !rec.Finalized() {
		t.Fatal("empty time text should finalize")
	}

	rec, _ = p.Apply(l, Observation{Domain: "delta.com", Price: "$1", RawTime: "1h 2m"}, testDate)
	if rec.Finalized() {
		t.Error("freshly created record should flip to Active on a running timer")
	}
}

func TestApply_EstablishedFinalizedDoesNotFlip(t *testing.T) {
	l := NewLedger()
	p := DefaultPolicy()

	p.Apply(l, Observation{Domain: "eps.com", Price: "$1", RawTime: "Ended"}, testDate)
	p.Apply(l, Observation{Domain: "eps.com", Price: "$1", RawTime: "Ended"}, testDate)
	rec, _ := p.Apply(l, Observation{Domain: "eps.com", Price: "$1", RawTime: "1h"}, testDate)

	if !rec.Finalized() {
		t.Error("record finalized across cycles must stay Finalized")
	}
}

// --- Ledger Tests ---

func TestLedger_PreservesFirstObservationOrder(t *testing.T) {
	l := NewLedger()
	for _, d := range []string{"c.com", "a.com", "b.com", "a.com"} {
		l.Put(Record{Domain: d, Status: StatusActive})
	}

	var got []string
	for _, r := range l.Records() {
		got = append(got, r.Domain)
	}
	want := []string{"c.com", "a.com", "b.com"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestLedger_NeverShrinks(t *testing.T) {
	l := NewLedger()
	p := DefaultPolicy()

	for cycle := 0; cycle < 5; cycle++ {
		// Each cycle shows a different window of domains.
		for i := cycle; i < cycle+3; i++ {
			p.Apply(l, Observation{Domain: fmt.Sprintf("d%d.com", i), Price: "$1", RawTime: "5m"}, testDate)
		}
		if want := cycle + 3; l.Len() != want {
			t.Fatalf("cycle %d: Len = %d, want %d", cycle, l.Len(), want)
		}
	}
}

func TestLedger_FinalizeAllAndCounts(t *testing.T) {
	l := NewLedger()
	l.Put(Record{Domain: "a.com", Status: StatusActive})
	l.Put(Record{Domain: "b.com", Status: StatusFinalized})
	l.Put(Record{Domain: "c.com", Status: StatusActive})

	active, finalized := l.Counts()
	if active != 2 || finalized != 1 {
		t.Fatalf("Counts = (%d, %d), want (2, 1)", active, finalized)
	}

	if changed := l.FinalizeAll(); changed != 2 {
		t.Errorf("FinalizeAll changed %d, want 2", changed)
	}
	for _, r := range l.Records() {
		if !r.Finalized() {
			t.Errorf("%s not finalized", r.Domain)
		}
	}
}

func TestLedger_GetReturnsCopy(t *testing.T) {
	l := NewLedger()
	l.Put(Record{Domain: "a.com", Price: "1"})

	r, _ := l.Get("a.com")
	r.Price = "999"

	stored, _ := l.Get("a.com")
	if stored.Price != "1" {
		t.Error("mutating a returned record changed the ledger")
	}
}
