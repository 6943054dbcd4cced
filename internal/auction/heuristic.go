package auction

import (
	"strings"
	"unicode/utf8"
)

// DefaultStuckThreshold is the number of consecutive unchanged time readings
// after which a timer is considered frozen.
const DefaultStuckThreshold = 10

// endedMarker is matched case-insensitively against the time text.
const endedMarker = "ended"

// minTimeTextLen is the shortest time text that can describe a running timer.
const minTimeTextLen = 2

// Policy decides when an auction should be treated as ended. The site never
// publishes an authoritative "ended" signal, so the decision is inferred from
// the remaining-time text and how long it has stayed unchanged.
type Policy struct {
	// StuckThreshold is the stuck-count at which a row is frozen.
	StuckThreshold int
}

// DefaultPolicy returns the policy used when nothing is configured.
func DefaultPolicy() Policy {
	return Policy{StuckThreshold: DefaultStuckThreshold}
}

// Decision is the outcome of evaluating one row.
type Decision struct {
	Status     Status
	StuckCount int
	Ended      bool // text carries the ended marker
	Frozen     bool // stuck-count reached the threshold
}

// HasEndedMarker reports whether the time text says the auction ended.
func HasEndedMarker(text string) bool {
	return strings.Contains(strings.ToLower(text), endedMarker)
}

// IsBorderline reports whether text would only be treated as ended because it
// is empty or too short to be a timer. Such reads are often render gaps.
func IsBorderline(text string) bool {
	return !HasEndedMarker(text) && utf8.RuneCountInString(text) < minTimeTextLen
}

// Decide evaluates a row from its current and previous time text.
func (p Policy) Decide(rawTime, prevRaw string, prevStuck int) Decision {
	d := Decision{Ended: HasEndedMarker(rawTime)}

	if rawTime == prevRaw && !d.Ended {
		d.StuckCount = prevStuck + 1
	}

	threshold := p.StuckThreshold
	if threshold <= 0 {
		threshold = DefaultStuckThreshold
	}
	d.Frozen = d.StuckCount >= threshold

	if d.Ended || utf8.RuneCountInString(rawTime) < minTimeTextLen || d.Frozen {
		d.Status = StatusFinalized
	} else {
		d.Status = StatusActive
	}
	return d
}

// Apply evaluates obs against the ledger and stores the updated record. The
// record is rewritten on every call, even when the status does not change.
//
// Finalized is sticky: only a record observed exactly once so far may move
// back to Active.
func (p Policy) Apply(l *Ledger, obs Observation, date string) (Record, Decision) {
	prev, known := l.Get(obs.Domain)

	d := p.Decide(obs.RawTime, prev.RawTime, prev.StuckCount)

	status := d.Status
	if known && prev.Finalized() && prev.Seen > 1 {
		status = StatusFinalized
	}

	rec := Record{
		Domain:     obs.Domain,
		Price:      NormalizePrice(obs.Price),
		Status:     status,
		Type:       obs.Type,
		Bids:       obs.Bids,
		RawTime:    obs.RawTime,
		StuckCount: d.StuckCount,
		Date:       date,
		Seen:       prev.Seen + 1,
	}
	if rec.Type == "" {
		rec.Type = DefaultType
	}
	if rec.Bids == "" {
		rec.Bids = DefaultBids
	}

	l.Put(rec)
	return rec, d
}
