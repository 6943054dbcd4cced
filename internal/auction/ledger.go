package auction

// Ledger maps domain names to their latest tracked state. Entries are never
// removed; iteration follows first-observation order.
//
// A Ledger is owned by a single monitoring run and is not safe for concurrent
// use.
type Ledger struct {
	records map[string]*Record
	order   []string
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{records: make(map[string]*Record)}
}

// Get returns a copy of the record for domain.
func (l *Ledger) Get(domain string) (Record, bool) {
	r, ok := l.records[domain]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Put stores rec, appending the domain to the iteration order when new.
func (l *Ledger) Put(rec Record) {
	if existing, ok := l.records[rec.Domain]; ok {
		*existing = rec
		return
	}
	r := rec
	l.records[rec.Domain] = &r
	l.order = append(l.order, rec.Domain)
}

// Len returns the number of distinct domains ever observed.
func (l *Ledger) Len() int {
	return len(l.order)
}

// Records returns copies of all records in first-observation order.
func (l *Ledger) Records() []Record {
	out := make([]Record, 0, len(l.order))
	for _, d := range l.order {
		out = append(out, *l.records[d])
	}
	return out
}

// FinalizeAll marks every record Finalized and returns how many changed.
func (l *Ledger) FinalizeAll() int {
	changed := 0
	for _, d := range l.order {
		r := l.records[d]
		if r.Status != StatusFinalized {
			r.Status = StatusFinalized
			changed++
		}
	}
	return changed
}

// Counts returns the number of active and finalized records.
func (l *Ledger) Counts() (active, finalized int) {
	for _, r := range l.records {
		if r.Status == StatusFinalized {
			finalized++
		} else {
			active++
		}
	}
	return active, finalized
}
