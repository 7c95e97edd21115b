package storage

// Ledger records the identities of files already transferred during one
// course traversal. It is not safe for concurrent use; a course is walked
// by a single goroutine.
type Ledger struct {
	seen map[string]struct{}
}

// NewLedger returns an empty ledger
func NewLedger() *Ledger {
	return &Ledger{seen: make(map[string]struct{})}
}

// ShouldSkip reports whether identity has already been recorded
func (l *Ledger) ShouldSkip(identity string) bool {
	_, ok := l.seen[identity]
	return ok
}

// Record marks identity as transferred
func (l *Ledger) Record(identity string) {
	l.seen[identity] = struct{}{}
}

// Len returns the number of recorded identities
func (l *Ledger) Len() int {
	return len(l.seen)
}
