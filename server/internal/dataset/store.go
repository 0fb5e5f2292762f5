package dataset

import "sync/atomic"

// Store holds the table currently being served. Readers obtain the table
// pointer once and keep using it, so a concurrent Replace never exposes a
// partially updated table.
type Store struct {
	cur atomic.Pointer[Table]
}

// NewStore creates a Store serving t. t may be nil.
func NewStore(t *Table) *Store {
	s := &Store{}
	if t != nil {
		s.cur.Store(t)
	}
	return s
}

// Table returns the current table, or nil if none has been loaded.
func (s *Store) Table() *Table {
	return s.cur.Load()
}

// Replace swaps in t and reports whether the served table changed.
// A nil table, or one with the same fingerprint as the current table,
// leaves the store untouched.
func (s *Store) Replace(t *Table) bool {
	if t == nil {
		return false
	}
	for {
		old := s.cur.Load()
		if old != nil && old.Fingerprint == t.Fingerprint {
			return false
		}
		if s.cur.CompareAndSwap(old, t) {
			return true
		}
	}
}
