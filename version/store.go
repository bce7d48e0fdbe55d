// Package version provides the append-only, in-memory store of applied
// configuration snapshots. Records are immutable once saved and carry a
// strictly increasing version number; numbering is independent of parsing
// and validation. Durability, if ever needed, belongs in an external
// implementation layered behind the same Save/GetVersion/GetLatest/
// GetHistory contract.
package version

import (
	"sync"
	"time"

	"github.com/c360/brokerconf/conf"
)

// ChangeType tags how a record came to be.
type ChangeType int

const (
	// Initial marks the first successful apply on an orchestrator.
	Initial ChangeType = iota
	// Update marks a subsequent hot reload.
	Update
	// Rollback marks a record created by copying an older record's values.
	Rollback
)

// String returns the string representation of ChangeType
func (ct ChangeType) String() string {
	switch ct {
	case Initial:
		return "initial"
	case Update:
		return "update"
	case Rollback:
		return "rollback"
	default:
		return "unknown"
	}
}

// Record is an immutable snapshot of a configuration at the moment it was
// successfully applied. The Document is a deep copy owned by the record;
// nothing mutates it after creation.
type Record struct {
	Version   int            `json:"version"`
	Document  *conf.Document `json:"document"`
	AppliedAt time.Time      `json:"applied_at"`
	Change    ChangeType     `json:"change"`
	Note      string         `json:"note,omitempty"`
}

// Store is the in-memory version history. It is safe for concurrent use on
// its own, independent of the orchestrator's gate.
type Store struct {
	mu      sync.Mutex
	records []*Record
	next    int
}

// NewStore creates an empty store with numbering starting at 1.
func NewStore() *Store {
	return &Store{next: 1}
}

// Save appends a record. A record without an explicit version is assigned
// the next number; a record carrying one is stored as-is, and the counter
// advances past it when it exceeds the current sequence. The stored record
// is returned.
func (s *Store) Save(rec *Record) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *rec
	if stored.Version == 0 {
		stored.Version = s.next
		s.next++
	} else if stored.Version >= s.next {
		s.next = stored.Version + 1
	}

	s.records = append(s.records, &stored)
	return &stored
}

// GetVersion returns the record with the given number, or false.
func (s *Store) GetVersion(n int) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].Version == n {
			return s.records[i], true
		}
	}
	return nil, false
}

// GetLatest returns the record with the highest version number, or false
// when the store is empty.
func (s *Store) GetLatest() (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest *Record
	for _, rec := range s.records {
		if latest == nil || rec.Version > latest.Version {
			latest = rec
		}
	}
	return latest, latest != nil
}

// GetHistory returns up to count records, newest first, capped to however
// many exist. A non-positive count yields nil.
func (s *Store) GetHistory(count int) []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	if count <= 0 {
		return nil
	}
	if count > len(s.records) {
		count = len(s.records)
	}

	out := make([]*Record, 0, count)
	for i := len(s.records) - 1; i >= 0 && len(out) < count; i-- {
		out = append(out, s.records[i])
	}
	return out
}

// Clear discards all records and resets numbering to 1.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	s.next = 1
}

// Len reports how many records the store holds.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// NextVersion reports the number the next implicit save would receive.
func (s *Store) NextVersion() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}
