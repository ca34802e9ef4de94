package store

import "sync"

// PresenceEntry is one online user as seen by the client
type PresenceEntry struct {
	UserID   uint
	Username string
	Avatar   string
}

// PresenceStore holds the client's view of the online roster. The server
// broadcasts the complete roster on every change, so replacement is a full
// overwrite, never a delta merge.
type PresenceStore struct {
	mu     sync.Mutex
	roster []PresenceEntry
}

// NewPresenceStore creates an empty presence store
func NewPresenceStore() *PresenceStore {
	return &PresenceStore{}
}

// ReplaceRoster overwrites the roster with the incoming authoritative list
func (s *PresenceStore) ReplaceRoster(entries []PresenceEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.roster = make([]PresenceEntry, len(entries))
	copy(s.roster, entries)
}

// Roster returns a copy of the current roster
func (s *PresenceStore) Roster() []PresenceEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PresenceEntry, len(s.roster))
	copy(out, s.roster)
	return out
}

// IsOnline reports whether the user appears in the roster
func (s *PresenceStore) IsOnline(userID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.roster {
		if e.UserID == userID {
			return true
		}
	}
	return false
}
