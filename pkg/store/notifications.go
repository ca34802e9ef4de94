package store

import (
	"sync"
	"time"
)

// NotificationEntry is one inbox row held client-side
type NotificationEntry struct {
	ID        string
	Type      string
	Message   string
	SenderID  uint
	IsRead    bool
	CreatedAt time.Time
}

// NotificationStore is the client-side inbox. REST fetches overwrite it;
// realtime events are merged in without a re-fetch.
type NotificationStore struct {
	mu      sync.Mutex
	entries []NotificationEntry
}

// NewNotificationStore creates an empty inbox store
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{}
}

// SetAll replaces the inbox with a REST-fetched list (newest first)
func (s *NotificationStore) SetAll(entries []NotificationEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make([]NotificationEntry, len(entries))
	copy(s.entries, entries)
}

// MergeIncoming prepends a realtime-pushed notification. Idempotent: merging
// the same id twice keeps a single entry, so a REST response racing the push
// for the same logical event cannot duplicate UI state.
func (s *NotificationStore) MergeIncoming(entry NotificationEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == entry.ID {
			s.entries[i] = entry
			return
		}
	}
	s.entries = append([]NotificationEntry{entry}, s.entries...)
}

// MarkRead flags one entry as read
func (s *NotificationStore) MarkRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].IsRead = true
			return
		}
	}
}

// Remove drops one entry by id
func (s *NotificationStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the inbox
func (s *NotificationStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
}

// Entries returns a copy of the inbox, newest first
func (s *NotificationStore) Entries() []NotificationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]NotificationEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// UnreadCount returns the number of unread entries
func (s *NotificationStore) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, e := range s.entries {
		if !e.IsRead {
			count++
		}
	}
	return count
}
