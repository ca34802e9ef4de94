// Package store holds the client-side state stores that merge optimistic
// local mutations with server-confirmed state and inbound realtime events.
// A store never re-fetches on a realtime event; events are merged in place
// and merging the same logical event twice never duplicates an entry.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CommentEntry is one row in a comment list store. Optimistic entries carry
// a temporary id and the IsTemporary marker until the server confirms.
type CommentEntry struct {
	ID          string
	AuthorID    uint
	AuthorName  string
	Text        string
	ReplyingTo  string
	IsTemporary bool
	CreatedAt   time.Time
}

// CommentStore is the paginated comment list for one post
type CommentStore struct {
	mu       sync.Mutex
	entries  []CommentEntry
	pageSize int
	page     int
	hasMore  bool
	fetching bool
}

// NewCommentStore creates an empty store with the given page size
func NewCommentStore(pageSize int) *CommentStore {
	return &CommentStore{
		pageSize: pageSize,
		hasMore:  true,
	}
}

// InsertOptimistic adds a placeholder entry to the front of the list so the
// UI reflects the action with zero latency. Returns the temporary id used to
// reconcile the entry later.
func (s *CommentStore) InsertOptimistic(authorID uint, authorName, text string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := CommentEntry{
		ID:          uuid.NewString(),
		AuthorID:    authorID,
		AuthorName:  authorName,
		Text:        text,
		IsTemporary: true,
		CreatedAt:   time.Now(),
	}
	s.entries = append([]CommentEntry{entry}, s.entries...)
	return entry.ID
}

// Confirm replaces the placeholder with the authoritative server record in
// place; the entry's position in the list does not change. Returns false
// when no placeholder with tempID exists.
func (s *CommentStore) Confirm(tempID string, confirmed CommentEntry) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == tempID && s.entries[i].IsTemporary {
			confirmed.IsTemporary = false
			s.entries[i] = confirmed
			return true
		}
	}
	return false
}

// Reject removes the placeholder after a failed create. Returns false when
// no placeholder with tempID exists.
func (s *CommentStore) Reject(tempID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ID == tempID && s.entries[i].IsTemporary {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Remove drops a confirmed entry by id
func (s *CommentStore) Remove(id string) bool {
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

// BeginFetch marks a page fetch as in flight. Returns false when a fetch is
// already running or the list is exhausted, so rapid scroll events cannot
// request the same page twice.
func (s *CommentStore) BeginFetch() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.fetching || !s.hasMore {
		return false
	}
	s.fetching = true
	return true
}

// MergePage appends a fetched page, skipping ids already present. The list
// is exhausted exactly when the page came back short.
func (s *CommentStore) MergePage(items []CommentEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.entries))
	for _, e := range s.entries {
		seen[e.ID] = struct{}{}
	}
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		s.entries = append(s.entries, item)
	}

	s.page++
	s.hasMore = len(items) >= s.pageSize
	s.fetching = false
}

// AbortFetch clears the in-flight marker after a failed page fetch
func (s *CommentStore) AbortFetch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetching = false
}

// Entries returns a copy of the current list, newest first
func (s *CommentStore) Entries() []CommentEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]CommentEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Page returns the number of pages merged so far
func (s *CommentStore) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// HasMore reports whether another page may exist
func (s *CommentStore) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}
