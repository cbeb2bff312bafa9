// Package proposal holds pending extraction batches awaiting human
// approval. A proposal is keyed by the presentation handle (the Slack
// message timestamp) that displayed it; stale entries are purged lazily
// on insert, never by a background task.
package proposal

import (
	"sync"
	"time"

	"github.com/fyrsmithlabs/minuted/internal/meeting"
)

// DefaultTTL is how long a proposal may sit unapproved before it
// becomes eligible for purging.
const DefaultTTL = time.Hour

// Proposal is a batch of extracted decisions and actions tied to one
// presentation. The sequences are never mutated after creation; the
// approval layer addresses items by position.
type Proposal struct {
	ProjectID   string
	ProjectName string
	MeetingDate string
	Decisions   []meeting.Decision
	Actions     []meeting.Action
	ChannelID   string
	CreatedAt   time.Time
}

// Store is a thread-safe in-memory map of pending proposals.
type Store struct {
	mu      sync.RWMutex
	entries map[string]*Proposal
	ttl     time.Duration
	clock   func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects a clock. Tests use this to control expiry.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithTTL overrides the default 1-hour entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// NewStore creates an empty proposal store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]*Proposal),
		ttl:     DefaultTTL,
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Put stores a proposal under the given presentation handle, stamping
// CreatedAt, and sweeps out entries older than the TTL. The entry being
// inserted is never purged. Inserting at an existing handle replaces
// the previous proposal (last write wins).
func (s *Store) Put(handle string, p *Proposal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	p.CreatedAt = now

	cutoff := now.Add(-s.ttl)
	for key, entry := range s.entries {
		if key != handle && entry.CreatedAt.Before(cutoff) {
			delete(s.entries, key)
		}
	}

	s.entries[handle] = p
}

// Get returns the proposal for a handle without removing it. Per-item
// approvals read the proposal repeatedly; only whole-batch transitions
// remove it.
func (s *Store) Get(handle string) (*Proposal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.entries[handle]
	return p, ok
}

// Delete removes the proposal for a handle, if present.
func (s *Store) Delete(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, handle)
}

// Len returns the number of pending proposals.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
