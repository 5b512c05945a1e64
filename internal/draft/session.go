package draft

import (
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const DefaultTTL = 30 * time.Minute

type session struct {
	draft   *Draft
	expires time.Time
}

// Sessions is the in-memory registry of authoring sessions, keyed by
// the ulid carried in the session cookie. Drafts never touch disk; an
// expired or restarted process loses them, matching the draft's
// in-memory lifetime.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	ttl      time.Duration

	now func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Sessions{
		sessions: make(map[string]*session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create starts a new authoring session and returns its id together
// with the fresh draft.
func (s *Sessions) Create() (string, *Draft) {
	id := ulid.Make().String()
	d := New()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	s.sessions[id] = &session{
		draft:   d,
		expires: s.now().Add(s.ttl),
	}
	return id, d
}

// Get returns the draft for id, refreshing its expiry. The second
// return is false when the session does not exist or has expired.
func (s *Sessions) Get(id string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if s.now().After(sess.expires) {
		delete(s.sessions, id)
		return nil, false
	}
	sess.expires = s.now().Add(s.ttl)
	return sess.draft, true
}

// Destroy discards the session and its draft.
func (s *Sessions) Destroy(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

func (s *Sessions) sweepLocked() {
	now := s.now()
	for id, sess := range s.sessions {
		if now.After(sess.expires) {
			delete(s.sessions, id)
		}
	}
}
