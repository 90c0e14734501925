package wizard

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/youruser/pledgeapp/internal/media"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

type entry struct {
	mu sync.Mutex
	s  *Session
}

// Store holds wizard sessions in memory.
type Store struct {
	refs *media.Refs
	ttl  time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
// A non-positive ttl disables expiry.
func NewStore(refs *media.Refs, ttl time.Duration) *Store {
	if refs == nil {
		refs = media.NewRefs()
	}
	return &Store{
		refs:     refs,
		ttl:      ttl,
		now:      func() time.Time { return time.Now().UTC() },
		sessions: make(map[string]*entry),
	}
}

// Refs is the reference registry sessions release into.
func (st *Store) Refs() *media.Refs { return st.refs }

// Create starts a new session.
func (st *Store) Create() View {
	s := newSession(uuid.NewString(), st.now())
	st.mu.Lock()
	st.sessions[s.ID] = &entry{s: s}
	st.mu.Unlock()
	return s.View()
}

func (st *Store) lookup(id string) (*entry, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.sessions[id]
	return e, ok
}

// Get returns a snapshot of the session.
func (st *Store) Get(id string) (View, error) {
	var v View
	err := st.Read(id, func(s *Session) { v = s.View() })
	return v, err
}

// Read runs fn with the session locked, without touching UpdatedAt.
func (st *Store) Read(id string, fn func(*Session)) error {
	e, ok := st.lookup(id)
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.s == nil {
		return ErrSessionNotFound
	}
	fn(e.s)
	return nil
}

// Update runs fn with the session locked and bumps UpdatedAt on success.
func (st *Store) Update(id string, fn func(*Session) error) error {
	e, ok := st.lookup(id)
	if !ok {
		return ErrSessionNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.s == nil {
		return ErrSessionNotFound
	}
	if err := fn(e.s); err != nil {
		return err
	}
	e.s.UpdatedAt = st.now()
	return nil
}

// Delete ends a session and releases its resources.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	e, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return false
	}
	st.release(e)
	return true
}

func (st *Store) release(e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.s != nil {
		e.s.CancelCrop(st.refs)
		e.s = nil
	}
}

// Sweep removes sessions idle for longer than the ttl and returns how many
// were removed.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)
	var expired []*entry
	st.mu.Lock()
	for id, e := range st.sessions {
		e.mu.Lock()
		stale := e.s == nil || e.s.UpdatedAt.Before(cutoff)
		e.mu.Unlock()
		if stale {
			expired = append(expired, e)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()
	for _, e := range expired {
		st.release(e)
	}
	return len(expired)
}

// Len is the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close releases every session.
func (st *Store) Close() {
	st.mu.Lock()
	all := st.sessions
	st.sessions = make(map[string]*entry)
	st.mu.Unlock()
	for _, e := range all {
		st.release(e)
	}
}
