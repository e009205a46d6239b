package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/physiomath/go-physiomath"
)

const sessionCookie = "physiomath_session"

// maxSessions caps the store; past it the longest idle session is evicted.
const maxSessions = 1024

type sessionEntry struct {
	session *physiomath.Session
	seen    time.Time
}

// sessionStore maps browser cookies to generation sessions. Idle sessions
// expire after ttl unless a generation is still running.
type sessionStore struct {
	gen      *physiomath.Generator
	ttl      time.Duration
	capacity int
	now      func() time.Time
	mu       sync.Mutex
	entries  map[uuid.UUID]*sessionEntry
}

func newSessionStore(gen *physiomath.Generator, ttl time.Duration) *sessionStore {
	return &sessionStore{
		gen:      gen,
		ttl:      ttl,
		capacity: maxSessions,
		now:      time.Now,
		entries:  make(map[uuid.UUID]*sessionEntry),
	}
}

// get returns the session for id, creating it when absent.
func (st *sessionStore) get(id uuid.UUID) *physiomath.Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := st.now()
	st.pruneLocked(now)

	e, ok := st.entries[id]
	if !ok {
		if len(st.entries) >= st.capacity {
			st.evictIdlestLocked()
		}
		e = &sessionEntry{session: physiomath.NewSession(st.gen)}
		st.entries[id] = e
	}
	e.seen = now
	return e.session
}

func (st *sessionStore) pruneLocked(now time.Time) {
	for id, e := range st.entries {
		if now.Sub(e.seen) > st.ttl && !e.session.Busy() {
			delete(st.entries, id)
		}
	}
}

// evictIdlestLocked drops the least recently seen session that is not
// generating. Busy sessions are never evicted.
func (st *sessionStore) evictIdlestLocked() {
	var (
		oldest uuid.UUID
		seen   time.Time
		found  bool
	)
	for id, e := range st.entries {
		if e.session.Busy() {
			continue
		}
		if !found || e.seen.Before(seen) {
			oldest, seen, found = id, e.seen, true
		}
	}
	if found {
		delete(st.entries, oldest)
	}
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.entries)
}

// session resolves the caller's session from its cookie. The store entry
// is created here, on the first generation, not when the cookie is issued.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*physiomath.Session, uuid.UUID) {
	id := s.sessionID(w, r)
	return s.sessions.get(id), id
}

// sessionID reads the session cookie, issuing a new one when missing or
// malformed.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request) uuid.UUID {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id
		}
	}
	id := uuid.New()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id.String(),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
