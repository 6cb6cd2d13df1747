package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erazemk/oficina/internal/workflow"
)

const sessionCookie = "oficina_session"

// SessionTTL is how long an idle console session keeps its workflow state.
const SessionTTL = 12 * time.Hour

type webContextKey string

const sessionKey webContextKey = "session"

// session is one operator screen: its workflow controller plus a one-shot
// flash message for the next page render.
type session struct {
	ctrl *workflow.Controller

	mu     sync.Mutex
	seen   time.Time
	loaded bool
	flash  PageData
}

func (s *session) setFlash(errMsg, success string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flash.Error = errMsg
	s.flash.Success = success
}

func (s *session) takeFlash() PageData {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flash
	s.flash = PageData{}
	return f
}

// needsLoad reports true exactly once per session.
func (s *session) needsLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return false
	}
	s.loaded = true
	return true
}

// Sessions maps session cookies to their workflow controllers.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*session
	newCtrl func() *workflow.Controller
	ttl     time.Duration
}

// NewSessions creates a session store building a controller per session.
func NewSessions(newCtrl func() *workflow.Controller, ttl time.Duration) *Sessions {
	return &Sessions{entries: make(map[string]*session), newCtrl: newCtrl, ttl: ttl}
}

// get returns the session for id, creating it when missing, and drops
// sessions idle for longer than the TTL.
func (ss *Sessions) get(id string) *session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := time.Now()
	for key, s := range ss.entries {
		s.mu.Lock()
		expired := now.Sub(s.seen) > ss.ttl
		s.mu.Unlock()
		if expired {
			delete(ss.entries, key)
		}
	}

	s, ok := ss.entries[id]
	if !ok {
		s = &session{ctrl: ss.newCtrl()}
		ss.entries[id] = s
	}
	s.mu.Lock()
	s.seen = now
	s.mu.Unlock()
	return s
}

// Len returns the number of live sessions.
func (ss *Sessions) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.entries)
}

// SessionMiddleware attaches the caller's session, issuing a cookie on the
// first visit.
func SessionMiddleware(ss *Sessions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ""
			if c, err := r.Cookie(sessionCookie); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), sessionKey, ss.get(id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func getSession(ctx context.Context) *session {
	s, _ := ctx.Value(sessionKey).(*session)
	return s
}
