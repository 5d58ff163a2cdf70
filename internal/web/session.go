package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/basel-ax/archaeo/internal/app"
	"github.com/basel-ax/archaeo/internal/credential"
	"github.com/basel-ax/archaeo/internal/i18n"
	"github.com/basel-ax/archaeo/internal/module"
)

const sessionCookie = "archaeo_session"

type session struct {
	id      string
	app     *app.Shell
	keyring *credential.Keyring

	mu       sync.Mutex
	lastSeen time.Time
}

func (s *session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Sessions maps browser cookies to per-user application state
type Sessions struct {
	proc       module.Processor
	apiKey     string
	requireKey bool
	idle       time.Duration
	limit      int
	log        *logrus.Entry
	now        func() time.Time

	mu      sync.Mutex
	byID    map[string]*session
	closing sync.WaitGroup
}

// NewSessions creates an empty session store. Sessions idle for longer than
// idle are dropped by Sweep; past limit live sessions the least recently seen
// one is evicted.
func NewSessions(proc module.Processor, apiKey string, requireKey bool, idle time.Duration, limit int, log *logrus.Entry) *Sessions {
	return &Sessions{
		proc:       proc,
		apiKey:     apiKey,
		requireKey: requireKey,
		idle:       idle,
		limit:      limit,
		log:        log,
		now:        time.Now,
		byID:       make(map[string]*session),
	}
}

// lookup returns the session of r, if it has a live one
func (s *Sessions) lookup(r *http.Request) (*session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	s.mu.Lock()
	sess, ok := s.byID[c.Value]
	s.mu.Unlock()
	if ok {
		sess.touch(s.now())
	}
	return sess, ok
}

// ensure returns the session of r, starting a new one when needed
func (s *Sessions) ensure(w http.ResponseWriter, r *http.Request) *session {
	if sess, ok := s.lookup(r); ok {
		return sess
	}

	id := uuid.NewString()
	keyring := credential.NewKeyring(s.apiKey, s.requireKey)
	lang := i18n.Negotiate(r.Header.Get("Accept-Language"))
	log := s.log.WithField("session", id)
	sess := &session{
		id:       id,
		keyring:  keyring,
		app:      app.New(context.Background(), keyring, s.proc, lang, log),
		lastSeen: s.now(),
	}

	s.mu.Lock()
	evicted := s.evictLocked()
	s.byID[id] = sess
	s.mu.Unlock()

	if evicted != nil {
		log.WithField("evicted", evicted.id).Info("session limit reached")
		s.closeAsync(evicted)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	log.WithField("lang", lang).Debug("session started")
	return sess
}

// evictLocked removes the least recently seen session when the store is full
func (s *Sessions) evictLocked() *session {
	if s.limit <= 0 || len(s.byID) < s.limit {
		return nil
	}
	var oldest *session
	var oldestIdle time.Duration
	now := s.now()
	for _, sess := range s.byID {
		if idle := sess.idleSince(now); oldest == nil || idle > oldestIdle {
			oldest, oldestIdle = sess, idle
		}
	}
	delete(s.byID, oldest.id)
	return oldest
}

// closeAsync waits for the session's requests off the request path
func (s *Sessions) closeAsync(sess *session) {
	s.closing.Add(1)
	go func() {
		defer s.closing.Done()
		sess.app.Close()
	}()
}

// Len returns the number of live sessions
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Sweep drops idle sessions and returns how many were removed
func (s *Sessions) Sweep() int {
	now := s.now()
	var stale []*session

	s.mu.Lock()
	for id, sess := range s.byID {
		if sess.idleSince(now) > s.idle {
			stale = append(stale, sess)
			delete(s.byID, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.app.Close()
	}
	if len(stale) > 0 {
		s.log.WithField("count", len(stale)).Info("expired idle sessions")
	}
	return len(stale)
}

// Close drops every session, waiting for their requests to return
func (s *Sessions) Close() {
	s.mu.Lock()
	all := s.byID
	s.byID = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range all {
		sess.app.Close()
	}
	s.closing.Wait()
}
