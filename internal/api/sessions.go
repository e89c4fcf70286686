package api

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"
	"github.com/valter-silva-au/flowfolio/internal/core"
)

// Chat session limits used when Options leaves them zero.
const (
	DefaultSessionTTL  = 30 * time.Minute
	DefaultMaxSessions = 1000
	DefaultMaxTurns    = 200
)

// chatEntry is a cached chat session with the time it was last used.
type chatEntry struct {
	session  core.AssistantSession
	lastUsed atomic.Int64
}

func (e *chatEntry) touch(now time.Time) {
	e.lastUsed.Store(now.UnixNano())
}

// expired reports whether the session sat idle longer than ttl. A session
// waiting on a reply never expires.
func (e *chatEntry) expired(now time.Time, ttl time.Duration) bool {
	if e.session.State() == core.AssistantSending {
		return false
	}
	return now.Sub(time.Unix(0, e.lastUsed.Load())) > ttl
}

func newSessionCache(size int, logger hclog.Logger) *lru.Cache {
	cache, err := lru.NewWithEvict(size, func(key, _ any) {
		logger.Debug("chat session dropped", "id", key)
	})
	if err != nil {
		// Only a non-positive size fails, and NewServer defaults it.
		panic(err)
	}
	return cache
}

func (s *Server) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now()
}

func (s *Server) addSession(id string, session core.AssistantSession) {
	entry := &chatEntry{session: session}
	entry.touch(s.now())
	s.sessions.Add(id, entry)
}

// session returns a live session and marks it used. An expired session is
// dropped and reported as missing.
func (s *Server) session(id string) (core.AssistantSession, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	entry := v.(*chatEntry)

	now := s.now()
	if entry.expired(now, s.opts.SessionTTL) {
		s.sessions.Remove(id)
		return nil, false
	}
	entry.touch(now)
	return entry.session, true
}

func (s *Server) touchSession(id string) {
	if v, ok := s.sessions.Peek(id); ok {
		v.(*chatEntry).touch(s.now())
	}
}

func (s *Server) removeSession(id string) bool {
	if _, err := uuid.Parse(id); err != nil {
		return false
	}
	return s.sessions.Remove(id)
}

// SweepSessions drops every expired chat session and returns how many were
// dropped.
func (s *Server) SweepSessions() int {
	now := s.now()
	dropped := 0
	for _, key := range s.sessions.Keys() {
		v, ok := s.sessions.Peek(key)
		if !ok {
			continue
		}
		if v.(*chatEntry).expired(now, s.opts.SessionTTL) && s.sessions.Remove(key) {
			dropped++
		}
	}
	return dropped
}

func (s *Server) sweepLoop(ctx context.Context) {
	interval := min(s.opts.SessionTTL/2, time.Minute)
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.SweepSessions(); n > 0 {
				s.logger.Debug("swept idle chat sessions", "count", n)
			}
		}
	}
}
