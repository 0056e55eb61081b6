package web

import (
	"context"
	"sync"
	"time"

	"github.com/arcanaland/scrybe/internal/browser"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"
)

type session struct {
	browser  *browser.Browser
	lastSeen time.Time
}

// Sessions maps session ids to their browsers. Idle sessions are closed
// by Sweep.
type Sessions struct {
	mu         sync.Mutex
	entries    map[string]*session
	ttl        time.Duration
	newBrowser func() *browser.Browser
	now        func() time.Time
	log        logrus.FieldLogger
}

func NewSessions(ttl time.Duration, newBrowser func() *browser.Browser, log logrus.FieldLogger) *Sessions {
	return &Sessions{
		entries:    make(map[string]*session),
		ttl:        ttl,
		newBrowser: newBrowser,
		now:        time.Now,
		log:        log,
	}
}

// Get returns the browser of a live session and marks it as used.
func (s *Sessions) Get(id string) (*browser.Browser, bool) {
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = s.now()
	return entry.browser, true
}

// Create starts a new session.
func (s *Sessions) Create() (string, *browser.Browser) {
	id := ulid.Make().String()
	b := s.newBrowser()

	s.mu.Lock()
	s.entries[id] = &session{browser: b, lastSeen: s.now()}
	count := len(s.entries)
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"session_id": id,
		"sessions":   count,
	}).Info("Session created")
	return id, b
}

// Len returns the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep closes sessions idle for longer than the ttl and returns how many
// were removed.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*browser.Browser
	for id, entry := range s.entries {
		if entry.lastSeen.Before(cutoff) {
			expired = append(expired, entry.browser)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, b := range expired {
		b.Close()
	}
	if len(expired) > 0 {
		s.log.WithField("expired", len(expired)).Info("Sessions expired")
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			return
		}
	}
}

// Close shuts down every session.
func (s *Sessions) Close() {
	s.mu.Lock()
	entries := s.entries
	s.entries = make(map[string]*session)
	s.mu.Unlock()

	for _, entry := range entries {
		entry.browser.Close()
	}
}
