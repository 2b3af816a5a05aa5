package search

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/reelfeed/reelfeed/internal/media/scoring"
)

// State describes where a session is in its request lifecycle.
type State string

const (
	StateIdle     State = "idle"
	StatePending  State = "pending"
	StateResolved State = "resolved"
	StateFailed   State = "failed"
)

// Snapshot is an immutable view of a session handed to callers.
type Snapshot struct {
	ID          string               `json:"id"`
	State       State                `json:"state"`
	Query       string               `json:"query"`
	Results     []scoring.ScoredItem `json:"results"`
	Suggestions []Suggestion         `json:"suggestions"`
	Error       string               `json:"error,omitempty"`
}

// Session serializes one lookup box's keystrokes into at most one
// in-flight fetch. Input resets a debounce timer; only the value standing
// after the quiet period is dispatched. Every dispatch carries a
// generation number and a response is discarded unless its generation is
// still the newest, so a slow early response can never overwrite a later
// one. A failed fetch keeps the previous results on screen.
type Session struct {
	id       string
	engine   *Engine
	debounce time.Duration
	logger   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu          sync.Mutex
	timer       *time.Timer
	gen         uint64
	state       State
	query       string
	results     []scoring.ScoredItem
	suggestions []Suggestion
	lastErr     error
	lastInput   time.Time
}

// NewSession creates an idle session.
func NewSession(engine *Engine, debounce time.Duration, logger zerolog.Logger) *Session {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	id := uuid.New().String()
	return &Session{
		id:          id,
		engine:      engine,
		debounce:    debounce,
		logger:      logger.With().Str("component", "search-session").Str("session", id).Logger(),
		ctx:         ctx,
		cancel:      cancel,
		state:       StateIdle,
		results:     []scoring.ScoredItem{},
		suggestions: []Suggestion{},
		lastInput:   time.Now(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Input records a keystroke. The fetch fires only after the debounce
// window passes with no further input. Every keystroke, including a scope
// change on the same text, invalidates whatever is in flight. An empty
// query cancels any pending or in-flight work and returns the session to
// idle with no results.
func (s *Session) Input(query string, scope Scope, filters AdvancedFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastInput = time.Now()
	s.query = query
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	// Invalidate anything in flight; its response is stale now.
	s.gen++

	if query == "" && filters.Empty() {
		s.state = StateIdle
		s.results = []scoring.ScoredItem{}
		s.suggestions = []Suggestion{}
		s.lastErr = nil
		return
	}

	s.state = StatePending
	s.timer = time.AfterFunc(s.debounce, func() {
		s.fire(query, scope, filters)
	})
}

// Flush dispatches the pending query immediately, skipping the remainder
// of the debounce window. Used when the user submits explicitly.
func (s *Session) Flush(scope Scope, filters AdvancedFilters) {
	s.mu.Lock()
	query := s.query
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if query == "" && filters.Empty() {
		return
	}
	s.fire(query, scope, filters)
}

func (s *Session) fire(query string, scope Scope, filters AdvancedFilters) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.state = StatePending
	s.mu.Unlock()

	go func() {
		results, err := s.engine.Search(s.ctx, query, scope, filters)
		var suggestions []Suggestion
		if err == nil {
			suggestions = s.engine.Suggestions(s.ctx, query)
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			// A newer dispatch superseded this one.
			s.logger.Debug().Str("query", query).Msg("Discarding stale search response")
			return
		}
		if err != nil {
			s.state = StateFailed
			s.lastErr = err
			s.logger.Warn().Err(err).Str("query", query).Msg("Search failed")
			return
		}
		s.state = StateResolved
		s.lastErr = nil
		s.results = results
		s.suggestions = suggestions
	}()
}

// Snapshot returns a copy of the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:          s.id,
		State:       s.state,
		Query:       s.query,
		Results:     make([]scoring.ScoredItem, len(s.results)),
		Suggestions: make([]Suggestion, len(s.suggestions)),
	}
	copy(snap.Results, s.results)
	copy(snap.Suggestions, s.suggestions)
	if s.lastErr != nil {
		snap.Error = s.lastErr.Error()
	}
	return snap
}

// idle reports how long the session has gone without input.
func (s *Session) idle(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastInput)
}

// Close stops the debounce timer and cancels in-flight fetches.
func (s *Session) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.mu.Unlock()
	s.cancel()
}

// Manager tracks live sessions and reaps ones that have gone quiet.
type Manager struct {
	engine   *Engine
	debounce time.Duration
	maxIdle  time.Duration
	logger   zerolog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	stop     chan struct{}
	stopOnce sync.Once
}

// NewManager creates a session manager and starts its reaper.
func NewManager(engine *Engine, debounce time.Duration, logger zerolog.Logger) *Manager {
	m := &Manager{
		engine:   engine,
		debounce: debounce,
		maxIdle:  10 * time.Minute,
		logger:   logger.With().Str("component", "search-sessions").Logger(),
		sessions: make(map[string]*Session),
		stop:     make(chan struct{}),
	}
	go m.reap()
	return m
}

// Create opens a new session.
func (m *Manager) Create() *Session {
	session := NewSession(m.engine, m.debounce, m.logger)
	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()
	return session
}

// Get returns the session with the given ID, or nil.
func (m *Manager) Get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Delete closes and removes a session.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	session := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if session != nil {
		session.Close()
	}
}

// Close shuts down the reaper and all live sessions.
func (m *Manager) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()
	for _, s := range sessions {
		s.Close()
	}
}

func (m *Manager) reap() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			var expired []*Session
			for id, session := range m.sessions {
				if session.idle(now) > m.maxIdle {
					expired = append(expired, session)
					delete(m.sessions, id)
				}
			}
			m.mu.Unlock()
			for _, session := range expired {
				session.Close()
			}
			if len(expired) > 0 {
				m.logger.Debug().Int("count", len(expired)).Msg("Reaped idle search sessions")
			}
		}
	}
}
