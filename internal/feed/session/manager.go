// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/feed/ranking"
	"github.com/tomtom215/storefeed/internal/feed/reranking"
	"github.com/tomtom215/storefeed/internal/metrics"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when MaxSessions live sessions exist.
	ErrTooManySessions = errors.New("too many sessions")
)

// ManagerConfig bounds the session registry.
type ManagerConfig struct {
	// IdleTimeout removes sessions with no input for this long.
	// Zero disables expiry.
	IdleTimeout time.Duration

	// MaxSessions caps live sessions. Zero means unlimited.
	MaxSessions int
}

// CreateRequest describes a new session.
type CreateRequest struct {
	Signals feed.Signals     `json:"signals"`
	Options feed.RankOptions `json:"options"`
	Layout  Layout           `json:"layout"`
	Hooks   Hooks            `json:"-"`
}

// Manager is the registry of live sessions. It owns the shared ranker,
// rerankers and the latest catalog, and provides the session clock.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	catalog  []feed.Product

	cfg       *feed.Config
	mcfg      ManagerConfig
	ranker    Ranker
	cached    *ranking.Cached
	rerankers []feed.Reranker
	publisher Publisher
	logger    zerolog.Logger

	epoch time.Time
	clock func() time.Time
}

// NewManager creates a manager. Ranking results are cached when
// cfg.Cache.Enabled; diversity reranking is applied when configured.
func NewManager(cfg *feed.Config, mcfg ManagerConfig, publisher Publisher, logger zerolog.Logger) *Manager {
	if cfg == nil {
		cfg = feed.DefaultConfig()
	}
	if publisher == nil {
		publisher = nopPublisher{}
	}

	m := &Manager{
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		mcfg:      mcfg,
		publisher: publisher,
		logger:    logger.With().Str("component", "feed-manager").Logger(),
		clock:     time.Now,
	}
	m.epoch = m.clock()

	base := ranking.NewRanker(cfg.Ranking)
	m.ranker = base
	if cfg.Cache.Enabled {
		m.cached = ranking.NewCached(base, cfg.Cache)
		m.ranker = m.cached
	}

	if d := reranking.NewDiversity(cfg.Diversity.Lambda); d.Enabled() {
		m.rerankers = append(m.rerankers, d)
	}
	// sponsored placement runs last so the cadence survives other passes
	m.rerankers = append(m.rerankers, reranking.NewSponsored(cfg.Sponsored))

	return m
}

// Now returns the session clock: time elapsed since the manager started.
func (m *Manager) Now() time.Duration {
	return m.clock().Sub(m.epoch)
}

// Create starts a session over the current catalog.
//
//nolint:gocritic // hugeParam: request copied once at creation
func (m *Manager) Create(req CreateRequest) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mcfg.MaxSessions > 0 && len(m.sessions) >= m.mcfg.MaxSessions {
		return nil, fmt.Errorf("%w: limit %d", ErrTooManySessions, m.mcfg.MaxSessions)
	}

	id := uuid.New().String()
	s := New(Params{
		ID:        id,
		Config:    m.cfg,
		Ranker:    m.ranker,
		Rerankers: m.rerankers,
		Catalog:   m.catalog,
		Signals:   req.Signals,
		Options:   req.Options,
		Layout:    req.Layout,
		Hooks:     req.Hooks,
		Publisher: m.publisher,
		Logger:    m.logger,
		Now:       m.Now(),
		Clock:     m.clock,
	})
	m.sessions[id] = s
	metrics.FeedSessionsCreated.Inc()

	m.logger.Debug().Str("session_id", id).Int("sessions", len(m.sessions)).Msg("Session created")
	return s, nil
}

// Get returns a live session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Delete removes a session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// list returns the live sessions without holding the registry lock during
// per-session work.
func (m *Manager) list() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s)
	}
	return out
}

// TickAll advances every session by one frame at the current session clock
// and returns the number of events raised.
func (m *Manager) TickAll() int {
	start := time.Now()
	now := m.Now()
	sessions := m.list()

	events := 0
	for _, s := range sessions {
		events += len(s.Tick(now))
	}
	metrics.RecordFrame(time.Since(start), len(sessions))
	return events
}

// SetCatalog installs a new catalog for future sessions and re-ranks every
// live session. It returns how many sessions were reset.
func (m *Manager) SetCatalog(products []feed.Product) int {
	m.mu.Lock()
	m.catalog = products
	m.mu.Unlock()

	reset := 0
	for _, s := range m.list() {
		if s.UpdateCatalog(products) {
			reset++
		}
	}
	if reset > 0 {
		m.logger.Info().Int("products", len(products)).Int("sessions_reset", reset).Msg("Catalog changed")
	}
	return reset
}

// Catalog returns the current catalog.
func (m *Manager) Catalog() []feed.Product {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.catalog
}

// ExpireIdle removes sessions whose last input is older than IdleTimeout
// and returns how many were removed.
func (m *Manager) ExpireIdle() int {
	if m.mcfg.IdleTimeout <= 0 {
		return 0
	}
	now := m.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if now-s.LastActive() > m.mcfg.IdleTimeout {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		metrics.FeedSessionsExpired.Add(float64(removed))
		m.logger.Debug().Int("expired", removed).Int("sessions", len(m.sessions)).Msg("Idle sessions expired")
	}
	return removed
}

// RankCacheStats returns ranking cache statistics, or zeros when caching
// is disabled.
func (m *Manager) RankCacheStats() (hits, misses int64, size int) {
	if m.cached == nil {
		return 0, 0, 0
	}
	return m.cached.Stats()
}
