// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/storefeed/internal/feed"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestManager(t *testing.T, mcfg ManagerConfig) (*Manager, *fakeClock, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	m := NewManager(feed.DefaultConfig(), mcfg, pub, zerolog.Nop())
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	m.clock = clk.Now
	m.epoch = clk.Now()
	m.SetCatalog(catalog(10))
	return m, clk, pub
}

func TestManager_CreateGetDelete(t *testing.T) {
	m, _, _ := newTestManager(t, ManagerConfig{})

	s, err := m.Create(CreateRequest{Layout: threeColumns})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if s.ID() == "" {
		t.Fatal("session ID is empty")
	}
	if got := len(s.Ranked()); got != 10 {
		t.Errorf("ranked = %d, want 10", got)
	}

	got, err := m.Get(s.ID())
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v; want created session", got, err)
	}

	if err := m.Delete(s.ID()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after delete error = %v, want ErrSessionNotFound", err)
	}
	if err := m.Delete(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Delete() error = %v, want ErrSessionNotFound", err)
	}
}

func TestManager_MaxSessions(t *testing.T) {
	m, _, _ := newTestManager(t, ManagerConfig{MaxSessions: 2})

	for i := 0; i < 2; i++ {
		if _, err := m.Create(CreateRequest{Layout: threeColumns}); err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
	}
	if _, err := m.Create(CreateRequest{Layout: threeColumns}); !errors.Is(err, ErrTooManySessions) {
		t.Errorf("Create() over limit error = %v, want ErrTooManySessions", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestManager_ExpireIdle(t *testing.T) {
	m, clk, _ := newTestManager(t, ManagerConfig{IdleTimeout: time.Minute})

	idle, _ := m.Create(CreateRequest{Layout: threeColumns})
	clk.Advance(50 * time.Second)
	active, _ := m.Create(CreateRequest{Layout: threeColumns})
	clk.Advance(20 * time.Second)

	if got := m.ExpireIdle(); got != 1 {
		t.Fatalf("ExpireIdle() = %d, want 1", got)
	}
	if _, err := m.Get(idle.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("idle session still present: %v", err)
	}
	if _, err := m.Get(active.ID()); err != nil {
		t.Errorf("active session removed: %v", err)
	}

	// input keeps a session alive
	clk.Advance(50 * time.Second)
	_ = active.Wheel(0, 1, m.Now())
	clk.Advance(30 * time.Second)
	if got := m.ExpireIdle(); got != 0 {
		t.Errorf("ExpireIdle() after input = %d, want 0", got)
	}
}

func TestManager_ExpireIdleDisabled(t *testing.T) {
	m, clk, _ := newTestManager(t, ManagerConfig{})
	_, _ = m.Create(CreateRequest{Layout: threeColumns})
	clk.Advance(24 * time.Hour)
	if got := m.ExpireIdle(); got != 0 {
		t.Errorf("ExpireIdle() = %d, want 0", got)
	}
}

func TestManager_TickAll(t *testing.T) {
	m, clk, _ := newTestManager(t, ManagerConfig{})
	s, _ := m.Create(CreateRequest{Layout: threeColumns})

	// every column starts inside its end zone
	if got := m.TickAll(); got != 3 {
		t.Errorf("TickAll() events = %d, want 3", got)
	}
	for i := 0; i < 10; i++ {
		clk.Advance(frameStep)
		m.TickAll()
	}
	if snap := s.Snapshot(); snap.LastFrame != 10*frameStep {
		t.Errorf("LastFrame = %v, want %v", snap.LastFrame, 10*frameStep)
	}
}

func TestManager_SetCatalog(t *testing.T) {
	m, _, pub := newTestManager(t, ManagerConfig{})
	a, _ := m.Create(CreateRequest{Layout: threeColumns})
	_, _ = m.Create(CreateRequest{Layout: threeColumns})

	if got := m.SetCatalog(catalog(10)); got != 0 {
		t.Errorf("SetCatalog(same) reset %d sessions, want 0", got)
	}
	if got := m.SetCatalog(catalog(15)); got != 2 {
		t.Errorf("SetCatalog(new) reset %d sessions, want 2", got)
	}
	if got := len(a.Ranked()); got != 15 {
		t.Errorf("ranked = %d, want 15", got)
	}
	if got := len(m.Catalog()); got != 15 {
		t.Errorf("Catalog() = %d products, want 15", got)
	}
	if got := pub.count(feed.LifecycleReset); got != 4 {
		t.Errorf("reset events = %d, want 4", got)
	}
}

func TestManager_SetCatalogRefreshesCachedRanking(t *testing.T) {
	m, _, _ := newTestManager(t, ManagerConfig{})
	m.SetCatalog([]feed.Product{
		{ID: "a", Category: "home", Price: 10},
		{ID: "b", Category: "home", Price: 20},
	})
	opts := feed.RankOptions{Sort: feed.SortPriceAsc}
	live, err := m.Create(CreateRequest{Layout: threeColumns, Options: opts})
	if err != nil {
		t.Fatal(err)
	}
	if got := live.Ranked()[0].ID; got != "a" {
		t.Fatalf("price_asc led with %s, want a", got)
	}

	if got := m.SetCatalog([]feed.Product{
		{ID: "a", Category: "home", Price: 30},
		{ID: "b", Category: "home", Price: 20},
	}); got != 1 {
		t.Errorf("SetCatalog(repriced) reset %d sessions, want 1", got)
	}
	fresh, err := m.Create(CreateRequest{Layout: threeColumns, Options: opts})
	if err != nil {
		t.Fatal(err)
	}

	for name, s := range map[string]*Session{"live": live, "new": fresh} {
		ranked := s.Ranked()
		if ranked[0].ID != "b" || ranked[1].ID != "a" || ranked[1].Price != 30 {
			t.Errorf("%s session ranked %s(%v) %s(%v), want b(20) a(30)",
				name, ranked[0].ID, ranked[0].Price, ranked[1].ID, ranked[1].Price)
		}
	}
}

func TestManager_RankCacheShared(t *testing.T) {
	m, _, _ := newTestManager(t, ManagerConfig{})
	for i := 0; i < 3; i++ {
		if _, err := m.Create(CreateRequest{Layout: threeColumns}); err != nil {
			t.Fatal(err)
		}
	}
	hits, misses, size := m.RankCacheStats()
	if misses != 1 || hits != 2 || size != 1 {
		t.Errorf("RankCacheStats() = %d hits, %d misses, %d entries; want 2, 1, 1", hits, misses, size)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	m, _, _ := newTestManager(t, ManagerConfig{})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.Create(CreateRequest{Layout: threeColumns})
			if err != nil {
				t.Error(err)
				return
			}
			for j := 0; j < 20; j++ {
				_ = s.Wheel(j%3, 5, m.Now())
				_ = s.Snapshot()
			}
		}()
	}
	for i := 0; i < 20; i++ {
		m.TickAll()
	}
	wg.Wait()

	if m.Len() != 8 {
		t.Errorf("Len() = %d, want 8", m.Len())
	}
}
