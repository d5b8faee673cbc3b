// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package preferences

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/metrics"
)

func newTestStore(t *testing.T, maxRecent int) *BadgerStore {
	t.Helper()
	s, err := Open(Options{InMemory: true, MaxRecentlyViewed: maxRecent}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_RequiresPath(t *testing.T) {
	if _, err := Open(Options{}, zerolog.Nop()); err == nil {
		t.Error("Open() without path succeeded")
	}
}

func TestOpen_OnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Options{Path: dir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.RecordView(ctx, "u1", "p1"); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(Options{Path: dir}, zerolog.Nop())
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s.Close()
	got, _ := s.RecentlyViewed(ctx, "u1")
	if !reflect.DeepEqual(got, []string{"p1"}) {
		t.Errorf("RecentlyViewed() after reopen = %v, want [p1]", got)
	}
}

func TestBadgerStore_RecordView(t *testing.T) {
	s := newTestStore(t, 3)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "b", "d"} {
		if err := s.RecordView(ctx, "u1", id); err != nil {
			t.Fatalf("RecordView(%s) error = %v", id, err)
		}
	}
	got, err := s.RecentlyViewed(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"d", "b", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RecentlyViewed() = %v, want %v", got, want)
	}

	if err := s.RecordView(ctx, "u1", ""); err == nil {
		t.Error("RecordView with empty product id succeeded")
	}
}

func TestBadgerStore_EmptyUser(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	checks := map[string]error{
		"RecordView":             s.RecordView(ctx, " ", "p"),
		"SaveTasteProfile":       s.SaveTasteProfile(ctx, "", &feed.TasteProfile{}),
		"SetPreferredCategories": s.SetPreferredCategories(ctx, "", nil),
		"DeleteUser":             s.DeleteUser(ctx, ""),
	}
	_, checks["Signals"] = s.Signals(ctx, "")
	for name, err := range checks {
		if !errors.Is(err, ErrInvalidUser) {
			t.Errorf("%s error = %v, want ErrInvalidUser", name, err)
		}
	}
}

func TestBadgerStore_TasteProfile(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	before := testutil.ToFloat64(metrics.PreferenceOperations.WithLabelValues("taste_profile", "not_found"))
	if _, err := s.TasteProfile(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("TasteProfile() error = %v, want ErrNotFound", err)
	}
	if got := testutil.ToFloat64(metrics.PreferenceOperations.WithLabelValues("taste_profile", "not_found")) - before; got != 1 {
		t.Errorf("not_found count delta = %v, want 1", got)
	}

	profile := &feed.TasteProfile{
		Enabled:    true,
		Categories: map[string]float64{"home": 2},
		Tags:       map[string]float64{"cozy": 1.5, "loud": -2},
	}
	if err := s.SaveTasteProfile(ctx, "u1", profile); err != nil {
		t.Fatal(err)
	}
	got, err := s.TasteProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, profile) {
		t.Errorf("TasteProfile() = %+v, want %+v", got, profile)
	}

	if err := s.SaveTasteProfile(ctx, "u1", nil); err == nil {
		t.Error("SaveTasteProfile(nil) succeeded")
	}
}

func TestBadgerStore_PreferredCategories(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	if got, err := s.PreferredCategories(ctx, "u1"); err != nil || len(got) != 0 {
		t.Errorf("PreferredCategories() on empty store = %v, %v", got, err)
	}
	if err := s.SetPreferredCategories(ctx, "u1", []string{"home", " ", "apparel", "home"}); err != nil {
		t.Fatal(err)
	}
	got, _ := s.PreferredCategories(ctx, "u1")
	if want := []string{"home", "apparel"}; !reflect.DeepEqual(got, want) {
		t.Errorf("PreferredCategories() = %v, want %v", got, want)
	}
}

func TestBadgerStore_Signals(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	empty, err := s.Signals(ctx, "nobody")
	if err != nil {
		t.Fatalf("Signals() error = %v", err)
	}
	if !empty.IsZero() || empty.Taste != nil {
		t.Errorf("Signals() for unknown user = %+v, want zero", empty)
	}

	_ = s.RecordView(ctx, "u1", "p1")
	_ = s.RecordView(ctx, "u1", "p2")
	_ = s.SetPreferredCategories(ctx, "u1", []string{"home"})
	_ = s.SaveTasteProfile(ctx, "u1", &feed.TasteProfile{Enabled: true, Tags: map[string]float64{"cozy": 1}})

	got, err := s.Signals(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	want := feed.Signals{
		RecentlyViewed:      []string{"p2", "p1"},
		PreferredCategories: []string{"home"},
		Taste:               &feed.TasteProfile{Enabled: true, Tags: map[string]float64{"cozy": 1}},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Signals() = %+v, want %+v", got, want)
	}
}

func TestBadgerStore_DeleteUser(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()
	_ = s.RecordView(ctx, "u1", "p1")
	_ = s.RecordView(ctx, "u2", "p9")
	_ = s.SaveTasteProfile(ctx, "u1", &feed.TasteProfile{Enabled: true})

	if err := s.DeleteUser(ctx, "u1"); err != nil {
		t.Fatalf("DeleteUser() error = %v", err)
	}
	if sig, _ := s.Signals(ctx, "u1"); !sig.IsZero() || sig.Taste != nil {
		t.Errorf("Signals() after delete = %+v", sig)
	}
	if got, _ := s.RecentlyViewed(ctx, "u2"); len(got) != 1 {
		t.Errorf("other user's views = %v, want untouched", got)
	}
}

func TestBadgerStore_ConcurrentViews(t *testing.T) {
	s := newTestStore(t, 100)
	ctx := context.Background()

	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		go func(i int) {
			errs <- s.RecordView(ctx, "u1", fmt.Sprintf("p%d", i))
		}(i)
	}
	for i := 0; i < 20; i++ {
		// concurrent writers to one key may lose with a conflict
		if err := <-errs; err != nil && !errors.Is(err, badger.ErrConflict) {
			t.Errorf("RecordView() error = %v", err)
		}
	}
	got, _ := s.RecentlyViewed(ctx, "u1")
	if len(got) == 0 || len(got) > 20 {
		t.Errorf("RecentlyViewed() len = %d, want 1..20", len(got))
	}
}

func TestBadgerLogger(t *testing.T) {
	var buf bytes.Buffer
	l := newBadgerLogger(zerolog.New(&buf))

	l.Errorf("disk %s\n", "full")
	l.Warningf("slow %d", 3)
	if out := buf.String(); !strings.Contains(out, `"message":"disk full"`) || !strings.Contains(out, `"component":"badger"`) {
		t.Errorf("output = %s", out)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Errorf("warning not logged at warn: %s", buf.String())
	}
}
