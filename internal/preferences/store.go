// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/metrics"
)

var (
	// ErrNotFound is returned when a viewer has no stored taste profile.
	ErrNotFound = errors.New("preference not found")

	// ErrInvalidUser is returned for an empty viewer ID.
	ErrInvalidUser = errors.New("invalid user id")
)

const (
	recentKeyPrefix  = "recent:"
	tasteKeyPrefix   = "taste:"
	prefCatKeyPrefix = "prefcat:"

	defaultMaxRecentlyViewed = 20
)

// Store reads and writes viewer signals.
type Store interface {
	RecentlyViewed(ctx context.Context, user string) ([]string, error)
	TasteProfile(ctx context.Context, user string) (*feed.TasteProfile, error)
	PreferredCategories(ctx context.Context, user string) ([]string, error)
	Signals(ctx context.Context, user string) (feed.Signals, error)

	RecordView(ctx context.Context, user, productID string) error
	SaveTasteProfile(ctx context.Context, user string, profile *feed.TasteProfile) error
	SetPreferredCategories(ctx context.Context, user string, categories []string) error
	DeleteUser(ctx context.Context, user string) error
}

// Options configures Open.
type Options struct {
	// Path is the Badger directory. Ignored when InMemory is set.
	Path     string
	InMemory bool

	// MaxRecentlyViewed bounds the recently viewed list. Default: 20.
	MaxRecentlyViewed int
}

// BadgerStore is a Store on BadgerDB.
type BadgerStore struct {
	db        *badger.DB
	maxRecent int
	owned     bool
}

var _ Store = (*BadgerStore)(nil)

// Open opens (or creates) a Badger database and returns a store that owns it.
//
//nolint:gocritic // hugeParam: options copied once at startup
func Open(opts Options, logger zerolog.Logger) (*BadgerStore, error) {
	var bopts badger.Options
	if opts.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Path == "" {
			return nil, fmt.Errorf("preferences path is required")
		}
		bopts = badger.DefaultOptions(opts.Path)
	}
	bopts = bopts.WithLogger(newBadgerLogger(logger))

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open preferences store: %w", err)
	}
	s := NewBadgerStore(db, opts.MaxRecentlyViewed)
	s.owned = true
	return s, nil
}

// NewBadgerStore wraps an open database. The caller keeps ownership of db.
func NewBadgerStore(db *badger.DB, maxRecentlyViewed int) *BadgerStore {
	if maxRecentlyViewed <= 0 {
		maxRecentlyViewed = defaultMaxRecentlyViewed
	}
	return &BadgerStore{db: db, maxRecent: maxRecentlyViewed}
}

// Close closes the database if Open created it.
func (s *BadgerStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}

func checkUser(user string) error {
	if strings.TrimSpace(user) == "" {
		return ErrInvalidUser
	}
	return nil
}

// record counts an operation by outcome and passes err through.
func record(op string, err error) error {
	switch {
	case err == nil:
		metrics.RecordPreferenceOperation(op, "success")
	case errors.Is(err, ErrNotFound):
		metrics.RecordPreferenceOperation(op, "not_found")
	default:
		metrics.RecordPreferenceOperation(op, "error")
	}
	return err
}

// getJSON decodes key into v. It returns ErrNotFound for a missing key.
func getJSON(txn *badger.Txn, key string, v interface{}) error {
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", key, err)
	}
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, v)
	})
}

func setJSON(txn *badger.Txn, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return txn.Set([]byte(key), data)
}

// getList reads a string list; a missing key is an empty list.
func getList(txn *badger.Txn, key string) ([]string, error) {
	var list []string
	if err := getJSON(txn, key, &list); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return list, nil
}

// RecentlyViewed returns product IDs, most recent first.
func (s *BadgerStore) RecentlyViewed(_ context.Context, user string) ([]string, error) {
	if err := checkUser(user); err != nil {
		return nil, err
	}
	var list []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		list, err = getList(txn, recentKeyPrefix+user)
		return err
	})
	return list, record("recently_viewed", err)
}

// TasteProfile returns the stored profile or ErrNotFound.
func (s *BadgerStore) TasteProfile(_ context.Context, user string) (*feed.TasteProfile, error) {
	if err := checkUser(user); err != nil {
		return nil, err
	}
	var profile feed.TasteProfile
	err := s.db.View(func(txn *badger.Txn) error {
		return getJSON(txn, tasteKeyPrefix+user, &profile)
	})
	if err = record("taste_profile", err); err != nil {
		return nil, err
	}
	return &profile, nil
}

// PreferredCategories returns the viewer's opted-in categories.
func (s *BadgerStore) PreferredCategories(_ context.Context, user string) ([]string, error) {
	if err := checkUser(user); err != nil {
		return nil, err
	}
	var list []string
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		list, err = getList(txn, prefCatKeyPrefix+user)
		return err
	})
	return list, record("preferred_categories", err)
}

// Signals returns every stored signal for a viewer in one read.
func (s *BadgerStore) Signals(_ context.Context, user string) (feed.Signals, error) {
	var signals feed.Signals
	if err := checkUser(user); err != nil {
		return signals, err
	}
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		if signals.RecentlyViewed, err = getList(txn, recentKeyPrefix+user); err != nil {
			return err
		}
		if signals.PreferredCategories, err = getList(txn, prefCatKeyPrefix+user); err != nil {
			return err
		}
		var profile feed.TasteProfile
		switch err := getJSON(txn, tasteKeyPrefix+user, &profile); {
		case err == nil:
			signals.Taste = &profile
		case !errors.Is(err, ErrNotFound):
			return err
		}
		return nil
	})
	return signals, record("signals", err)
}

// RecordView moves productID to the front of the recently viewed list,
// dropping the oldest entries beyond the configured bound.
func (s *BadgerStore) RecordView(_ context.Context, user, productID string) error {
	if err := checkUser(user); err != nil {
		return err
	}
	if productID == "" {
		return fmt.Errorf("record view: empty product id")
	}
	key := recentKeyPrefix + user
	err := s.db.Update(func(txn *badger.Txn) error {
		list, err := getList(txn, key)
		if err != nil {
			return err
		}
		next := make([]string, 0, len(list)+1)
		next = append(next, productID)
		for _, id := range list {
			if id != productID {
				next = append(next, id)
			}
		}
		if len(next) > s.maxRecent {
			next = next[:s.maxRecent]
		}
		return setJSON(txn, key, next)
	})
	return record("record_view", err)
}

// SaveTasteProfile replaces the viewer's taste profile.
func (s *BadgerStore) SaveTasteProfile(_ context.Context, user string, profile *feed.TasteProfile) error {
	if err := checkUser(user); err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("save taste profile: nil profile")
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, tasteKeyPrefix+user, profile)
	})
	return record("save_taste_profile", err)
}

// SetPreferredCategories replaces the viewer's preferred categories.
// Duplicates and blanks are dropped; order is kept.
func (s *BadgerStore) SetPreferredCategories(_ context.Context, user string, categories []string) error {
	if err := checkUser(user); err != nil {
		return err
	}
	seen := make(map[string]bool, len(categories))
	clean := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		clean = append(clean, c)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return setJSON(txn, prefCatKeyPrefix+user, clean)
	})
	return record("set_preferred_categories", err)
}

// DeleteUser removes every signal stored for a viewer.
func (s *BadgerStore) DeleteUser(_ context.Context, user string) error {
	if err := checkUser(user); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, prefix := range []string{recentKeyPrefix, tasteKeyPrefix, prefCatKeyPrefix} {
			if err := txn.Delete([]byte(prefix + user)); err != nil {
				return fmt.Errorf("delete %s%s: %w", prefix, user, err)
			}
		}
		return nil
	})
	return record("delete_user", err)
}
