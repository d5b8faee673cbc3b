// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/storefeed/internal/feed"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load("")
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	want := defaultConfig()
	if cfg.Server.Port != want.Server.Port || cfg.Frame.Interval != want.Frame.Interval {
		t.Errorf("port/frame = %d/%v, want %d/%v", cfg.Server.Port, cfg.Frame.Interval, want.Server.Port, want.Frame.Interval)
	}
	if cfg.Feed.Motion.ScrollDuration != 45*time.Second {
		t.Errorf("Feed.Motion.ScrollDuration = %v, want 45s", cfg.Feed.Motion.ScrollDuration)
	}
	if !reflect.DeepEqual(cfg.Feed.Breakpoints, feed.DefaultBreakpoints()) {
		t.Errorf("Feed.Breakpoints = %v, want defaults", cfg.Feed.Breakpoints)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
catalog:
  refresh_interval: 2m
feed:
  sponsored:
    cadence: 8
  motion:
    cooldown: 1500ms
  breakpoints:
    - {min_width: 0, columns: 1}
    - {min_width: 700, columns: 2}
`)
	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Catalog.RefreshInterval != 2*time.Minute {
		t.Errorf("Catalog.RefreshInterval = %v, want 2m", cfg.Catalog.RefreshInterval)
	}
	if cfg.Feed.Sponsored.Cadence != 8 {
		t.Errorf("Feed.Sponsored.Cadence = %d, want 8", cfg.Feed.Sponsored.Cadence)
	}
	if cfg.Feed.Motion.Cooldown != 1500*time.Millisecond {
		t.Errorf("Feed.Motion.Cooldown = %v, want 1.5s", cfg.Feed.Motion.Cooldown)
	}
	want := feed.Breakpoints{{MinWidth: 0, Columns: 1}, {MinWidth: 700, Columns: 2}}
	if !reflect.DeepEqual(cfg.Feed.Breakpoints, want) {
		t.Errorf("Feed.Breakpoints = %v, want %v", cfg.Feed.Breakpoints, want)
	}
	// untouched values keep their defaults
	if cfg.Feed.Deck.RefillBatch != 2 {
		t.Errorf("Feed.Deck.RefillBatch = %d, want 2", cfg.Feed.Deck.RefillBatch)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("FEED_SPONSORED_CADENCE", "5")
	t.Setenv("FRAME_INTERVAL", "20ms")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := load(path)
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	wantOrigins := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, wantOrigins) {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, wantOrigins)
	}
	if cfg.Feed.Sponsored.Cadence != 5 {
		t.Errorf("Feed.Sponsored.Cadence = %d, want 5", cfg.Feed.Sponsored.Cadence)
	}
	if cfg.Frame.Interval != 20*time.Millisecond {
		t.Errorf("Frame.Interval = %v, want 20ms", cfg.Frame.Interval)
	}
}

func TestLoad_InvalidFails(t *testing.T) {
	t.Setenv("FEED_REFILL_BATCH", "0")
	_, err := load("")
	if err == nil || !strings.Contains(err.Error(), "refill_batch") {
		t.Errorf("load() error = %v, want refill_batch validation error", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("load() with a missing file succeeded")
	}
}

func TestFindConfigFile_EnvVar(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9000\n")
	t.Setenv(ConfigPathEnvVar, path)
	if got := findConfigFile(); got != path {
		t.Errorf("findConfigFile() = %q, want %q", got, path)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"HTTP_PORT", "server.port"},
		{"log_level", "logging.level"},
		{"FEED_CACHE_TTL", "feed.cache.ttl"},
		{"PATH", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.in); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
