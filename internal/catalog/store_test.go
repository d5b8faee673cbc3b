// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package catalog

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/metrics"
)

func setupStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := Open(context.Background(), "duckdb", "")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}
	return store
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	if _, err := Open(context.Background(), "sqlite", ""); err == nil {
		t.Error("Open(sqlite) succeeded")
	}
}

func TestSQLStore_UpsertAndFetch(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	in := []feed.Product{
		{ID: "b", Title: "Mug", Category: "home", SubCategory: "kitchen", Tags: []string{"cozy", "handmade"}, Price: 12.5, Rating: 4.5, CreatedAt: created},
		{ID: "a", Title: "Lamp", Category: "home", Sponsored: true, Price: 40, CreatedAt: created},
		{ID: "c", Title: "Coat", Category: "apparel", Price: 99, CreatedAt: created},
	}
	if err := store.UpsertProducts(ctx, in); err != nil {
		t.Fatalf("UpsertProducts() error = %v", err)
	}

	before := testutil.ToFloat64(metrics.CatalogProducts)
	got, err := store.FetchCatalog(ctx)
	if err != nil {
		t.Fatalf("FetchCatalog() error = %v", err)
	}
	if !reflect.DeepEqual(got, in) {
		t.Errorf("FetchCatalog() = %+v\nwant %+v", got, in)
	}
	if after := testutil.ToFloat64(metrics.CatalogProducts); after != 3 {
		t.Errorf("CatalogProducts = %v (was %v), want 3", after, before)
	}
}

func TestSQLStore_TagsRoundTrip(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	in := []feed.Product{
		{ID: "a", Category: "home", Tags: []string{"black, matte", "  spaced  "}},
		{ID: "b", Category: "home", Tags: []string{}},
		{ID: "c", Category: "home", Tags: []string{`quote"d`}},
	}
	if err := store.UpsertProducts(ctx, in); err != nil {
		t.Fatalf("UpsertProducts() error = %v", err)
	}
	got, err := store.FetchCatalog(ctx)
	if err != nil {
		t.Fatalf("FetchCatalog() error = %v", err)
	}

	want := [][]string{{"black, matte", "  spaced  "}, nil, {`quote"d`}}
	for i := range want {
		if !reflect.DeepEqual(got[i].Tags, want[i]) {
			t.Errorf("%s tags = %#v, want %#v", got[i].ID, got[i].Tags, want[i])
		}
	}
}

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		raw     string
		want    []string
		wantErr bool
	}{
		{raw: "", want: nil},
		{raw: "[]", want: nil},
		{raw: `["a","b"]`, want: []string{"a", "b"}},
		{raw: "a,b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := decodeTags(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeTags(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("decodeTags(%q) = %#v, want %#v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSQLStore_UpsertReorders(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	first := []feed.Product{{ID: "x", Category: "home"}, {ID: "y", Category: "home"}}
	if err := store.UpsertProducts(ctx, first); err != nil {
		t.Fatal(err)
	}
	second := []feed.Product{{ID: "y", Category: "apparel"}, {ID: "x", Category: "home"}}
	if err := store.UpsertProducts(ctx, second); err != nil {
		t.Fatal(err)
	}

	got, err := store.FetchCatalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "y" || got[0].Category != "apparel" {
		t.Errorf("FetchCatalog() = %+v, want y (apparel) first", got)
	}
}

func TestSQLStore_HiddenProducts(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	if err := store.UpsertProducts(ctx, []feed.Product{{ID: "a", Category: "c"}, {ID: "b", Category: "c"}}); err != nil {
		t.Fatal(err)
	}

	if err := store.SetVisible(ctx, "a", false); err != nil {
		t.Fatalf("SetVisible() error = %v", err)
	}
	if err := store.SetVisible(ctx, "missing", false); err == nil {
		t.Error("SetVisible(missing) succeeded")
	}

	got, _ := store.FetchCatalog(ctx)
	if len(got) != 1 || got[0].ID != "b" {
		t.Errorf("FetchCatalog() = %+v, want only b", got)
	}
	if n, _ := store.Count(ctx); n != 2 {
		t.Errorf("Count() = %d, want 2", n)
	}
}

func TestSQLStore_RejectsMissingID(t *testing.T) {
	store := setupStore(t)
	err := store.UpsertProducts(context.Background(), []feed.Product{{ID: "ok", Category: "c"}, {Category: "c"}})
	if err == nil {
		t.Fatal("UpsertProducts() accepted a product without id")
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Errorf("Count() = %d after rollback, want 0", n)
	}
}

func TestSQLStore_SeedIfEmpty(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	n, err := store.SeedIfEmpty(ctx)
	if err != nil {
		t.Fatalf("SeedIfEmpty() error = %v", err)
	}
	if n != len(DemoProducts()) {
		t.Errorf("SeedIfEmpty() = %d, want %d", n, len(DemoProducts()))
	}
	if n, _ := store.SeedIfEmpty(ctx); n != 0 {
		t.Errorf("second SeedIfEmpty() = %d, want 0", n)
	}

	got, _ := store.FetchCatalog(ctx)
	if len(got) != 48 || got[0].ID != "sku-001" {
		t.Errorf("FetchCatalog() len = %d, first = %v", len(got), got[0].ID)
	}
}

func TestDemoProducts(t *testing.T) {
	products := DemoProducts()
	sponsored := 0
	seen := make(map[string]bool)
	for _, p := range products {
		if seen[p.ID] {
			t.Errorf("duplicate id %s", p.ID)
		}
		seen[p.ID] = true
		if p.Sponsored {
			sponsored++
		}
		if p.Rating < 3 || p.Rating > 5 {
			t.Errorf("%s rating = %v, want within [3, 5]", p.ID, p.Rating)
		}
	}
	if sponsored != 6 {
		t.Errorf("sponsored = %d, want 6", sponsored)
	}
	if !reflect.DeepEqual(products, DemoProducts()) {
		t.Error("DemoProducts() is not deterministic")
	}
}
