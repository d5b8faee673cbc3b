// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package catalog

import (
	"context"
	"fmt"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // registers the duckdb driver
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // registers the postgres driver

	"github.com/tomtom215/storefeed/internal/feed"
	"github.com/tomtom215/storefeed/internal/metrics"
)

//nolint:gochecknoinits // sqlx needs the bind style for drivers it does not know
func init() {
	sqlx.BindDriver("duckdb", sqlx.QUESTION)
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	category     TEXT NOT NULL,
	sub_category TEXT NOT NULL DEFAULT '',
	tags         TEXT NOT NULL DEFAULT '[]',
	sponsored    BOOLEAN NOT NULL DEFAULT FALSE,
	price        FLOAT8 NOT NULL DEFAULT 0,
	rating       FLOAT8 NOT NULL DEFAULT 0,
	created_at   TIMESTAMP NOT NULL,
	display_order INTEGER NOT NULL DEFAULT 0,
	visible      BOOLEAN NOT NULL DEFAULT TRUE
)`

const selectVisible = `
SELECT id, title, category, sub_category, tags, sponsored, price, rating, created_at
FROM products
WHERE visible
ORDER BY display_order, id`

const upsertProduct = `
INSERT INTO products (id, title, category, sub_category, tags, sponsored, price, rating, created_at, display_order, visible)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, TRUE)
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	category = excluded.category,
	sub_category = excluded.sub_category,
	tags = excluded.tags,
	sponsored = excluded.sponsored,
	price = excluded.price,
	rating = excluded.rating,
	created_at = excluded.created_at,
	display_order = excluded.display_order,
	visible = TRUE`

type productRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Category    string    `db:"category"`
	SubCategory string    `db:"sub_category"`
	Tags        string    `db:"tags"`
	Sponsored   bool      `db:"sponsored"`
	Price       float64   `db:"price"`
	Rating      float64   `db:"rating"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *productRow) product() (feed.Product, error) {
	p := feed.Product{
		ID:          r.ID,
		Title:       r.Title,
		Category:    r.Category,
		SubCategory: r.SubCategory,
		Sponsored:   r.Sponsored,
		Price:       r.Price,
		Rating:      r.Rating,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	tags, err := decodeTags(r.Tags)
	if err != nil {
		return feed.Product{}, fmt.Errorf("product %s: %w", r.ID, err)
	}
	p.Tags = tags
	return p, nil
}

// encodeTags stores tags as a JSON array.
func encodeTags(tags []string) (string, error) {
	if len(tags) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(b), nil
}

// decodeTags reads a tags column. Empty arrays decode to nil.
func decodeTags(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags %q: %w", raw, err)
	}
	if len(tags) == 0 {
		return nil, nil
	}
	return tags, nil
}

// SQLStore is a Source backed by a products table.
type SQLStore struct {
	db     *sqlx.DB
	driver string
}

var _ Source = (*SQLStore)(nil)

// Open connects to the catalog database. driver is "duckdb" or "postgres";
// an empty DuckDB DSN opens an in-memory database.
func Open(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case "duckdb", "postgres":
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s catalog: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s catalog: %w", driver, err)
	}
	if driver == "postgres" {
		db.SetMaxOpenConns(4)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	return NewSQLStore(db), nil
}

// NewSQLStore wraps an open connection.
func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, driver: db.DriverName()}
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// InitSchema creates the products table when missing.
func (s *SQLStore) InitSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}
	return nil
}

// FetchCatalog returns the visible products ordered by position.
func (s *SQLStore) FetchCatalog(ctx context.Context) ([]feed.Product, error) {
	start := time.Now()
	var rows []productRow
	err := s.db.SelectContext(ctx, &rows, selectVisible)
	if err != nil {
		err = fmt.Errorf("failed to query products: %w", err)
	}
	metrics.RecordCatalogFetch(s.driver, time.Since(start), len(rows), err)
	if err != nil {
		return nil, err
	}

	products := make([]feed.Product, len(rows))
	for i := range rows {
		if products[i], err = rows[i].product(); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// UpsertProducts writes products in one transaction. Their slice order
// becomes their merchandising position.
func (s *SQLStore) UpsertProducts(ctx context.Context, products []feed.Product) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := tx.Rebind(upsertProduct)
	for i := range products {
		p := &products[i]
		if p.ID == "" {
			return fmt.Errorf("product at position %d has no id", i)
		}
		created := p.CreatedAt
		if created.IsZero() {
			created = time.Unix(0, 0)
		}
		tags, err := encodeTags(p.Tags)
		if err != nil {
			return fmt.Errorf("product %s: %w", p.ID, err)
		}
		_, err = tx.ExecContext(ctx, query,
			p.ID, p.Title, p.Category, p.SubCategory, tags,
			p.Sponsored, p.Price, p.Rating, created.UTC(), i)
		if err != nil {
			return fmt.Errorf("failed to upsert product %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit products: %w", err)
	}
	return nil
}

// SetVisible hides or shows a product.
func (s *SQLStore) SetVisible(ctx context.Context, id string, visible bool) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE products SET visible = ? WHERE id = ?`), visible, id)
	if err != nil {
		return fmt.Errorf("failed to update product %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("product %s not found", id)
	}
	return nil
}

// Count returns the number of stored products, visible or not.
func (s *SQLStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM products`); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// SeedIfEmpty creates the schema and, when the table is empty, writes the
// demo catalog. It returns the number of products inserted.
func (s *SQLStore) SeedIfEmpty(ctx context.Context) (int, error) {
	if err := s.InitSchema(ctx); err != nil {
		return 0, err
	}
	n, err := s.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}
	demo := DemoProducts()
	if err := s.UpsertProducts(ctx, demo); err != nil {
		return 0, err
	}
	return len(demo), nil
}
