// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

package catalog

import (
	"context"

	"github.com/tomtom215/storefeed/internal/feed"
)

// Source provides the current product catalog in merchandising order.
type Source interface {
	FetchCatalog(ctx context.Context) ([]feed.Product, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) ([]feed.Product, error)

// FetchCatalog calls f.
func (f SourceFunc) FetchCatalog(ctx context.Context) ([]feed.Product, error) {
	return f(ctx)
}
