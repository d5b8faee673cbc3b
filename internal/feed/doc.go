// Storefeed - Continuous Multi-Column Product Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/storefeed

/*
Package feed defines the shared domain types of the continuous multi-column
product feed: products, personalization signals, ranked entries, controller
events, lifecycle events, the column layout policy and the engine
configuration.

The engine itself is split across sub-packages, leaves first:

  - ranking: pure, deterministic ordering of a catalog from personalization
    signals, plus explicit price/rating/newest sorts
  - reranking: sponsored interleaving and an optional category diversity pass
  - deck: round-robin allocation of the ranked list into N column decks with
    a FIFO refill pool
  - motion: the per-column frame-driven scroll controller
  - coordinator: the shared finite-feed state machine (scrolling / ended)
  - session: composition of all of the above for one viewer

Data flow:

	catalog + signals -> ranking -> reranking -> deck -> N x motion -> coordinator
	                                              ^                         |
	                                              +---- refill / replay ----+

Nothing in these packages performs I/O or reads the wall clock. Frame
timestamps are supplied by the caller, which keeps every operation
deterministic and testable.
*/
package feed
