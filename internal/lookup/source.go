// Package lookup defines the contract external book metadata sources
// implement, plus the normalization shared by adapters. Adapters own their
// transport and rate limiting; the search orchestrator only sees candidates.
package lookup

import (
	"context"

	"github.com/readingkg/readingkg-server/internal/domain"
)

// Source is an external book metadata provider.
//
// Implementations normalize provider records into BookCandidate values with
// the source tag and region hint filled in. A lookup that finds nothing
// returns (nil, nil); errors are reserved for transport and decode failures.
type Source interface {
	// Name returns the candidate source tag, e.g. "googlebooks".
	Name() string

	// SearchByKeyword returns up to limit candidates for a free-text query.
	SearchByKeyword(ctx context.Context, query string, limit int) ([]domain.BookCandidate, error)

	// LookupByISBN resolves a normalized, checksum-valid ISBN-10 or ISBN-13.
	LookupByISBN(ctx context.Context, isbn string) (*domain.BookCandidate, error)
}
