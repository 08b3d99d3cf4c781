// Package search implements the two-stage book search: the local catalog
// first, external metadata sources second. External results are normalized,
// deduplicated against local hits, and ranked by publishing region for
// display.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/errors"
	"github.com/readingkg/readingkg-server/internal/isbn"
	"github.com/readingkg/readingkg-server/internal/lookup"
	"github.com/readingkg/readingkg-server/internal/store"
)

// ErrSuperseded is returned when a newer search was issued while this one was
// still querying external sources. The stale results are discarded rather
// than delivered out of order.
var ErrSuperseded = errors.Conflict("search superseded by a newer query")

// Mode selects how far a search goes.
type Mode string

const (
	// ModeLocal queries only the local catalog. Zero network calls.
	ModeLocal Mode = "local"
	// ModeAuto queries external sources unless a strong local match exists
	// (and only when the orchestrator has auto-online enabled).
	ModeAuto Mode = "auto"
	// ModeExternal always runs the external phase.
	ModeExternal Mode = "external"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	switch m {
	case ModeLocal, ModeAuto, ModeExternal:
		return true
	}
	return false
}

// Result is one search issuance's outcome.
type Result struct {
	Candidates []domain.BookCandidate `json:"candidates"`
	// ExternalQueried reports whether the external phase ran.
	ExternalQueried bool `json:"external_queried"`
}

// Orchestrator coordinates the two search stages across the local catalog
// and the configured external sources.
type Orchestrator struct {
	books      store.BookStore
	sources    []lookup.Source
	logger     *slog.Logger
	limit      int
	autoOnline bool

	// generation rises on every issuance; searches that finish the external
	// phase under an older generation are superseded.
	generation atomic.Uint64
}

// NewOrchestrator creates a search orchestrator. limit caps per-source
// keyword results; autoOnline lets ModeAuto searches reach external sources.
func NewOrchestrator(books store.BookStore, sources []lookup.Source, logger *slog.Logger, limit int, autoOnline bool) *Orchestrator {
	if limit <= 0 {
		limit = 5
	}
	return &Orchestrator{
		books:      books,
		sources:    sources,
		logger:     logger,
		limit:      limit,
		autoOnline: autoOnline,
	}
}

// Search runs a two-stage search for the owner. Local results always come
// back, even when every external source fails; ErrSuperseded is the one
// exception, raised when a newer search was issued mid-flight.
func (o *Orchestrator) Search(ctx context.Context, ownerID, query string, mode Mode) (*Result, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.Validation("search query is required")
	}
	if !mode.Valid() {
		return nil, errors.Validationf("unknown search mode %q", mode)
	}

	gen := o.generation.Add(1)

	// Stage 1: local catalog, canonical books only.
	books, err := o.books.FindBooks(ctx, ownerID, query)
	if err != nil {
		return nil, err
	}
	locals := make([]domain.BookCandidate, 0, len(books))
	for _, b := range books {
		locals = append(locals, domain.CandidateFromBook(b))
	}

	queryISBN, isbnKind := isbn.Classify(query)

	goExternal := false
	switch mode {
	case ModeExternal:
		goExternal = true
	case ModeAuto:
		goExternal = o.autoOnline && !hasStrongLocalMatch(locals, query, queryISBN)
	}

	if !goExternal {
		return &Result{Candidates: locals}, nil
	}

	// Stage 2: fan out to external sources.
	external := o.queryExternal(ctx, query, queryISBN, isbnKind)

	// A newer issuance owns the screen now; drop these results.
	if o.generation.Load() != gen {
		return nil, ErrSuperseded
	}

	merged := append(locals, external...)
	if isbnKind != "" {
		merged = dedupeByISBN(merged)
	} else {
		merged = dedupeByTitle(merged)
	}
	rankByRegion(merged)

	return &Result{Candidates: merged, ExternalQueried: true}, nil
}

// queryExternal queries every source concurrently. A source failure is
// logged and contributes nothing; it never fails the search.
func (o *Orchestrator) queryExternal(ctx context.Context, query, queryISBN, isbnKind string) []domain.BookCandidate {
	results := make([][]domain.BookCandidate, len(o.sources))

	var g errgroup.Group
	for i, src := range o.sources {
		g.Go(func() error {
			var (
				candidates []domain.BookCandidate
				err        error
			)
			if isbnKind != "" {
				var cand *domain.BookCandidate
				cand, err = src.LookupByISBN(ctx, queryISBN)
				if cand != nil {
					candidates = []domain.BookCandidate{*cand}
				}
			} else {
				candidates, err = src.SearchByKeyword(ctx, query, o.limit)
			}
			if err != nil {
				o.logger.Warn("external source failed",
					"source", src.Name(),
					"query", query,
					"error", err,
				)
				return nil
			}
			results[i] = candidates
			return nil
		})
	}
	g.Wait()

	var merged []domain.BookCandidate
	for _, r := range results {
		merged = append(merged, r...)
	}
	return merged
}

// hasStrongLocalMatch reports whether a local hit is conclusive enough to
// skip the auto external phase: an exact case-insensitive title match, or an
// ISBN equal to the query's.
func hasStrongLocalMatch(locals []domain.BookCandidate, query, queryISBN string) bool {
	for i := range locals {
		c := &locals[i]
		if strings.EqualFold(c.Title, query) {
			return true
		}
		if queryISBN != "" && (c.ISBN10 == queryISBN || c.ISBN13 == queryISBN) {
			return true
		}
	}
	return false
}
