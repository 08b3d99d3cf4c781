package service

import (
	"context"
	"log/slog"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/errors"
	"github.com/readingkg/readingkg-server/internal/id"
	"github.com/readingkg/readingkg-server/internal/isbn"
	"github.com/readingkg/readingkg-server/internal/store"
)

// BookService manages the owner's book catalog.
type BookService struct {
	books  store.BookStore
	events store.EventStore
	queue  store.QueueStore
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(books store.BookStore, events store.EventStore, queue store.QueueStore, logger *slog.Logger) *BookService {
	return &BookService{
		books:  books,
		events: events,
		queue:  queue,
		logger: logger,
	}
}

// CreateBookRequest contains the data for a manual book entry.
type CreateBookRequest struct {
	Title       string `json:"title" validate:"required,max=512"`
	Author      string `json:"author" validate:"max=512"`
	Publisher   string `json:"publisher" validate:"max=512"`
	PublishYear string `json:"publish_year" validate:"omitempty,len=4"`
	Language    string `json:"language" validate:"max=32"`
	RegionHint  string `json:"region_hint" validate:"omitempty,oneof=HK TW CN EN OTHER"`
	ISBN10      string `json:"isbn10"`
	ISBN13      string `json:"isbn13"`
	CoverURL    string `json:"cover_url" validate:"omitempty,url"`
}

// CreateResult is the outcome of a book mutation that may have been buffered.
type CreateResult struct {
	Book   *domain.Book `json:"book"`
	Queued bool         `json:"queued"`
}

// CreateBook adds a manually entered book to the catalog.
func (s *BookService) CreateBook(ctx context.Context, ownerID string, req CreateBookRequest) (*CreateResult, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	isbn10, isbn13, err := normalizeISBNs(req.ISBN10, req.ISBN13)
	if err != nil {
		return nil, err
	}

	book := &domain.Book{
		ID:          id.MustGenerate("book"),
		OwnerID:     ownerID,
		Title:       req.Title,
		Author:      req.Author,
		Publisher:   req.Publisher,
		PublishYear: req.PublishYear,
		Language:    req.Language,
		RegionHint:  domain.Region(req.RegionHint),
		ISBN10:      isbn10,
		ISBN13:      isbn13,
		CoverURL:    req.CoverURL,
	}
	return s.create(ctx, book)
}

// SaveCandidate materializes a search candidate as a catalog book, mapping
// its fields 1:1 without revalidation. Local candidates resolve to the
// existing book without inserting.
func (s *BookService) SaveCandidate(ctx context.Context, ownerID string, cand domain.BookCandidate) (*CreateResult, error) {
	if cand.IsLocal() {
		book, err := s.books.GetBook(ctx, ownerID, cand.BookID)
		if err != nil {
			return nil, err
		}
		return &CreateResult{Book: book}, nil
	}
	if cand.Title == "" {
		return nil, errors.Validation("candidate has no title")
	}

	book := &domain.Book{
		ID:          id.MustGenerate("book"),
		OwnerID:     ownerID,
		Title:       cand.Title,
		Author:      cand.Author,
		Publisher:   cand.Publisher,
		PublishYear: cand.PublishYear,
		Language:    cand.Language,
		RegionHint:  cand.RegionHint,
		ISBN10:      cand.ISBN10,
		ISBN13:      cand.ISBN13,
		CoverURL:    cand.CoverURL,
	}
	return s.create(ctx, book)
}

func (s *BookService) create(ctx context.Context, book *domain.Book) (*CreateResult, error) {
	err := s.books.CreateBook(ctx, book)
	if err == nil {
		return &CreateResult{Book: book}, nil
	}
	if !errors.Retryable(err) {
		return nil, err
	}

	if enqueueOffline(ctx, s.queue, s.logger, book.OwnerID, domain.ActionCreateBook, domain.CreateBookPayload{Book: book}) {
		return &CreateResult{Book: book, Queued: true}, nil
	}
	return nil, err
}

// GetBook returns one book, merged or canonical.
func (s *BookService) GetBook(ctx context.Context, ownerID, bookID string) (*domain.Book, error) {
	return s.books.GetBook(ctx, ownerID, bookID)
}

// UpdateBook applies a partial update.
func (s *BookService) UpdateBook(ctx context.Context, ownerID, bookID string, update domain.BookUpdate) (*CreateResult, error) {
	book, err := s.books.UpdateBook(ctx, ownerID, bookID, update)
	if err == nil {
		return &CreateResult{Book: book}, nil
	}
	if !errors.Retryable(err) {
		return nil, err
	}

	payload := domain.UpdateBookPayload{BookID: bookID, Update: update}
	if enqueueOffline(ctx, s.queue, s.logger, ownerID, domain.ActionUpdateBook, payload) {
		return &CreateResult{Queued: true}, nil
	}
	return nil, err
}

// ListBooks returns canonical books, most recently updated first.
func (s *BookService) ListBooks(ctx context.Context, ownerID string, limit int) ([]*domain.Book, error) {
	return s.books.ListBooks(ctx, ownerID, limit)
}

// FindBooks is the local (stage 1) catalog search.
func (s *BookService) FindBooks(ctx context.Context, ownerID, query string) ([]*domain.Book, error) {
	return s.books.FindBooks(ctx, ownerID, query)
}

// MergeBooks marks bookID as a duplicate of intoID. Historical events keep
// referencing the merged book; only listings and search hide it. The
// merged_into edges must stay a forest, so merging rejects self-merges,
// already-merged sources, and edges that would close a cycle.
func (s *BookService) MergeBooks(ctx context.Context, ownerID, bookID, intoID string) (*domain.Book, error) {
	if bookID == intoID {
		return nil, errors.Validation("cannot merge a book into itself")
	}

	source, err := s.books.GetBook(ctx, ownerID, bookID)
	if err != nil {
		return nil, err
	}
	if !source.IsCanonical() {
		return nil, errors.Conflictf("book %s is already merged into %s", bookID, source.MergedInto)
	}

	target, err := s.books.GetBook(ctx, ownerID, intoID)
	if err != nil {
		return nil, err
	}

	// Walk the target's merge chain; finding the source would close a cycle.
	for hops := 0; target.MergedInto != ""; hops++ {
		if hops > 100 {
			return nil, errors.Internal("merge chain too deep")
		}
		if target.MergedInto == bookID {
			return nil, errors.Validationf("merging %s into %s would create a cycle", bookID, intoID)
		}
		target, err = s.books.GetBook(ctx, ownerID, target.MergedInto)
		if err != nil {
			return nil, err
		}
	}

	if err := s.books.SetMergedInto(ctx, ownerID, bookID, intoID); err != nil {
		return nil, err
	}

	s.logger.Info("merged book",
		"book_id", bookID,
		"into", intoID,
	)
	return s.books.GetBook(ctx, ownerID, bookID)
}

// Stats are owner-scoped aggregates over the catalog and the valid view.
type Stats struct {
	Books       int `json:"books"`        // canonical books
	ValidEvents int `json:"valid_events"` // corrections and corrected excluded
	Finished    int `json:"finished"`
	Ended       int `json:"ended"`
	TotalEvents int `json:"total_events"` // every stored row, history included
}

// GetStats computes the owner's aggregates.
func (s *BookService) GetStats(ctx context.Context, ownerID string) (*Stats, error) {
	books, err := s.books.CountBooks(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	total, err := s.events.CountEvents(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ValidEvents(ctx, ownerID, "")
	if err != nil {
		return nil, err
	}

	stats := &Stats{Books: books, ValidEvents: len(events), TotalEvents: total}
	for _, e := range events {
		switch e.EventType {
		case domain.EventFinished:
			stats.Finished++
		case domain.EventEnded:
			stats.Ended++
		}
	}
	return stats, nil
}

// normalizeISBNs strips separators and checksum-validates whichever ISBNs are
// present.
func normalizeISBNs(raw10, raw13 string) (isbn10, isbn13 string, err error) {
	if raw10 != "" {
		isbn10 = isbn.Normalize(raw10)
		if !isbn.IsISBN10(isbn10) {
			return "", "", errors.Validationf("invalid ISBN-10 %q", raw10)
		}
	}
	if raw13 != "" {
		isbn13 = isbn.Normalize(raw13)
		if !isbn.IsISBN13(isbn13) {
			return "", "", errors.Validationf("invalid ISBN-13 %q", raw13)
		}
	}
	return isbn10, isbn13, nil
}
