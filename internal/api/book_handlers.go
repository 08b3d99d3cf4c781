package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Adds a manually entered book to the catalog",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns canonical books, most recently updated first",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID, merged or canonical",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Applies a partial update; omitted fields are left untouched",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "mergeBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/merge",
		Summary:     "Merge book",
		Description: "Marks the book as a duplicate of another; history keeps referencing it",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMergeBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "saveCandidate",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/save-candidate",
		Summary:     "Save search candidate",
		Description: "Materializes a search candidate as a catalog book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSaveCandidate)

	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Get stats",
		Description: "Returns owner-scoped aggregates over the catalog and the valid events",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStats)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID          string    `json:"id" doc:"Book ID"`
	Title       string    `json:"title" doc:"Title"`
	Author      string    `json:"author,omitempty" doc:"Author"`
	Publisher   string    `json:"publisher,omitempty" doc:"Publisher"`
	PublishYear string    `json:"publish_year,omitempty" doc:"Publication year"`
	Language    string    `json:"language,omitempty" doc:"Language code"`
	RegionHint  string    `json:"region_hint,omitempty" doc:"Edition region hint"`
	ISBN10      string    `json:"isbn10,omitempty" doc:"ISBN-10, separators stripped"`
	ISBN13      string    `json:"isbn13,omitempty" doc:"ISBN-13, separators stripped"`
	CoverURL    string    `json:"cover_url,omitempty" doc:"Cover image URL"`
	MergedInto  string    `json:"merged_into,omitempty" doc:"Canonical book this was merged into"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

func bookResponseFrom(b *domain.Book) BookResponse {
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		Publisher:   b.Publisher,
		PublishYear: b.PublishYear,
		Language:    b.Language,
		RegionHint:  string(b.RegionHint),
		ISBN10:      b.ISBN10,
		ISBN13:      b.ISBN13,
		CoverURL:    b.CoverURL,
		MergedInto:  b.MergedInto,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// BookMutationResponse is the outcome of a book mutation that may have been
// buffered offline.
type BookMutationResponse struct {
	Book   *BookResponse `json:"book,omitempty" doc:"The affected book, when known"`
	Queued bool          `json:"queued" doc:"True when buffered offline instead of stored"`
}

// BookMutationOutput wraps the mutation response for Huma.
type BookMutationOutput struct {
	Body BookMutationResponse
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title       string `json:"title" doc:"Title"`
	Author      string `json:"author,omitempty" doc:"Author"`
	Publisher   string `json:"publisher,omitempty" doc:"Publisher"`
	PublishYear string `json:"publish_year,omitempty" doc:"Publication year (4 digits)"`
	Language    string `json:"language,omitempty" doc:"Language code"`
	RegionHint  string `json:"region_hint,omitempty" doc:"HK, TW, CN, EN, or OTHER"`
	ISBN10      string `json:"isbn10,omitempty" doc:"ISBN-10, separators allowed"`
	ISBN13      string `json:"isbn13,omitempty" doc:"ISBN-13, separators allowed"`
	CoverURL    string `json:"cover_url,omitempty" doc:"Cover image URL"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateBookRequest
}

// ListBooksInput contains parameters for listing books.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" doc:"Maximum number of books to return"`
}

// ListBooksResponse contains a list of books.
type ListBooksResponse struct {
	Books []BookResponse `json:"books" doc:"Canonical books"`
}

// ListBooksOutput wraps the list books response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// BookIDInput identifies a book by path.
type BookIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a single book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// UpdateBookRequest is the request body for updating a book. Nil fields are
// left untouched.
type UpdateBookRequest struct {
	Title       *string `json:"title,omitempty" doc:"Title"`
	Author      *string `json:"author,omitempty" doc:"Author"`
	Publisher   *string `json:"publisher,omitempty" doc:"Publisher"`
	PublishYear *string `json:"publish_year,omitempty" doc:"Publication year"`
	Language    *string `json:"language,omitempty" doc:"Language code"`
	RegionHint  *string `json:"region_hint,omitempty" doc:"Edition region hint"`
	ISBN10      *string `json:"isbn10,omitempty" doc:"ISBN-10"`
	ISBN13      *string `json:"isbn13,omitempty" doc:"ISBN-13"`
	CoverURL    *string `json:"cover_url,omitempty" doc:"Cover image URL"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          UpdateBookRequest
}

// MergeBookInput wraps the merge request for Huma.
type MergeBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Duplicate book ID"`
	Body          struct {
		Into string `json:"into" doc:"Canonical book to merge into"`
	}
}

// SaveCandidateInput wraps a search candidate for Huma.
type SaveCandidateInput struct {
	Authorization string `header:"Authorization"`
	Body          CandidateResponse
}

// StatsResponse contains owner-scoped aggregates.
type StatsResponse struct {
	Books       int `json:"books" doc:"Canonical book count"`
	ValidEvents int `json:"valid_events" doc:"Valid event count"`
	Finished    int `json:"finished" doc:"Valid finished events"`
	Ended       int `json:"ended" doc:"Valid ended events"`
	TotalEvents int `json:"total_events" doc:"All stored rows, history included"`
}

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body StatsResponse
}

// StatsInput contains parameters for reading stats.
type StatsInput struct {
	Authorization string `header:"Authorization"`
}

// === Handlers ===

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookMutationOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Books.CreateBook(ctx, ownerID, service.CreateBookRequest{
		Title:       input.Body.Title,
		Author:      input.Body.Author,
		Publisher:   input.Body.Publisher,
		PublishYear: input.Body.PublishYear,
		Language:    input.Body.Language,
		RegionHint:  input.Body.RegionHint,
		ISBN10:      input.Body.ISBN10,
		ISBN13:      input.Body.ISBN13,
		CoverURL:    input.Body.CoverURL,
	})
	if err != nil {
		return nil, err
	}

	return bookMutationOutput(result), nil
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	books, err := s.services.Books.ListBooks(ctx, ownerID, input.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]BookResponse, len(books))
	for i, b := range books {
		resp[i] = bookResponseFrom(b)
	}

	return &ListBooksOutput{Body: ListBooksResponse{Books: resp}}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *BookIDInput) (*BookOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Books.GetBook(ctx, ownerID, input.ID)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: bookResponseFrom(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookMutationOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	update := domain.BookUpdate{
		Title:       input.Body.Title,
		Author:      input.Body.Author,
		Publisher:   input.Body.Publisher,
		PublishYear: input.Body.PublishYear,
		Language:    input.Body.Language,
		ISBN10:      input.Body.ISBN10,
		ISBN13:      input.Body.ISBN13,
		CoverURL:    input.Body.CoverURL,
	}
	if input.Body.RegionHint != nil {
		region := domain.Region(*input.Body.RegionHint)
		update.RegionHint = &region
	}

	result, err := s.services.Books.UpdateBook(ctx, ownerID, input.ID, update)
	if err != nil {
		return nil, err
	}

	return bookMutationOutput(result), nil
}

func (s *Server) handleMergeBook(ctx context.Context, input *MergeBookInput) (*BookOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Books.MergeBooks(ctx, ownerID, input.ID, input.Body.Into)
	if err != nil {
		return nil, err
	}

	return &BookOutput{Body: bookResponseFrom(book)}, nil
}

func (s *Server) handleSaveCandidate(ctx context.Context, input *SaveCandidateInput) (*BookMutationOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Books.SaveCandidate(ctx, ownerID, candidateFromResponse(input.Body))
	if err != nil {
		return nil, err
	}

	return bookMutationOutput(result), nil
}

func (s *Server) handleGetStats(ctx context.Context, input *StatsInput) (*StatsOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Books.GetStats(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: StatsResponse{
		Books:       stats.Books,
		ValidEvents: stats.ValidEvents,
		Finished:    stats.Finished,
		Ended:       stats.Ended,
		TotalEvents: stats.TotalEvents,
	}}, nil
}

func bookMutationOutput(result *service.CreateResult) *BookMutationOutput {
	resp := BookMutationResponse{Queued: result.Queued}
	if result.Book != nil {
		book := bookResponseFrom(result.Book)
		resp.Book = &book
	}
	return &BookMutationOutput{Body: resp}
}
