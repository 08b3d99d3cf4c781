package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search books",
		Description: "Searches the local catalog and, depending on mode, external sources",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBooks)
}

// === DTOs ===

// CandidateResponse contains search candidate data. The same shape is
// accepted back by saveCandidate, so clients can echo a result verbatim.
type CandidateResponse struct {
	Source      string `json:"source" doc:"local, googlebooks, or openlibrary"`
	Title       string `json:"title" doc:"Title"`
	Author      string `json:"author,omitempty" doc:"Author"`
	Publisher   string `json:"publisher,omitempty" doc:"Publisher"`
	PublishYear string `json:"publish_year,omitempty" doc:"Publication year"`
	Language    string `json:"language,omitempty" doc:"Language code"`
	RegionHint  string `json:"region_hint,omitempty" doc:"Edition region hint"`
	ISBN10      string `json:"isbn10,omitempty" doc:"ISBN-10"`
	ISBN13      string `json:"isbn13,omitempty" doc:"ISBN-13"`
	CoverURL    string `json:"cover_url,omitempty" doc:"Cover image URL"`
	BookID      string `json:"book_id,omitempty" doc:"Existing catalog book, for local hits"`
	SourceID    string `json:"source_id,omitempty" doc:"External record identifier"`
}

func candidateResponseFrom(c domain.BookCandidate) CandidateResponse {
	return CandidateResponse{
		Source:      c.Source,
		Title:       c.Title,
		Author:      c.Author,
		Publisher:   c.Publisher,
		PublishYear: c.PublishYear,
		Language:    c.Language,
		RegionHint:  string(c.RegionHint),
		ISBN10:      c.ISBN10,
		ISBN13:      c.ISBN13,
		CoverURL:    c.CoverURL,
		BookID:      c.BookID,
		SourceID:    c.SourceID,
	}
}

func candidateFromResponse(r CandidateResponse) domain.BookCandidate {
	return domain.BookCandidate{
		Source:      r.Source,
		Title:       r.Title,
		Author:      r.Author,
		Publisher:   r.Publisher,
		PublishYear: r.PublishYear,
		Language:    r.Language,
		RegionHint:  domain.Region(r.RegionHint),
		ISBN10:      r.ISBN10,
		ISBN13:      r.ISBN13,
		CoverURL:    r.CoverURL,
		BookID:      r.BookID,
		SourceID:    r.SourceID,
	}
}

// SearchInput contains search parameters.
type SearchInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Title, author, or ISBN query"`
	Mode          string `query:"mode" doc:"local, auto, or external (default auto)"`
}

// SearchResponse contains ranked search candidates.
type SearchResponse struct {
	Candidates      []CandidateResponse `json:"candidates" doc:"Deduplicated candidates, region-ranked"`
	ExternalQueried bool                `json:"external_queried" doc:"Whether external sources were consulted"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body SearchResponse
}

// === Handlers ===

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	ownerID, err := s.authorize(input.Authorization)
	if err != nil {
		return nil, err
	}

	mode := search.Mode(input.Mode)
	if input.Mode == "" {
		mode = search.ModeAuto
	}

	result, err := s.searcher.Search(ctx, ownerID, input.Query, mode)
	if err != nil {
		return nil, err
	}

	resp := make([]CandidateResponse, len(result.Candidates))
	for i, c := range result.Candidates {
		resp[i] = candidateResponseFrom(c)
	}

	return &SearchOutput{Body: SearchResponse{
		Candidates:      resp,
		ExternalQueried: result.ExternalQueried,
	}}, nil
}
