// Package openlibrary adapts the Open Library search and edition APIs to
// lookup.Source.
package openlibrary

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/readingkg/readingkg-server/internal/domain"
	"github.com/readingkg/readingkg-server/internal/isbn"
	"github.com/readingkg/readingkg-server/internal/lookup"
	"github.com/readingkg/readingkg-server/internal/normalize"
)

const (
	defaultBaseURL  = "https://openlibrary.org"
	defaultCoverURL = "https://covers.openlibrary.org"
	defaultLimit    = 5

	// Fields requested from search.json; keeps responses small.
	searchFields = "key,title,author_name,publisher,first_publish_year,language,isbn,cover_i"
)

// Client is a rate-limited Open Library API client.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	baseURL     string
	coverURL    string
}

// NewClient creates a new Open Library client. Open Library asks bulk
// consumers to stay under 1 request per second.
func NewClient(logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 2),
		logger:      logger,
		baseURL:     defaultBaseURL,
		coverURL:    defaultCoverURL,
	}
}

// Name returns the candidate source tag.
func (c *Client) Name() string {
	return domain.SourceOpenLibrary
}

// SearchByKeyword searches works by free text.
func (c *Client) SearchByKeyword(ctx context.Context, query string, limit int) ([]domain.BookCandidate, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("fields", searchFields)

	resp, err := c.get(ctx, c.baseURL+"/search.json?"+params.Encode())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.UnmarshalRead(resp.Body, &result); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("open library results",
		"query", query,
		"count", len(result.Docs),
	)

	candidates := make([]domain.BookCandidate, 0, len(result.Docs))
	for i := range result.Docs {
		candidates = append(candidates, c.candidateFromDoc(&result.Docs[i]))
	}
	return candidates, nil
}

// LookupByISBN resolves an edition record. Returns (nil, nil) when Open
// Library has no edition for the ISBN.
func (c *Client) LookupByISBN(ctx context.Context, rawISBN string) (*domain.BookCandidate, error) {
	resp, err := c.get(ctx, c.baseURL+"/isbn/"+url.PathEscape(rawISBN)+".json")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("isbn lookup failed: status %d", resp.StatusCode)
	}

	var ed edition
	if err := json.UnmarshalRead(resp.Body, &ed); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	cand := c.candidateFromEdition(&ed)
	return &cand, nil
}

func (c *Client) get(ctx context.Context, fullURL string) (*http.Response, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "ReadingKG/1.0")

	return c.httpClient.Do(req)
}

func (c *Client) candidateFromDoc(doc *searchDoc) domain.BookCandidate {
	cand := domain.BookCandidate{
		Source:   domain.SourceOpenLibrary,
		SourceID: doc.Key,
		Title:    doc.Title,
		Author:   strings.Join(doc.AuthorName, ", "),
	}
	if len(doc.Publisher) > 0 {
		cand.Publisher = doc.Publisher[0]
	}
	if doc.FirstPublishYear > 0 {
		cand.PublishYear = strconv.Itoa(doc.FirstPublishYear)
	}
	if len(doc.Language) > 0 {
		cand.Language = normalize.LanguageCode(doc.Language[0])
	}
	if doc.CoverID > 0 {
		cand.CoverURL = c.coverImageURL(doc.CoverID)
	}

	cand.ISBN10, cand.ISBN13 = splitISBNs(doc.ISBN)
	cand.RegionHint = lookup.InferRegion(cand.Publisher, cand.Language)
	return cand
}

func (c *Client) candidateFromEdition(ed *edition) domain.BookCandidate {
	cand := domain.BookCandidate{
		Source:      domain.SourceOpenLibrary,
		SourceID:    ed.Key,
		Title:       ed.Title,
		PublishYear: publishYear(ed.PublishDate),
	}
	if len(ed.Publishers) > 0 {
		cand.Publisher = ed.Publishers[0]
	}
	if len(ed.Languages) > 0 {
		cand.Language = normalize.LanguageCode(strings.TrimPrefix(ed.Languages[0].Key, "/languages/"))
	}
	if len(ed.ISBN10) > 0 {
		cand.ISBN10 = isbn.Normalize(ed.ISBN10[0])
	}
	if len(ed.ISBN13) > 0 {
		cand.ISBN13 = isbn.Normalize(ed.ISBN13[0])
	}
	if len(ed.Covers) > 0 && ed.Covers[0] > 0 {
		cand.CoverURL = c.coverImageURL(ed.Covers[0])
	}

	cand.RegionHint = lookup.InferRegion(cand.Publisher, cand.Language)
	return cand
}

func (c *Client) coverImageURL(coverID int64) string {
	return fmt.Sprintf("%s/b/id/%d-L.jpg", c.coverURL, coverID)
}

// splitISBNs picks the first checksum-valid ISBN of each length from the
// mixed identifier list search.json returns.
func splitISBNs(raw []string) (isbn10, isbn13 string) {
	for _, s := range raw {
		normalized, kind := isbn.Classify(s)
		switch {
		case kind == "isbn10" && isbn10 == "":
			isbn10 = normalized
		case kind == "isbn13" && isbn13 == "":
			isbn13 = normalized
		}
		if isbn10 != "" && isbn13 != "" {
			break
		}
	}
	return isbn10, isbn13
}

// publishYear pulls a 4-digit year out of free-form dates like
// "Mar 12, 1982" or "1982".
func publishYear(date string) string {
	for i := 0; i+4 <= len(date); i++ {
		if isYear(date[i : i+4]) {
			return date[i : i+4]
		}
	}
	return ""
}

func isYear(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s[0] == '1' || s[0] == '2'
}
