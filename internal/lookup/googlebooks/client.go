// Package googlebooks adapts the Google Books volumes API to lookup.Source.
package googlebooks

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
	"github.com/readingkg/readingkg-server/internal/lookup"
)

const (
	defaultBaseURL = "https://www.googleapis.com/books/v1/volumes"
	defaultLimit   = 5
	maxLimit       = 40 // API maximum for maxResults
)

// Client is a rate-limited Google Books API client.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	logger      *slog.Logger
	baseURL     string
	apiKey      string
}

// NewClient creates a new Google Books client. The API key is optional:
// anonymous requests work at a lower quota.
func NewClient(logger *slog.Logger, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		// 1 request per second, burst of 3: well under the anonymous quota.
		rateLimiter: rate.NewLimiter(rate.Every(time.Second), 3),
		logger:      logger,
		baseURL:     defaultBaseURL,
		apiKey:      apiKey,
	}
}

// Name returns the candidate source tag.
func (c *Client) Name() string {
	return domain.SourceGoogleBooks
}

// SearchByKeyword searches volumes by free text.
func (c *Client) SearchByKeyword(ctx context.Context, query string, limit int) ([]domain.BookCandidate, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return c.search(ctx, query, limit)
}

// LookupByISBN resolves a single volume by ISBN. Returns (nil, nil) when the
// API has no matching record.
func (c *Client) LookupByISBN(ctx context.Context, isbn string) (*domain.BookCandidate, error) {
	candidates, err := c.search(ctx, "isbn:"+isbn, 1)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	return &candidates[0], nil
}

func (c *Client) search(ctx context.Context, query string, limit int) ([]domain.BookCandidate, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(limit))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	searchURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("searching google books",
		"query", query,
		"limit", limit,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search failed: status %d", resp.StatusCode)
	}

	var volumes volumesResponse
	if err := json.UnmarshalRead(resp.Body, &volumes); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	c.logger.Debug("google books results",
		"query", query,
		"count", len(volumes.Items),
	)

	candidates := make([]domain.BookCandidate, 0, len(volumes.Items))
	for i := range volumes.Items {
		candidates = append(candidates, candidateFromVolume(&volumes.Items[i]))
	}
	return candidates, nil
}

// candidateFromVolume normalizes one API record into a candidate.
func candidateFromVolume(v *volume) domain.BookCandidate {
	info := &v.VolumeInfo

	cand := domain.BookCandidate{
		Source:      domain.SourceGoogleBooks,
		SourceID:    v.ID,
		Title:       info.Title,
		Author:      strings.Join(info.Authors, ", "),
		Publisher:   info.Publisher,
		PublishYear: publishYear(info.PublishedDate),
		Language:    info.Language,
		CoverURL:    coverURL(info.ImageLinks),
	}

	for _, id := range info.IndustryIdentifiers {
		switch id.Type {
		case "ISBN_10":
			cand.ISBN10 = id.Identifier
		case "ISBN_13":
			cand.ISBN13 = id.Identifier
		}
	}

	cand.RegionHint = lookup.InferRegion(cand.Publisher, cand.Language)
	return cand
}

// publishYear extracts the year from a publishedDate, which the API returns
// as "2006", "2006-01", or "2006-01-02".
func publishYear(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return ""
}

// coverURL picks the best thumbnail and upgrades the scheme; the API hands
// out http links.
func coverURL(links imageLinks) string {
	u := links.Thumbnail
	if u == "" {
		u = links.SmallThumbnail
	}
	return strings.Replace(u, "http://", "https://", 1)
}
