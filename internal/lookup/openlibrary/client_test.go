package openlibrary

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readingkg/readingkg-server/internal/domain"
)

const searchJSON = `{
	"numFound": 2,
	"docs": [
		{
			"key": "/works/OL14953557W",
			"title": "紅樓夢",
			"author_name": ["曹雪芹"],
			"publisher": ["臺北：聯經出版"],
			"first_publish_year": 1791,
			"language": ["chi"],
			"isbn": ["9787020002207", "7020002207"],
			"cover_i": 240727
		},
		{
			"key": "/works/OL123W",
			"title": "The Story of the Stone",
			"author_name": ["Cao Xueqin", "David Hawkes"],
			"publisher": ["Penguin Classics"],
			"first_publish_year": 1973,
			"language": ["eng"]
		}
	]
}`

const editionJSON = `{
	"key": "/books/OL7353617M",
	"title": "紅樓夢",
	"publishers": ["人民文学出版社"],
	"publish_date": "March 1982",
	"isbn_10": ["7020002207"],
	"isbn_13": ["978-7-02-000220-7"],
	"covers": [240727],
	"languages": [{"key": "/languages/chi"}]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	c := NewClient(logger)
	c.baseURL = server.URL
	c.coverURL = "https://covers.test"
	return c
}

func TestSearchByKeyword(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search.json", r.URL.Path)
		assert.Equal(t, "紅樓夢", r.URL.Query().Get("q"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(searchJSON))
	})

	candidates, err := c.SearchByKeyword(context.Background(), "紅樓夢", 5)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	first := candidates[0]
	assert.Equal(t, domain.SourceOpenLibrary, first.Source)
	assert.Equal(t, "/works/OL14953557W", first.SourceID)
	assert.Equal(t, "紅樓夢", first.Title)
	assert.Equal(t, "曹雪芹", first.Author)
	assert.Equal(t, "1791", first.PublishYear)
	assert.Equal(t, "zh", first.Language)
	assert.Equal(t, "9787020002207", first.ISBN13)
	assert.Equal(t, "7020002207", first.ISBN10)
	assert.Equal(t, "https://covers.test/b/id/240727-L.jpg", first.CoverURL)
	// Publisher marker wins over the zh language fallback.
	assert.Equal(t, domain.RegionTW, first.RegionHint)

	second := candidates[1]
	assert.Equal(t, "Cao Xueqin, David Hawkes", second.Author)
	assert.Equal(t, domain.RegionEN, second.RegionHint)
	assert.Empty(t, second.CoverURL)
	assert.Empty(t, second.ISBN13)
}

func TestLookupByISBN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/isbn/9787020002207.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(editionJSON))
	})

	cand, err := c.LookupByISBN(context.Background(), "9787020002207")
	require.NoError(t, err)
	require.NotNil(t, cand)

	assert.Equal(t, "/books/OL7353617M", cand.SourceID)
	assert.Equal(t, "紅樓夢", cand.Title)
	assert.Equal(t, "人民文学出版社", cand.Publisher)
	assert.Equal(t, "1982", cand.PublishYear)
	assert.Equal(t, "zh", cand.Language)
	assert.Equal(t, "7020002207", cand.ISBN10)
	assert.Equal(t, "9787020002207", cand.ISBN13)
	assert.Equal(t, domain.RegionCN, cand.RegionHint)
}

func TestLookupByISBN_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	cand, err := c.LookupByISBN(context.Background(), "9780306406157")
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestSearch_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.SearchByKeyword(context.Background(), "anything", 5)
	assert.Error(t, err)
}

func TestPublishYear(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"March 1982", "1982"},
		{"1982", "1982"},
		{"Mar 12, 1996", "1996"},
		{"n.d.", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, publishYear(tt.in), "publishYear(%q)", tt.in)
	}
}
