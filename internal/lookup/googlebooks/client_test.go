package googlebooks

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

const volumesJSON = `{
	"totalItems": 2,
	"items": [
		{
			"id": "vol-1",
			"volumeInfo": {
				"title": "紅樓夢",
				"authors": ["曹雪芹", "高鶚"],
				"publisher": "人民文学出版社",
				"publishedDate": "1982-03",
				"language": "zh",
				"industryIdentifiers": [
					{"type": "ISBN_10", "identifier": "7020002207"},
					{"type": "ISBN_13", "identifier": "9787020002207"}
				],
				"imageLinks": {
					"thumbnail": "http://books.google.com/thumb?id=vol-1"
				}
			}
		},
		{
			"id": "vol-2",
			"volumeInfo": {
				"title": "Dream of the Red Chamber",
				"authors": ["Cao Xueqin"],
				"publisher": "Penguin",
				"publishedDate": "1996",
				"language": "en"
			}
		}
	]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	c := NewClient(logger, "")
	c.baseURL = server.URL
	return c
}

func TestSearchByKeyword(t *testing.T) {
	var gotQuery, gotMax string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotMax = r.URL.Query().Get("maxResults")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(volumesJSON))
	})

	candidates, err := c.SearchByKeyword(context.Background(), "红楼梦", 5)
	require.NoError(t, err)
	require.Len(t, candidates, 2)

	assert.Equal(t, "红楼梦", gotQuery)
	assert.Equal(t, "5", gotMax)

	first := candidates[0]
	assert.Equal(t, domain.SourceGoogleBooks, first.Source)
	assert.Equal(t, "vol-1", first.SourceID)
	assert.Equal(t, "紅樓夢", first.Title)
	assert.Equal(t, "曹雪芹, 高鶚", first.Author)
	assert.Equal(t, "1982", first.PublishYear)
	assert.Equal(t, "7020002207", first.ISBN10)
	assert.Equal(t, "9787020002207", first.ISBN13)
	assert.Equal(t, "https://books.google.com/thumb?id=vol-1", first.CoverURL)
	assert.Equal(t, domain.RegionCN, first.RegionHint)

	second := candidates[1]
	assert.Equal(t, "Dream of the Red Chamber", second.Title)
	assert.Equal(t, domain.RegionEN, second.RegionHint)
	assert.Empty(t, second.CoverURL)
}

func TestLookupByISBN(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:9787020002207", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(volumesJSON))
	})

	cand, err := c.LookupByISBN(context.Background(), "9787020002207")
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "紅樓夢", cand.Title)
}

func TestLookupByISBN_NoResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"totalItems": 0}`))
	})

	cand, err := c.LookupByISBN(context.Background(), "9780306406157")
	require.NoError(t, err)
	assert.Nil(t, cand)
}

func TestSearch_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.SearchByKeyword(context.Background(), "anything", 5)
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	assert.Equal(t, "googlebooks", NewClient(logger, "").Name())
}
