package articles

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventRegistryQueryBuildsComplexQuery(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/article/getArticles", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"articles":{"totalResults":2,"results":[
			{"uri":"art-2","url":"https://example.com/2","title":"Two","body":"Second body","dateTime":"2026-10-01T10:00:00Z"},
			{"uri":"art-1","url":"https://example.com/1","title":"One","body":"First body"}
		]}}`))
	}))
	defer srv.Close()

	c := NewEventRegistryClient("er-key", srv.URL, srv.Client())
	items, err := c.Query(context.Background(), Query{CategoryURI: "news/Sports", Window: 31 * 24 * time.Hour, MaxItems: 10})
	require.NoError(t, err)

	query := got["query"].(map[string]any)
	assert.Equal(t, "news/Sports", query["$query"].(map[string]any)["categoryUri"])
	assert.Equal(t, "31", query["$filter"].(map[string]any)["forceMaxDataTimeWindow"])
	assert.Equal(t, float64(10), got["articlesCount"])
	assert.Equal(t, "er-key", got["apiKey"])

	require.Len(t, items, 2)
	assert.Equal(t, "art-2", items[0].URI)
	assert.Equal(t, "Second body", items[0].Body)
	assert.False(t, items[0].PublishedAt.IsZero())
	assert.Equal(t, "art-1", items[1].URI)
}

func TestEventRegistryQueryFailsOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewEventRegistryClient("k", srv.URL, srv.Client())
	_, err := c.Query(context.Background(), Query{CategoryURI: "news/Sports"})
	assert.Error(t, err)
}

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Sports</title>
<item><guid>art-new</guid><link>https://example.com/new</link><title>New</title>
<description><![CDATA[<p>Team X won the championship.</p>]]></description>
<pubDate>Wed, 14 Oct 2026 10:00:00 GMT</pubDate></item>
<item><guid>art-old</guid><link>https://example.com/old</link><title>Old</title>
<description>Old news</description>
<pubDate>Mon, 01 Jun 2026 10:00:00 GMT</pubDate></item>
<item><link>https://example.com/noguid</link><title>No guid</title>
<description>Link only</description>
<pubDate>Thu, 15 Oct 2026 10:00:00 GMT</pubDate></item>
</channel></rss>`

func TestRSSSourceFiltersByWindow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	s := NewRSSSource(srv.Client())
	s.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }

	items, err := s.Query(context.Background(), Query{CategoryURI: srv.URL, Window: 31 * 24 * time.Hour, MaxItems: 10})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "art-new", items[0].URI)
	assert.Contains(t, items[0].Body, "Team X won the championship.")
	assert.Equal(t, "https://example.com/noguid", items[1].URI)
}

func TestRSSSourceHonorsMaxItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	s := NewRSSSource(srv.Client())
	items, err := s.Query(context.Background(), Query{CategoryURI: srv.URL, MaxItems: 1})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

type fakeRenderer struct {
	pages map[string]string
	calls []string
}

func (f *fakeRenderer) RenderHTML(ctx context.Context, url string) (string, error) {
	f.calls = append(f.calls, url)
	page, ok := f.pages[url]
	if !ok {
		return "", errors.New("chrome unavailable")
	}
	return page, nil
}

func TestRSSSourceRendersSummaryOnlyItems(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	long := strings.Repeat("The final went to extra time before Team X scored the winning goal. ", 20)
	r := &fakeRenderer{pages: map[string]string{
		"https://example.com/new": "<html><body><article><h1>Final</h1><p>" + long + "</p></article></body></html>",
	}}
	s := NewRSSSource(srv.Client()).WithRenderer(r)
	s.now = func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }

	items, err := s.Query(context.Background(), Query{CategoryURI: srv.URL, Window: 31 * 24 * time.Hour})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Contains(t, items[0].Body, "winning goal")
	// 렌더링 실패는 피드 본문으로 대체
	assert.Equal(t, "Link only", items[1].Body)
	assert.Equal(t, []string{"https://example.com/new", "https://example.com/noguid"}, r.calls)
}
