package feeder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Example Tech News</title>
    <item>
      <title>First article</title>
      <link>https://ex.com/a</link>
      <description>Summary A</description>
      <enclosure url="https://ex.com/a.jpg" type="image/jpeg" length="1"/>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Second article</title>
      <link>https://ex.com/b</link>
      <description>Summary B</description>
    </item>
    <item>
      <title>Third article</title>
      <link>https://ex.com/c</link>
    </item>
  </channel>
</rss>`

func TestFetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	items, err := FetchFeed(context.Background(), srv.URL, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "First article", items[0].Title)
	assert.Equal(t, "https://ex.com/a", items[0].Link)
	assert.Equal(t, "Summary A", items[0].Summary)
	assert.Contains(t, items[0].ImageURLs, "https://ex.com/a.jpg")
	assert.False(t, items[0].PublishedAt.IsZero())

	assert.Empty(t, items[2].Summary)
}

func TestFetchFeedLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	items, err := FetchFeed(context.Background(), srv.URL, 2)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestFetchFeedBadURL(t *testing.T) {
	_, err := FetchFeed(context.Background(), "http://127.0.0.1:0/feed", 0)
	assert.Error(t, err)
}
