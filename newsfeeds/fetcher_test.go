package newsfeeds

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clipbot/types"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Test Feed</title>
  <item>
    <title>Telescópio encontra nova galáxia</title>
    <link>https://news.example.com/galaxia</link>
    <description>Astrônomos anunciaram a descoberta.</description>
    <category>ciência</category>
    <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Segunda notícia</title>
    <link>https://news.example.com/segunda</link>
    <guid>guid-2</guid>
    <description>Outra descrição.</description>
  </item>
  <item>
    <title>Terceira notícia</title>
    <link>https://news.example.com/terceira</link>
  </item>
</channel>
</rss>`

func TestFetchFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer srv.Close()

	topics, err := FetchFeed(context.Background(), srv.URL, 2)
	require.NoError(t, err)
	require.Len(t, topics, 2)

	first := topics[0]
	assert.Equal(t, "Telescópio encontra nova galáxia", first.Title)
	assert.Equal(t, types.GenerateID("https://news.example.com/galaxia"), first.ID)
	assert.Equal(t, srv.URL, first.Source)
	assert.Equal(t, []string{"ciência"}, first.Keywords)
	assert.False(t, first.PublishedAt.IsZero())
	assert.True(t, first.IsNews())

	assert.Equal(t, "guid-2", topics[1].ID)
}

func TestResolveFeedURL(t *testing.T) {
	assert.Equal(t, FeedPresets["hn"], ResolveFeedURL("hn"))
	assert.Equal(t, "https://custom.example/rss", ResolveFeedURL("https://custom.example/rss"))
}

func TestPickFresh(t *testing.T) {
	topics := []*types.Topic{
		{ID: "a", Body: "text", ExtractionError: "boom"},
		{ID: "b", Body: "text"},
		{ID: "c", Body: ""},
		{ID: "d", Body: "text"},
	}
	seen := func(_ context.Context, t *types.Topic) (bool, error) {
		return t.ID == "b", nil
	}

	got := PickFresh(context.Background(), topics, seen)
	require.NotNil(t, got)
	assert.Equal(t, "d", got.ID)

	assert.Nil(t, PickFresh(context.Background(), topics[:3], seen))
}

func TestTopicFromItemSkipsIncomplete(t *testing.T) {
	now := time.Now()
	assert.Nil(t, topicFromItem(&gofeed.Item{Title: "Sem link"}, "feed", now))
	assert.Nil(t, topicFromItem(&gofeed.Item{Link: "https://x.example/a"}, "feed", now))

	got := topicFromItem(&gofeed.Item{
		Title:   "  Vulcão entra em erupção ",
		Link:    "https://x.example/vulcao",
		Content: "<p>Lava</p>",
		Author:  &gofeed.Person{Name: "Redação"},
	}, "feed", now)
	require.NotNil(t, got)
	assert.Equal(t, "Vulcão entra em erupção", got.Title)
	assert.Equal(t, "<p>Lava</p>", got.Summary)
	assert.Equal(t, "Redação", got.Author)
	assert.Equal(t, now, got.FetchedAt)
}
