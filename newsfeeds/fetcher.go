package newsfeeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"clipbot/types"

	"github.com/mmcdole/gofeed"
)

const (
	feedTimeout   = 20 * time.Second
	feedUserAgent = "clipbot/1.0 (+https://github.com/clipbot)"
)

// FetchFeed parses an RSS/Atom feed and returns up to maxCount items that
// have both a title and a link.
func FetchFeed(ctx context.Context, feedURL string, maxCount int) ([]*types.Topic, error) {
	parser := gofeed.NewParser()
	parser.UserAgent = feedUserAgent
	parser.Client = &http.Client{Timeout: feedTimeout}

	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}

	now := time.Now()
	topics := make([]*types.Topic, 0, min(len(feed.Items), maxCount))
	for _, item := range feed.Items {
		if len(topics) >= maxCount {
			break
		}
		if t := topicFromItem(item, feedURL, now); t != nil {
			topics = append(topics, t)
		}
	}
	return topics, nil
}

func topicFromItem(item *gofeed.Item, feedURL string, fetchedAt time.Time) *types.Topic {
	title := strings.TrimSpace(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return nil
	}

	t := &types.Topic{
		ID:        item.GUID,
		Title:     title,
		Source:    feedURL,
		URL:       link,
		Summary:   firstNonEmpty(item.Description, item.Content),
		Keywords:  append([]string(nil), item.Categories...),
		FetchedAt: fetchedAt,
	}
	if t.ID == "" {
		t.ID = types.GenerateID(link)
	}
	switch {
	case item.PublishedParsed != nil:
		t.PublishedAt = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		t.PublishedAt = *item.UpdatedParsed
	}
	if item.Author != nil {
		t.Author = item.Author.Name
	}
	if item.Image != nil {
		t.ImageURL = item.Image.URL
	}
	return t
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
