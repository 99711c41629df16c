package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"clipbot/history"
	"clipbot/logger"
	"clipbot/newsfeeds"
	"clipbot/types"
)

// ErrNoTopic means every candidate was already used or unreadable.
var ErrNoTopic = errors.New("no fresh topic available")

// TopicSource picks the subject of the next video.
type TopicSource interface {
	Pick(ctx context.Context) (*types.Topic, error)
}

// ListSource picks a random configured theme, preferring ones not in history.
type ListSource struct {
	Topics  []string
	History history.History
	Log     *logger.Logger
	rng     *rand.Rand
}

func NewListSource(topics []string, h history.History, log *logger.Logger) *ListSource {
	return &ListSource{Topics: topics, History: h, Log: log, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (s *ListSource) Pick(ctx context.Context) (*types.Topic, error) {
	if len(s.Topics) == 0 {
		return nil, ErrNoTopic
	}
	order := s.rng.Perm(len(s.Topics))
	for _, i := range order {
		t := ManualTopic(s.Topics[i])
		if s.History == nil {
			return t, nil
		}
		seen, err := s.History.Seen(ctx, t)
		if err != nil {
			s.Log.Warn("history lookup failed", "topic", t.Title, "error", err)
			return t, nil
		}
		if !seen {
			return t, nil
		}
	}
	// every theme was used recently; repeat one rather than stop
	t := ManualTopic(s.Topics[order[0]])
	s.Log.Warn("all topics used recently, repeating", "topic", t.Title)
	return t, nil
}

// NewsSource picks the first unseen item with extractable text across feeds.
type NewsSource struct {
	Feeds   []string
	PerFeed int
	History history.History
	Log     *logger.Logger
	Extract func(log *logger.Logger, topics []*types.Topic)
	Fetch   func(ctx context.Context, url string, max int) ([]*types.Topic, error)
}

func NewNewsSource(feeds []string, h history.History, log *logger.Logger) *NewsSource {
	return &NewsSource{
		Feeds:   feeds,
		PerFeed: 10,
		History: h,
		Log:     log,
		Extract: newsfeeds.ExtractAllContent,
		Fetch:   newsfeeds.FetchFeed,
	}
}

func (s *NewsSource) Pick(ctx context.Context) (*types.Topic, error) {
	var all []*types.Topic
	for _, feed := range s.Feeds {
		url := newsfeeds.ResolveFeedURL(feed)
		items, err := s.Fetch(ctx, url, s.PerFeed)
		if err != nil {
			s.Log.Warn("failed to fetch feed", "feed", url, "error", err)
			continue
		}
		all = append(all, items...)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: no feed items", ErrNoTopic)
	}

	s.Extract(s.Log, all)

	var seen newsfeeds.Seen
	if s.History != nil {
		seen = s.History.Seen
	}
	t := newsfeeds.PickFresh(ctx, all, seen)
	if t == nil {
		return nil, ErrNoTopic
	}
	return t, nil
}

// ManualTopic wraps a free-text theme.
func ManualTopic(title string) *types.Topic {
	title = strings.TrimSpace(title)
	return &types.Topic{
		ID:        types.GenerateID(strings.ToLower(title)),
		Title:     title,
		Source:    "topics",
		FetchedAt: time.Now(),
	}
}
