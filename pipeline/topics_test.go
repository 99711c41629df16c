package pipeline

import (
	"context"
	"errors"
	"testing"

	"clipbot/history"
	"clipbot/logger"
	"clipbot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typesMedia(url string, video bool) types.Media {
	m := types.Media{URL: url, Type: types.MediaPhoto}
	if video {
		m.Type = types.MediaVideo
	}
	return m
}

func TestListSourcePrefersUnseen(t *testing.T) {
	h := history.NewMemory()
	require.NoError(t, h.Add(context.Background(), ManualTopic("Oceanos")))

	s := NewListSource([]string{"Oceanos", "Vulcões"}, h, logger.Nop())
	for i := 0; i < 10; i++ {
		got, err := s.Pick(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Vulcões", got.Title)
	}

	require.NoError(t, h.Add(context.Background(), ManualTopic("Vulcões")))
	got, err := s.Pick(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []string{"Oceanos", "Vulcões"}, got.Title)

	_, err = NewListSource(nil, h, logger.Nop()).Pick(context.Background())
	assert.ErrorIs(t, err, ErrNoTopic)
}

func TestNewsSourcePicksFreshItem(t *testing.T) {
	h := history.NewMemory()
	used := &types.Topic{Title: "Old news", URL: "https://news.example.com/old"}
	require.NoError(t, h.Add(context.Background(), used))

	var fetched []string
	s := NewNewsSource([]string{"g1", "https://feed.example.com/rss", "broken"}, h, logger.Nop())
	s.Fetch = func(_ context.Context, url string, max int) ([]*types.Topic, error) {
		fetched = append(fetched, url)
		if url == "broken" {
			return nil, errors.New("timeout")
		}
		if url == "https://feed.example.com/rss" {
			return []*types.Topic{
				{Title: "Old news", URL: "https://news.example.com/old"},
				{Title: "Empty", URL: "https://news.example.com/empty"},
				{Title: "Fresh", URL: "https://news.example.com/fresh"},
			}, nil
		}
		return nil, nil
	}
	s.Extract = func(_ *logger.Logger, topics []*types.Topic) {
		for _, t := range topics {
			if t.Title != "Empty" {
				t.Body = "corpo da notícia"
			}
		}
	}

	got, err := s.Pick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Fresh", got.Title)
	assert.Len(t, fetched, 3)
	assert.NotEqual(t, "g1", fetched[0])

	s.Fetch = func(context.Context, string, int) ([]*types.Topic, error) { return nil, nil }
	_, err = s.Pick(context.Background())
	assert.ErrorIs(t, err, ErrNoTopic)
}

func TestManualTopicID(t *testing.T) {
	a := ManualTopic("  Oceanos ")
	b := ManualTopic("oceanos")
	assert.Equal(t, "Oceanos", a.Title)
	assert.Equal(t, a.ID, b.ID)
	assert.False(t, a.IsNews())
}
