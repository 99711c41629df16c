package newsfeeds

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"clipbot/logger"
	"clipbot/types"

	readability "github.com/go-shiori/go-readability"
)

const (
	WorkerCount      = 5
	extractorTimeout = 30 * time.Second
)

// ExtractAllContent fetches and extracts full article text for all topics using a worker pool.
// Failures are recorded on the topic and do not stop the other workers.
func ExtractAllContent(log *logger.Logger, topics []*types.Topic) {
	var wg sync.WaitGroup
	topicChan := make(chan *types.Topic, len(topics))

	for i := 0; i < WorkerCount; i++ {
		go func(workerID int) {
			for topic := range topicChan {
				if err := extractContent(topic); err != nil {
					topic.ExtractionError = err.Error()
					log.Warn("extraction failed", "worker", workerID, "url", topic.URL, "error", err)
				}
				wg.Done()
			}
		}(i)
	}

	for _, topic := range topics {
		wg.Add(1)
		topicChan <- topic
	}

	wg.Wait()
	close(topicChan)
}

func extractContent(topic *types.Topic) error {
	if topic.URL == "" {
		return fmt.Errorf("topic URL is empty")
	}

	article, err := readability.FromURL(topic.URL, extractorTimeout)
	if err != nil {
		return fmt.Errorf("readability extraction failed: %w", err)
	}

	topic.Body = strings.TrimSpace(article.TextContent)
	if topic.Summary == "" {
		topic.Summary = article.Excerpt
	}
	if topic.ImageURL == "" {
		topic.ImageURL = article.Image
	}
	if topic.Author == "" {
		topic.Author = article.Byline
	}
	return nil
}

// Seen reports whether a topic has been used already.
type Seen func(ctx context.Context, t *types.Topic) (bool, error)

// PickFresh returns the first topic with extracted text that has not been seen.
// Errors from seen are treated as "not seen" so a broken history never blocks a run.
func PickFresh(ctx context.Context, topics []*types.Topic, seen Seen) *types.Topic {
	for _, t := range topics {
		if t.ExtractionError != "" || strings.TrimSpace(t.Body+t.Summary) == "" {
			continue
		}
		if seen != nil {
			if ok, err := seen(ctx, t); err == nil && ok {
				continue
			}
		}
		return t
	}
	return nil
}
