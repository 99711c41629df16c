package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Topic is the subject of one video: either a configured theme or a news item.
type Topic struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Source      string    `json:"source"` // "topics" or a feed URL
	URL         string    `json:"url,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Body        string    `json:"body,omitempty"`
	Author      string    `json:"author,omitempty"`
	ImageURL    string    `json:"image_url,omitempty"`
	Keywords    []string  `json:"keywords,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	FetchedAt   time.Time `json:"fetched_at"`

	ExtractionError string `json:"extraction_error,omitempty"`
}

// IsNews reports whether the topic came from a feed.
func (t *Topic) IsNews() bool {
	return t.URL != ""
}

// GenerateID creates a short, stable ID by hashing the provided string input
func GenerateID(input string) string {
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}
