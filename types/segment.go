package types

import (
	"path"
	"strings"
)

// MediaType is the kind of visual attached to a segment.
type MediaType string

const (
	MediaVideo      MediaType = "video"
	MediaPhoto      MediaType = "photo"
	MediaLocalPhoto MediaType = "local_photo"
)

// IsPhoto reports whether the media renders as a still image.
func (m MediaType) IsPhoto() bool {
	return m == MediaPhoto || m == MediaLocalPhoto
}

// Media is a stock photo/video (or local fallback image) selected for a segment.
type Media struct {
	URL      string    `json:"url"`
	Type     MediaType `json:"type"`
	Preview  string    `json:"preview,omitempty"`
	Width    int       `json:"width,omitempty"`
	Height   int       `json:"height,omitempty"`
	Duration float64   `json:"duration,omitempty"`
	Credit   string    `json:"credit,omitempty"`
	Path     string    `json:"path,omitempty"` // local file once downloaded
}

// Segment is a sentence-bounded slice of the narration with its timing and media.
type Segment struct {
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Words    int      `json:"words"`
	Start    float64  `json:"start"`
	Duration float64  `json:"duration"`
	Keywords []string `json:"keywords,omitempty"`
	Media    Media    `json:"media"`
	Modified bool     `json:"modified,omitempty"`
}

// End returns the segment's end time in seconds.
func (s Segment) End() float64 {
	return s.Start + s.Duration
}

var videoExtensions = []string{".mp4", ".mov", ".webm", ".m4v"}

// MediaTypeFromURL guesses the media type of a user-supplied URL from its extension.
func MediaTypeFromURL(rawURL string) MediaType {
	p := strings.ToLower(rawURL)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ext := path.Ext(p)
	for _, v := range videoExtensions {
		if ext == v {
			return MediaVideo
		}
	}
	return MediaPhoto
}
