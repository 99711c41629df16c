package newsfeeds

// Default configuration values
const (
	DefaultFeedPreset = "g1"
	DefaultCount      = 10
)

// FeedPresets maps friendly names to RSS feed URLs
var FeedPresets = map[string]string{
	"g1":      "https://g1.globo.com/rss/g1/",
	"g1-tech": "https://g1.globo.com/rss/g1/tecnologia/",
	"bbc-pt":  "https://feeds.bbci.co.uk/portuguese/rss.xml",
	"hn":      "https://hnrss.org/newest",
	"tr":      "https://www.technologyreview.com/feed/",
}

// ResolveFeedURL resolves a feed identifier to a URL
// If the input is a preset name, returns the corresponding URL
// Otherwise, returns the input as-is (assuming it's a direct URL)
func ResolveFeedURL(feedInput string) string {
	if url, exists := FeedPresets[feedInput]; exists {
		return url
	}
	return feedInput
}
