package history

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"clipbot/types"
)

// NormalizeAndHash normalizes the topic's URL and title and returns a SHA-256 hex hash.
// URL: fragment and tracking params (utm_*, fbclid, gclid) removed, host lowercased.
// Title: whitespace collapsed and lowercased.
// The result is sha256(normalizedURL + "|" + normalizedTitle).
func NormalizeAndHash(topic *types.Topic) (string, error) {
	if topic == nil {
		return "", fmt.Errorf("nil topic")
	}

	combined := normalizeURL(topic.URL) + "|" + normalizeTitle(topic.Title)

	h := sha256.Sum256([]byte(combined))
	return hex.EncodeToString(h[:]), nil
}

func normalizeTitle(t string) string {
	return strings.Join(strings.Fields(strings.ToLower(t)), " ")
}

func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}
