// Package stock finds stock photos and videos for narration segments.
package stock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const DefaultBaseURL = "https://api.pexels.com"

// Pexels is a minimal client for the Pexels search API.
type Pexels struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewPexels(apiKey string) *Pexels {
	return &Pexels{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// WithBaseURL points the client at another host. Used in tests.
func (p *Pexels) WithBaseURL(base string) *Pexels {
	p.baseURL = base
	return p
}

type PhotoSource struct {
	Original  string `json:"original"`
	Large2x   string `json:"large2x"`
	Large     string `json:"large"`
	Medium    string `json:"medium"`
	Portrait  string `json:"portrait"`
	Landscape string `json:"landscape"`
}

type Photo struct {
	ID           int64       `json:"id"`
	Width        int         `json:"width"`
	Height       int         `json:"height"`
	URL          string      `json:"url"`
	Photographer string      `json:"photographer"`
	Src          PhotoSource `json:"src"`
}

type VideoFile struct {
	ID       int64  `json:"id"`
	Quality  string `json:"quality"`
	FileType string `json:"file_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Link     string `json:"link"`
}

type Video struct {
	ID       int64  `json:"id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Duration int    `json:"duration"`
	URL      string `json:"url"`
	Image    string `json:"image"`
	User     struct {
		Name string `json:"name"`
	} `json:"user"`
	VideoFiles []VideoFile `json:"video_files"`
}

type photoResponse struct {
	Photos       []Photo `json:"photos"`
	TotalResults int     `json:"total_results"`
}

type videoResponse struct {
	Videos       []Video `json:"videos"`
	TotalResults int     `json:"total_results"`
}

// SearchPhotos queries /v1/search. orientation may be empty, "portrait" or "landscape".
func (p *Pexels) SearchPhotos(ctx context.Context, query string, perPage, page int, orientation string) ([]Photo, error) {
	var resp photoResponse
	if err := p.get(ctx, "/v1/search", query, perPage, page, orientation, &resp); err != nil {
		return nil, err
	}
	return resp.Photos, nil
}

// SearchVideos queries /videos/search.
func (p *Pexels) SearchVideos(ctx context.Context, query string, perPage, page int, orientation string) ([]Video, error) {
	var resp videoResponse
	if err := p.get(ctx, "/videos/search", query, perPage, page, orientation, &resp); err != nil {
		return nil, err
	}
	return resp.Videos, nil
}

func (p *Pexels) get(ctx context.Context, path, query string, perPage, page int, orientation string, out any) error {
	params := url.Values{}
	params.Set("query", query)
	params.Set("per_page", strconv.Itoa(max(perPage, 1)))
	params.Set("page", strconv.Itoa(max(page, 1)))
	if orientation != "" {
		params.Set("orientation", orientation)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", p.apiKey)

	resp, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("pexels request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pexels %s returned status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode pexels response: %w", err)
	}
	return nil
}

// BestFile picks the mp4 rendition closest to width x height.
func (v Video) BestFile(width, height int) (VideoFile, bool) {
	var best VideoFile
	bestScore := -1
	for _, f := range v.VideoFiles {
		if f.Link == "" || (f.FileType != "" && f.FileType != "video/mp4") {
			continue
		}
		score := abs(f.Width-width) + abs(f.Height-height)
		// wrong orientation costs a full frame
		if (f.Width > f.Height) != (width > height) {
			score += width + height
		}
		if bestScore < 0 || score < bestScore {
			best, bestScore = f, score
		}
	}
	return best, bestScore >= 0
}

// BestURL picks a photo rendition for the target orientation.
func (p Photo) BestURL(width, height int) string {
	candidates := []string{p.Src.Large2x, p.Src.Original, p.Src.Large}
	if max(width, height) <= 1280 {
		candidates = []string{p.Src.Large, p.Src.Large2x, p.Src.Original}
	}
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return p.URL
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
