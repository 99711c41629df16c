package stock

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"clipbot/logger"
	"clipbot/types"
)

// ErrNoMedia means no stock result and no local fallback image exist.
var ErrNoMedia = errors.New("no media found")

const candidatesPerQuery = 5

// Searcher is the subset of the Pexels client the finder needs.
type Searcher interface {
	SearchPhotos(ctx context.Context, query string, perPage, page int, orientation string) ([]Photo, error)
	SearchVideos(ctx context.Context, query string, perPage, page int, orientation string) ([]Video, error)
}

// Target describes the frame media is chosen for.
type Target struct {
	Width       int
	Height      int
	PreferVideo bool
}

func (t Target) orientation() string {
	if t.Height > t.Width {
		return "portrait"
	}
	return "landscape"
}

// Finder chooses media for segments.
type Finder struct {
	search      Searcher
	fallbackDir string
	log         *logger.Logger
	rng         *rand.Rand
}

func NewFinder(search Searcher, fallbackDir string, log *logger.Logger) *Finder {
	return &Finder{
		search:      search,
		fallbackDir: fallbackDir,
		log:         log,
		rng:         rand.New(rand.NewSource(rand.Int63())),
	}
}

// ForSegment returns the attempt-th candidate for seg: preferred kind first, then the
// other kind, then a random local image.
func (f *Finder) ForSegment(ctx context.Context, seg types.Segment, target Target, attempt int) (types.Media, error) {
	kinds := []types.MediaType{types.MediaPhoto, types.MediaVideo}
	if target.PreferVideo {
		kinds = []types.MediaType{types.MediaVideo, types.MediaPhoto}
	}

	n := attempt
	if f.search != nil {
		for _, kind := range kinds {
			candidates, err := f.candidates(ctx, kind, seg.Keywords, target)
			if err != nil {
				if ctx.Err() != nil {
					return types.Media{}, ctx.Err()
				}
				f.log.Warn("stock search failed", "segment", seg.Index, "kind", kind, "error", err)
				continue
			}
			if n < len(candidates) {
				return candidates[n], nil
			}
			n -= len(candidates)
		}
	}

	return f.Fallback()
}

func (f *Finder) candidates(ctx context.Context, kind types.MediaType, keywords []string, target Target) ([]types.Media, error) {
	queries := []string{strings.Join(keywords, " ")}
	if len(keywords) > 1 {
		queries = append(queries, keywords...)
	}

	var lastErr error
	for _, q := range queries {
		if strings.TrimSpace(q) == "" {
			continue
		}
		var found []types.Media
		var err error
		if kind == types.MediaVideo {
			found, err = f.videos(ctx, q, candidatesPerQuery, 1, target)
		} else {
			found, err = f.photos(ctx, q, candidatesPerQuery, 1, target)
		}
		if err != nil {
			lastErr = err
			continue
		}
		if len(found) > 0 {
			return found, nil
		}
	}
	return nil, lastErr
}

func (f *Finder) photos(ctx context.Context, query string, perPage, page int, target Target) ([]types.Media, error) {
	photos, err := f.search.SearchPhotos(ctx, query, perPage, page, target.orientation())
	if err != nil {
		return nil, err
	}
	out := make([]types.Media, 0, len(photos))
	for _, p := range photos {
		out = append(out, types.Media{
			URL:     p.BestURL(target.Width, target.Height),
			Type:    types.MediaPhoto,
			Preview: p.Src.Medium,
			Width:   p.Width,
			Height:  p.Height,
			Credit:  p.Photographer,
		})
	}
	return out, nil
}

func (f *Finder) videos(ctx context.Context, query string, perPage, page int, target Target) ([]types.Media, error) {
	videos, err := f.search.SearchVideos(ctx, query, perPage, page, target.orientation())
	if err != nil {
		return nil, err
	}
	out := make([]types.Media, 0, len(videos))
	for _, v := range videos {
		file, ok := v.BestFile(target.Width, target.Height)
		if !ok {
			continue
		}
		out = append(out, types.Media{
			URL:      file.Link,
			Type:     types.MediaVideo,
			Preview:  v.Image,
			Width:    file.Width,
			Height:   file.Height,
			Duration: float64(v.Duration),
			Credit:   v.User.Name,
		})
	}
	return out, nil
}

// Photos splits quantity evenly across keywords and returns every photo found.
func (f *Finder) Photos(ctx context.Context, keywords []string, quantity int, target Target) ([]types.Media, error) {
	if len(keywords) == 0 || f.search == nil {
		return nil, ErrNoMedia
	}
	perKeyword := max(quantity/len(keywords), 1)

	var out []types.Media
	for _, kw := range keywords {
		found, err := f.photos(ctx, kw, perKeyword, 1, target)
		if err != nil {
			f.log.Warn("photo search failed", "keyword", kw, "error", err)
			continue
		}
		out = append(out, found...)
	}
	if len(out) == 0 {
		return nil, ErrNoMedia
	}
	return out, nil
}

// Fallback picks a random image from the local fallback directory.
func (f *Finder) Fallback() (types.Media, error) {
	entries, err := os.ReadDir(f.fallbackDir)
	if err != nil {
		return types.Media{}, fmt.Errorf("%w: fallback dir: %v", ErrNoMedia, err)
	}

	var images []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, filepath.Join(f.fallbackDir, e.Name()))
		}
	}
	if len(images) == 0 {
		return types.Media{}, ErrNoMedia
	}

	path := images[f.rng.Intn(len(images))]
	return types.Media{URL: path, Path: path, Type: types.MediaLocalPhoto}, nil
}

// Download fetches url into path.
func Download(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to download: status %d", resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp.Body)
	return err
}

// Bound is a Finder fixed to one target frame.
type Bound struct {
	finder *Finder
	target Target
}

// Bind fixes the target so the finder can serve per-segment replacement requests.
func (f *Finder) Bind(target Target) *Bound {
	return &Bound{finder: f, target: target}
}

func (b *Bound) Next(ctx context.Context, seg types.Segment, attempt int) (types.Media, error) {
	return b.finder.ForSegment(ctx, seg, b.target, attempt)
}

func (b *Bound) Fallback() (types.Media, error) {
	return b.finder.Fallback()
}
