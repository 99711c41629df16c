// Package history tracks which topics were already turned into videos.
package history

import (
	"context"
	"sync"

	"clipbot/runlog"
	"clipbot/types"
)

// History answers whether a topic was used before.
type History interface {
	Seen(ctx context.Context, t *types.Topic) (bool, error)
	Add(ctx context.Context, t *types.Topic) error
}

// RunLogHistory treats the topics of the last Window run-log entries as seen.
// Add is a no-op: the pipeline appends to the run log itself.
type RunLogHistory struct {
	Path   string
	Window int
}

func (h RunLogHistory) Seen(_ context.Context, t *types.Topic) (bool, error) {
	records, err := runlog.Recent(h.Path, h.Window)
	if err != nil {
		return false, err
	}
	title := normalizeTitle(t.Title)
	for _, r := range records {
		if r.TopicID != "" && r.TopicID == t.ID {
			return true, nil
		}
		if normalizeTitle(r.Topic) == title {
			return true, nil
		}
	}
	return false, nil
}

func (h RunLogHistory) Add(context.Context, *types.Topic) error { return nil }

// Memory is an in-process History.
type Memory struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{seen: make(map[string]struct{})}
}

func (m *Memory) Seen(_ context.Context, t *types.Topic) (bool, error) {
	hash, err := NormalizeAndHash(t)
	if err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.seen[hash]
	return ok, nil
}

func (m *Memory) Add(_ context.Context, t *types.Topic) error {
	hash, err := NormalizeAndHash(t)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.seen[hash] = struct{}{}
	m.mu.Unlock()
	return nil
}
