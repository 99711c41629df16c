package curation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreRoundTripAndWireFormat(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "curacao_pendente.json"))

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNoSession)

	require.NoError(t, store.Save(ctx, NewSession("run-1", "Oceanos & mares", testSegments(2), time.Now())))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	raw := string(data)
	assert.Contains(t, raw, `"status": "aguardando"`)
	assert.Contains(t, raw, `"current_segment_index": 0`)
	assert.Contains(t, raw, `"segmentos"`)
	assert.Contains(t, raw, "Oceanos & mares")

	s, err := store.Update(ctx, func(s *Session) error { return s.Approve(0) })
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentSegmentIndex)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, loaded.Approvals)
}

func TestFileStoreUpdateErrorDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "c.json"))
	require.NoError(t, store.Save(ctx, NewSession("run-1", "", testSegments(1), time.Now())))

	_, err := store.Update(ctx, func(s *Session) error {
		s.Status = StatusCancelled
		return errors.New("abort")
	})
	assert.Error(t, err)

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaiting, loaded.Status)
}

func TestFileStoreConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "c.json"))
	require.NoError(t, store.Save(ctx, NewSession("run-1", "", testSegments(20), time.Now())))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Update(ctx, func(s *Session) error { return s.Approve(i) })
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Approvals, 20)
	assert.Equal(t, StatusApproved, loaded.Status)

	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".curation-"), "temp file left behind")
	}
}
