package curation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"clipbot/logger"
	"clipbot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCurator(t *testing.T) (*Curator, *FileStore, *fakeMessenger) {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "curacao_pendente.json"))
	msg := &fakeMessenger{}
	return NewCurator(store, msg, logger.Nop(), 0), store, msg
}

func TestRequestSendsEverySegment(t *testing.T) {
	c, store, msg := newTestCurator(t)
	ctx := context.Background()

	require.NoError(t, c.Request(ctx, "run-1", "Oceanos", testSegments(3)))

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaiting, s.Status)
	assert.Len(t, s.Segments, 3)

	assert.Len(t, msg.media, 3)
	require.Len(t, msg.buttons, 3)
	assert.Equal(t, []Button{
		{Text: "✅ Aprovar", Data: "aprovar_2"},
		{Text: "❌ Reprovar", Data: "reprovar_2"},
		{Text: "🔄 Buscar outra", Data: "buscar_2"},
	}, msg.buttons[1])
	assert.Contains(t, msg.texts[0], "3 segmentos")
	assert.Contains(t, msg.lastText(), "/aprovar_todos")
}

func TestRequestFallsBackToTextWhenMediaFails(t *testing.T) {
	c, _, msg := newTestCurator(t)
	msg.failMedia = true

	require.NoError(t, c.Request(context.Background(), "run-1", "t", testSegments(1)))
	// header, segment text, help
	require.Len(t, msg.texts, 3)
	assert.Contains(t, msg.texts[1], "https://img/orig.jpg")
}

func TestWaitReturnsApprovedSegments(t *testing.T) {
	c, store, _ := newTestCurator(t)
	ctx := context.Background()
	require.NoError(t, c.Request(ctx, "run-1", "t", testSegments(2)))

	go func() {
		time.Sleep(30 * time.Millisecond)
		_, _ = store.Update(ctx, func(s *Session) error {
			return s.Replace(0, types.Media{URL: "https://x/new.mp4", Type: types.MediaVideo})
		})
		_, _ = ApproveAll(ctx, store)
	}()

	segs, err := c.Wait(ctx, 5*time.Second, 10*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, "https://x/new.mp4", segs[0].Media.URL)
	assert.True(t, segs[0].Modified)
}

func TestWaitCancelled(t *testing.T) {
	c, store, _ := newTestCurator(t)
	ctx := context.Background()
	require.NoError(t, c.Request(ctx, "run-1", "t", testSegments(1)))
	_, err := Cancel(ctx, store)
	require.NoError(t, err)

	_, err = c.Wait(ctx, time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestWaitTimeoutMarksSession(t *testing.T) {
	c, store, msg := newTestCurator(t)
	ctx := context.Background()
	require.NoError(t, c.Request(ctx, "run-1", "t", testSegments(1)))

	_, err := c.Wait(ctx, 30*time.Millisecond, 10*time.Millisecond)
	assert.ErrorIs(t, err, ErrTimeout)

	s, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusTimeout, s.Status)
	assert.Contains(t, msg.lastText(), "esgotado")
}

func TestWaitHonoursContext(t *testing.T) {
	c, _, _ := newTestCurator(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Wait(ctx, time.Minute, 10*time.Millisecond)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNotifyPublished(t *testing.T) {
	c, _, msg := newTestCurator(t)
	require.NoError(t, c.NotifyPublished(context.Background(), types.RunRecord{
		Title: "Oceanos", Duration: 61.25, URL: "https://www.youtube.com/watch?v=abc",
	}))
	assert.Contains(t, msg.lastText(), "61.2s")
	assert.Contains(t, msg.lastText(), "watch?v=abc")
}
