package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"clipbot/config"
	"clipbot/curation"
	"clipbot/history"
	"clipbot/logger"
	"clipbot/render"
	"clipbot/stock"
	"clipbot/types"

	"github.com/stretchr/testify/require"
)

const testScript = "O oceano cobre grande parte do nosso planeta azul. " +
	"As baleias cantam músicas complexas durante meses inteiros. " +
	"Os polvos têm três corações e sangue azul brilhante."

type fakeWriter struct {
	block   chan struct{}
	started chan struct{}
	metaErr error
	minutes []float64
}

func (f *fakeWriter) Script(ctx context.Context, topic *types.Topic, minutes float64, short bool) (string, error) {
	f.minutes = append(f.minutes, minutes)
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return testScript, nil
}

func (f *fakeWriter) Metadata(_ context.Context, _ string) (*types.VideoMetadata, error) {
	if f.metaErr != nil {
		return nil, f.metaErr
	}
	return &types.VideoMetadata{Title: "Segredos do oceano", Description: "Fatos do mar", Tags: []string{"oceano"}}, nil
}

type fakeSpeech struct{}

func (fakeSpeech) Synthesize(_ context.Context, _ string, out string) error {
	return os.WriteFile(out, []byte("mp3"), 0644)
}

type fakeRenderer struct {
	jobs []render.Job
}

func (f *fakeRenderer) Render(_ context.Context, job render.Job) (string, error) {
	f.jobs = append(f.jobs, job)
	return job.Output, os.WriteFile(job.Output, []byte("mp4"), 0644)
}

func (f *fakeRenderer) Thumbnail(_ context.Context, _ []types.Segment, _ string, _ render.Profile, _ string, out string) (string, error) {
	return out, os.WriteFile(out, []byte("jpg"), 0644)
}

type fakePublisher struct {
	meta   []types.VideoMetadata
	thumbs []string
	err    error
}

func (f *fakePublisher) Upload(_ context.Context, _ string, meta types.VideoMetadata) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.meta = append(f.meta, meta)
	return "vid123", nil
}

func (f *fakePublisher) SetThumbnail(_ context.Context, _ string, path string) error {
	f.thumbs = append(f.thumbs, path)
	return nil
}

type fakeSearcher struct{}

func (fakeSearcher) SearchPhotos(context.Context, string, int, int, string) ([]stock.Photo, error) {
	return []stock.Photo{{ID: 1, Width: 1920, Height: 1080, Src: stock.PhotoSource{Original: "https://img/1.jpg"}}}, nil
}

func (fakeSearcher) SearchVideos(context.Context, string, int, int, string) ([]stock.Video, error) {
	return nil, nil
}

type chatLog struct {
	mu    sync.Mutex
	texts []string
}

func (c *chatLog) SendText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, text)
	return nil
}

func (c *chatLog) SendMedia(context.Context, types.Media, string) error { return nil }

func (c *chatLog) SendButtons(context.Context, string, []curation.Button) error { return nil }

func (c *chatLog) AnswerCallback(context.Context, string, string) error { return nil }

func (c *chatLog) Updates(ctx context.Context, _ int, _ int) ([]curation.Update, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (c *chatLog) all() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.texts...)
}

type testEnv struct {
	deps      Deps
	writer    *fakeWriter
	renderer  *fakeRenderer
	publisher *fakePublisher
	history   *history.Memory
	downloads []string
	dir       string
}

func newTestEnv(t *testing.T, profile string) *testEnv {
	t.Helper()
	dir := t.TempDir()
	fallback := filepath.Join(dir, "fallback")
	require.NoError(t, os.MkdirAll(fallback, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(fallback, "default.jpg"), []byte("jpg"), 0644))

	env := &testEnv{
		writer:    &fakeWriter{},
		renderer:  &fakeRenderer{},
		publisher: &fakePublisher{},
		history:   history.NewMemory(),
		dir:       dir,
	}
	log := logger.Nop()
	env.deps = Deps{
		Settings: &config.Settings{
			Topics:        []string{"Curiosidades sobre o oceano"},
			DurationMin:   3,
			DurationMax:   3,
			Language:      "pt-BR",
			Profile:       profile,
			CategoryID:    "27",
			PrivacyStatus: "public",
		},
		Writer:     env.writer,
		Speech:     fakeSpeech{},
		Finder:     stock.NewFinder(fakeSearcher{}, fallback, log),
		Renderer:   env.renderer,
		Publisher:  env.publisher,
		History:    env.history,
		Log:        log,
		RunLogPath: filepath.Join(dir, "runs.json"),
		AssetsDir:  filepath.Join(dir, "assets"),
		VideosDir:  filepath.Join(dir, "videos"),
		Probe:      func(string) (float64, error) { return 30, nil },
		Download: func(_ context.Context, url, path string) error {
			env.downloads = append(env.downloads, url)
			if url == "" {
				return errors.New("empty url")
			}
			return os.WriteFile(path, []byte("media"), 0644)
		},
	}
	env.deps.Topics = NewListSource(env.deps.Settings.Topics, env.history, log)
	return env
}
