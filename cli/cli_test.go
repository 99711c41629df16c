package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"clipbot/config"
	"clipbot/curation"
	"clipbot/history"
	"clipbot/logger"
	"clipbot/pipeline"
	"clipbot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"run", "serve", "curate", "worker", "enqueue", "upload", "topics"} {
		assert.Contains(t, names, want)
	}
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"espaço", "ciência"}, parseTags(" espaço, ,ciência,"))
	assert.Nil(t, parseTags(""))
}

func TestEnsureFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "video.mp4")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.NoError(t, ensureFileExists(file))
	assert.Error(t, ensureFileExists(dir))
	assert.Error(t, ensureFileExists(filepath.Join(dir, "missing.mp4")))
	assert.Error(t, ensureFileExists(""))
}

func TestParseChatID(t *testing.T) {
	id, err := parseChatID(" -100123 ")
	require.NoError(t, err)
	assert.Equal(t, int64(-100123), id)

	_, err = parseChatID("@channel")
	assert.Error(t, err)
}

func TestCurateFlag(t *testing.T) {
	assert.Nil(t, curateFlag(false, true))

	got := curateFlag(true, false)
	require.NotNil(t, got)
	assert.False(t, *got)
}

func TestValidateProfile(t *testing.T) {
	assert.NoError(t, validateProfile(""))
	assert.NoError(t, validateProfile("short"))
	assert.Error(t, validateProfile("square"))
}

func TestBuildMessengerRequiresTelegram(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	_, _, err := buildMessenger()
	assert.ErrorIs(t, err, errNoTelegram)
}

func TestBuildHistoryWithoutRedis(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("HISTORY_WINDOW", "7")

	h, closer := buildHistory(context.Background(), logger.Nop())
	assert.Nil(t, closer)
	assert.Equal(t, history.RunLogHistory{Path: config.RunLogFile, Window: 7}, h)
}

func TestBuildStoreDefaultsToFile(t *testing.T) {
	t.Setenv("CURATION_STORE", "")
	t.Setenv("CURATION_FILE", filepath.Join(t.TempDir(), "pending.json"))

	store, closer := buildStore()
	assert.Nil(t, closer)
	assert.IsType(t, &curation.FileStore{}, store)
}

func TestBuildTopicSource(t *testing.T) {
	log := logger.Nop()
	h := history.NewMemory()

	news := buildTopicSource(&config.Settings{Source: config.SourceNews, Feeds: []string{"g1"}}, h, log)
	assert.IsType(t, &pipeline.NewsSource{}, news)

	list := buildTopicSource(&config.Settings{Source: config.SourceTopics, Topics: []string{"Oceanos"}}, h, log)
	assert.IsType(t, &pipeline.ListSource{}, list)
}

func TestPrintTopicsMarksSeen(t *testing.T) {
	ctx := context.Background()
	h := history.NewMemory()
	used := pipeline.ManualTopic("Buracos negros")
	require.NoError(t, h.Add(ctx, used))

	var out bytes.Buffer
	printTopics(ctx, &out, []*types.Topic{
		used,
		{Title: "Vulcões", URL: "https://example.com/vulcoes", Body: "lava"},
	}, h)

	assert.Contains(t, out.String(), "✓  1. Buracos negros")
	assert.Contains(t, out.String(), "   2. Vulcões")
	assert.Contains(t, out.String(), "https://example.com/vulcoes")
	assert.Contains(t, out.String(), "4 chars of text")
}
