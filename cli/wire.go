package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"clipbot/config"
	"clipbot/curation"
	"clipbot/history"
	"clipbot/logger"
	"clipbot/pipeline"
	"clipbot/publish"
	"clipbot/render"
	"clipbot/scriptgen"
	"clipbot/speech"
	"clipbot/stock"
	"clipbot/storage"

	"github.com/redis/go-redis/v9"
)

// app is a fully wired pipeline plus what has to be closed afterwards.
type app struct {
	settings *config.Settings
	state    *pipeline.Manager
	runner   *pipeline.Runner
	finder   *stock.Finder
	store    curation.Store
	closers  []func() error
}

type buildOptions struct {
	// poll runs the Telegram poller inside the runner while waiting for curation
	poll bool
	// noUpload skips building the YouTube client
	noUpload bool
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn("close failed", "error", err)
		}
	}
}

func buildApp(ctx context.Context, s *config.Settings, opts buildOptions, l *logger.Logger) (*app, error) {
	a := &app{settings: s, state: pipeline.NewManager()}

	model, err := scriptgen.NewModelFromEnv(ctx, os.Getenv("LLM_PROVIDER"))
	if err != nil {
		return nil, fmt.Errorf("failed to build text model: %w", err)
	}
	synth, err := speech.NewFromEnv(ctx, os.Getenv("TTS_ENGINE"), s.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to build speech engine: %w", err)
	}
	a.finder = buildFinder(l)

	var publisher pipeline.Publisher
	if !opts.noUpload {
		up, err := publish.NewUploaderFromEnv(ctx, l)
		if err != nil {
			l.Warn("⚠️ YouTube upload disabled", "error", err)
		} else {
			publisher = up
		}
	}

	hist, closeHist := buildHistory(ctx, l)
	if closeHist != nil {
		a.closers = append(a.closers, closeHist)
	}

	var cur *pipeline.Curation
	msg, chatID, err := buildMessenger()
	switch {
	case err == nil:
		store, closeStore := buildStore()
		if closeStore != nil {
			a.closers = append(a.closers, closeStore)
		}
		a.store = store
		cur = &pipeline.Curation{
			Store:     store,
			Messenger: msg,
			ChatID:    chatID,
			Timeout:   s.Curation.Timeout.Duration,
			Every:     s.Curation.PollInterval.Duration,
			SendDelay: config.CurationSendDelay,
			Poll:      opts.poll,
		}
	case errors.Is(err, errNoTelegram):
		if s.Curation.Enabled {
			l.Warn("⚠️ curation enabled but Telegram is not configured")
		}
	default:
		return nil, err
	}

	archiver, err := storage.NewArchiver(ctx, storage.ArchiveConfigFromEnv(), l)
	if err != nil {
		l.Warn("⚠️ S3 archive disabled", "error", err)
		archiver = nil
	}

	a.runner = pipeline.NewRunner(pipeline.Deps{
		Settings:   s,
		Topics:     buildTopicSource(s, hist, l),
		Writer:     scriptgen.NewWriter(model, s.Language),
		Speech:     synth,
		Finder:     a.finder,
		Renderer:   render.NewRenderer(l),
		Publisher:  publisher,
		History:    hist,
		Curation:   cur,
		Archiver:   archiver,
		Log:        l,
		RunLogPath: config.RunLogFile,
		AssetsDir:  config.AssetsDir,
		VideosDir:  config.VideosDir,
	}, a.state)
	return a, nil
}

func buildFinder(l *logger.Logger) *stock.Finder {
	var search stock.Searcher
	if key := os.Getenv("PEXELS_API_KEY"); key != "" {
		search = stock.NewPexels(key)
	} else {
		l.Warn("⚠️ PEXELS_API_KEY not set, using local fallback images only")
	}
	return stock.NewFinder(search, config.GetEnvOrDefault("FALLBACK_DIR", config.FallbackDir), l)
}

// buildHistory uses RedisBloom when REDIS_ADDR is set and the run log otherwise.
func buildHistory(ctx context.Context, l *logger.Logger) (history.History, func() error) {
	fallback := history.RunLogHistory{
		Path:   config.RunLogFile,
		Window: config.GetEnvInt("HISTORY_WINDOW", 50),
	}
	if os.Getenv("REDIS_ADDR") == "" {
		return fallback, nil
	}
	rb, err := history.NewRedisBloom(ctx, history.BloomConfigFromEnv())
	if err != nil {
		l.Warn("⚠️ RedisBloom unavailable, using run log history", "error", err)
		return fallback, nil
	}
	l.Info("🧠 topic history in RedisBloom")
	return rb, rb.Close
}

func buildTopicSource(s *config.Settings, hist history.History, l *logger.Logger) pipeline.TopicSource {
	if s.Source == config.SourceNews {
		return pipeline.NewNewsSource(s.Feeds, hist, l)
	}
	return pipeline.NewListSource(s.Topics, hist, l)
}

var errNoTelegram = errors.New("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required")

func buildMessenger() (*curation.Telegram, int64, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	rawChat := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || rawChat == "" {
		return nil, 0, errNoTelegram
	}
	chatID, err := parseChatID(rawChat)
	if err != nil {
		return nil, 0, err
	}
	msg, err := curation.NewTelegram(token, chatID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to connect Telegram bot: %w", err)
	}
	return msg, chatID, nil
}

func parseChatID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q", raw)
	}
	return id, nil
}

// buildStore keeps the curation record in Redis when CURATION_STORE=redis,
// in the shared JSON file otherwise.
func buildStore() (curation.Store, func() error) {
	if !strings.EqualFold(os.Getenv("CURATION_STORE"), "redis") {
		return curation.NewFileStore(config.GetEnvOrDefault("CURATION_FILE", config.CurationFile)), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.GetEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		Password: config.GetEnvOrDefault("REDIS_PASS", ""),
		DB:       config.GetEnvInt("REDIS_DB", 0),
	})
	return curation.NewRedisStore(client, os.Getenv("CURATION_REDIS_KEY")), client.Close
}

// curateFlag turns an explicitly set --curate into an override.
func curateFlag(changed, value bool) *bool {
	if !changed {
		return nil
	}
	return &value
}
