// Package pipeline runs one video from topic to upload and tracks its progress.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"clipbot/config"
	"clipbot/curation"
	"clipbot/history"
	"clipbot/logger"
	"clipbot/publish"
	"clipbot/render"
	"clipbot/runlog"
	"clipbot/scriptgen"
	"clipbot/speech"
	"clipbot/stock"
	"clipbot/storage"
	"clipbot/types"

	"github.com/google/uuid"
)

// ErrBusy is returned when a run is already in progress.
var ErrBusy = errors.New("a run is already in progress")

type ScriptWriter interface {
	Script(ctx context.Context, topic *types.Topic, minutes float64, short bool) (string, error)
	Metadata(ctx context.Context, script string) (*types.VideoMetadata, error)
}

type VideoRenderer interface {
	Render(ctx context.Context, job render.Job) (string, error)
	Thumbnail(ctx context.Context, segments []types.Segment, title string, p render.Profile, workDir, out string) (string, error)
}

type Publisher interface {
	Upload(ctx context.Context, path string, meta types.VideoMetadata) (string, error)
	SetThumbnail(ctx context.Context, videoID, path string) error
}

// Curation holds the chat review dependencies.
type Curation struct {
	Store     curation.Store
	Messenger curation.Messenger
	ChatID    int64
	Timeout   time.Duration
	Every     time.Duration
	SendDelay time.Duration
	// Poll runs the chat poller while waiting. Leave false when a separate
	// "curate" process owns the bot.
	Poll bool
}

// Deps wires the runner. Publisher, Curation, History and Archiver are optional.
type Deps struct {
	Settings  *config.Settings
	Topics    TopicSource
	Writer    ScriptWriter
	Speech    speech.Synthesizer
	Finder    *stock.Finder
	Renderer  VideoRenderer
	Publisher Publisher
	History   history.History
	Curation  *Curation
	Archiver  *storage.Archiver
	Log       *logger.Logger

	RunLogPath string
	AssetsDir  string
	VideosDir  string

	Probe    func(path string) (float64, error)
	Download func(ctx context.Context, url, path string) error
}

// Request starts a run. Empty fields fall back to the settings.
type Request struct {
	ID         string `json:"id,omitempty"`
	Profile    string `json:"profile,omitempty"`
	Topic      string `json:"topic,omitempty"`
	Curate     *bool  `json:"curate,omitempty"`
	SkipUpload bool   `json:"skip_upload,omitempty"`
}

// Result describes a finished run.
type Result struct {
	Record    types.RunRecord
	VideoPath string
	Thumbnail string
	Metadata  types.VideoMetadata
}

// Runner executes the pipeline one run at a time.
type Runner struct {
	deps    Deps
	state   *Manager
	running atomic.Bool
	rng     *rand.Rand
}

func NewRunner(deps Deps, state *Manager) *Runner {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	if deps.Settings == nil {
		deps.Settings = &config.Settings{Language: "pt-BR", Profile: "long", DurationMin: 8, DurationMax: 8}
	}
	if deps.Finder == nil {
		deps.Finder = stock.NewFinder(nil, config.FallbackDir, deps.Log)
	}
	if deps.Probe == nil {
		deps.Probe = speech.Duration
	}
	if deps.Download == nil {
		deps.Download = stock.Download
	}
	if deps.RunLogPath == "" {
		deps.RunLogPath = config.RunLogFile
	}
	if deps.AssetsDir == "" {
		deps.AssetsDir = config.AssetsDir
	}
	if deps.VideosDir == "" {
		deps.VideosDir = config.VideosDir
	}
	if state == nil {
		state = NewManager()
	}
	return &Runner{deps: deps, state: state, rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

func (r *Runner) State() *Manager { return r.state }

// Busy reports whether a run is in progress.
func (r *Runner) Busy() bool { return r.running.Load() }

// Reserve claims the run slot without starting a run. A successful Reserve
// must be followed by RunReserved or Release.
func (r *Runner) Reserve() bool { return r.running.CompareAndSwap(false, true) }

// Release gives back a slot taken with Reserve.
func (r *Runner) Release() { r.running.Store(false) }

// Run executes every step for one video. A cancelled or timed-out curation
// returns curation.ErrCancelled or curation.ErrTimeout and leaves the state "cancelled".
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if !r.Reserve() {
		return nil, ErrBusy
	}
	return r.RunReserved(ctx, req)
}

// RunReserved is Run for a caller that already holds the slot. The slot is
// released when the run ends.
func (r *Runner) RunReserved(ctx context.Context, req Request) (*Result, error) {
	defer r.Release()

	runID := req.ID
	if runID == "" {
		runID = uuid.NewString()
	}
	profileName := firstNonEmpty(req.Profile, r.deps.Settings.Profile)
	r.state.Begin(runID, profileName)
	log := r.deps.Log.With("run_id", runID)

	workDir := filepath.Join(r.deps.AssetsDir, runID)
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			log.Warn("failed to clean work dir", "dir", workDir, "error", err)
		}
	}()

	res, err := r.run(ctx, req, runID, profileName, workDir, log)
	switch {
	case err == nil:
		r.state.Complete(res.Record.URL)
		log.Info("🏁 run complete", "title", res.Record.Title, "url", res.Record.URL)
	case errors.Is(err, curation.ErrCancelled), errors.Is(err, curation.ErrTimeout):
		r.state.SetCancelled(err.Error())
		log.Warn("🚫 run cancelled", "reason", err)
	default:
		r.state.SetError(err)
		log.Error("❌ run failed", "error", err)
	}
	return res, err
}

func (r *Runner) step(log *logger.Logger, state State, msg string) {
	r.state.SetState(state)
	r.state.AddLog(msg)
	log.Info(msg)
}

func (r *Runner) run(ctx context.Context, req Request, runID, profileName, workDir string, log *logger.Logger) (*Result, error) {
	s := r.deps.Settings
	profile, err := render.ProfileByName(profileName)
	if err != nil {
		return nil, err
	}
	short := profile.Vertical()
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}

	// 1. topic
	r.step(log, StatePicking, "🎯 Picking topic...")
	topic, err := r.pickTopic(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("pick topic: %w", err)
	}
	r.state.SetTopic(topic.Title)
	r.state.AddLog("Topic: " + topic.Title)

	// 2. script and metadata
	r.step(log, StateScripting, "📝 Writing script...")
	minutes := r.targetMinutes(short)
	script, err := r.deps.Writer.Script(ctx, topic, minutes, short)
	if err != nil {
		return nil, fmt.Errorf("write script: %w", err)
	}
	scriptPath := filepath.Join(workDir, "script.txt")
	if err := os.WriteFile(scriptPath, []byte(script), 0644); err != nil {
		return nil, fmt.Errorf("failed to save script: %w", err)
	}

	meta, err := r.deps.Writer.Metadata(ctx, script)
	if err != nil || meta == nil {
		log.Warn("metadata generation failed, using fallback", "error", err)
		meta = scriptgen.FallbackMetadata(topic, script)
	}
	metadata := publish.PrepareMetadata(*meta, s.CategoryID, s.PrivacyStatus, short)
	r.state.SetTitle(metadata.Title)
	r.state.AddLog("Title: " + metadata.Title)

	// 3. narration
	r.step(log, StateNarrating, "🎙️ Synthesizing narration...")
	audioPath := filepath.Join(workDir, "narration.mp3")
	if err := r.deps.Speech.Synthesize(ctx, script, audioPath); err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	duration, err := r.deps.Probe(audioPath)
	if err != nil {
		return nil, fmt.Errorf("probe narration: %w", err)
	}
	r.state.AddLog(fmt.Sprintf("Narration: %.1fs", duration))

	// 4. segments
	r.step(log, StateSegmenting, "✂️ Segmenting script...")
	segments := scriptgen.Segment(script, duration)
	if len(segments) == 0 {
		return nil, errors.New("script produced no segments")
	}
	fallback := append(append([]string{}, topic.Keywords...), s.ImageKeywords...)
	scriptgen.AssignKeywords(segments, s.Language, fallback)
	r.state.SetSegments(len(segments))

	// 5. media
	r.step(log, StateSourcing, fmt.Sprintf("🔍 Finding media for %d segments...", len(segments)))
	target := stock.Target{Width: profile.Width, Height: profile.Height, PreferVideo: short}
	media := r.deps.Finder.Bind(target)
	for i := range segments {
		m, err := media.Next(ctx, segments[i], 0)
		if err != nil {
			return nil, fmt.Errorf("segment %d media: %w", i+1, err)
		}
		segments[i].Media = m
	}

	// 6. curation
	curated := r.shouldCurate(req)
	if curated {
		r.step(log, StateCurating, "📱 Waiting for curation...")
		segments, err = r.curate(ctx, runID, metadata.Title, segments, media, log)
		if err != nil {
			return nil, err
		}
		r.state.AddLog("Curation approved")
	}

	// 7. render
	r.step(log, StateRendering, "🎬 Rendering video...")
	if err := r.fetchMedia(ctx, segments, workDir, log); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.deps.VideosDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create videos dir: %w", err)
	}
	base := fmt.Sprintf("%s_%s", time.Now().Format("20060102_150405"), shortID(runID))
	videoPath, err := r.deps.Renderer.Render(ctx, render.Job{
		Segments:  segments,
		AudioPath: audioPath,
		Duration:  duration,
		Profile:   profile,
		Subtitles: s.Subtitles,
		WorkDir:   filepath.Join(workDir, "render"),
		Output:    filepath.Join(r.deps.VideosDir, base+".mp4"),
	})
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	thumbPath, err := r.deps.Renderer.Thumbnail(ctx, segments, metadata.Title, profile, workDir, filepath.Join(r.deps.VideosDir, base+".jpg"))
	if err != nil {
		log.Warn("thumbnail failed", "error", err)
		thumbPath = ""
	}

	res := &Result{
		VideoPath: videoPath,
		Thumbnail: thumbPath,
		Metadata:  metadata,
		Record: types.RunRecord{
			RunID:    runID,
			Date:     types.NewTimestamp(time.Now()),
			Topic:    topic.Title,
			TopicID:  topic.ID,
			Title:    metadata.Title,
			Duration: duration,
			Profile:  profile.Name,
			Curated:  curated,
			File:     videoPath,
		},
	}

	// 8. publish and record
	if !req.SkipUpload && r.deps.Publisher != nil {
		r.step(log, StateUploading, "📤 Uploading to YouTube...")
		id, err := r.deps.Publisher.Upload(ctx, videoPath, metadata)
		if err != nil {
			return res, fmt.Errorf("upload: %w", err)
		}
		res.Record.VideoID = id
		res.Record.URL = publish.URLFor(id, short)
		if thumbPath != "" {
			if err := r.deps.Publisher.SetThumbnail(ctx, id, thumbPath); err != nil {
				log.Warn("failed to set thumbnail", "video_id", id, "error", err)
			}
		}
		r.state.AddLog("Published: " + res.Record.URL)
	} else {
		r.state.AddLog("Upload skipped")
	}

	r.finish(ctx, res, topic, scriptPath, log)
	return res, nil
}

// finish does the best-effort bookkeeping after a successful run.
func (r *Runner) finish(ctx context.Context, res *Result, topic *types.Topic, scriptPath string, log *logger.Logger) {
	if err := runlog.Append(r.deps.RunLogPath, res.Record); err != nil {
		log.Warn("failed to append run log", "error", err)
	}
	if r.deps.History != nil {
		if err := r.deps.History.Add(ctx, topic); err != nil {
			log.Warn("failed to record topic", "error", err)
		}
	}
	if c := r.deps.Curation; c != nil && res.Record.URL != "" {
		notifier := curation.NewCurator(c.Store, c.Messenger, log, c.SendDelay)
		if err := notifier.NotifyPublished(ctx, res.Record); err != nil {
			log.Warn("failed to notify chat", "error", err)
		}
	}
	if r.deps.Archiver != nil {
		if _, err := r.deps.Archiver.Archive(ctx, res.Record, res.VideoPath, res.Thumbnail, scriptPath); err != nil {
			log.Warn("failed to archive run", "error", err)
		}
	}
}

func (r *Runner) pickTopic(ctx context.Context, req Request) (*types.Topic, error) {
	if strings.TrimSpace(req.Topic) != "" {
		return ManualTopic(req.Topic), nil
	}
	if r.deps.Topics == nil {
		return nil, ErrNoTopic
	}
	return r.deps.Topics.Pick(ctx)
}

// targetMinutes is a random length in [DurationMin, DurationMax] for long videos.
func (r *Runner) targetMinutes(short bool) float64 {
	if short {
		return float64(config.ShortTargetSeconds) / 60
	}
	lo, hi := r.deps.Settings.DurationMin, r.deps.Settings.DurationMax
	if hi <= lo {
		return float64(lo)
	}
	return float64(lo + r.rng.Intn(hi-lo+1))
}

func (r *Runner) shouldCurate(req Request) bool {
	want := r.deps.Settings.Curation.Enabled
	if req.Curate != nil {
		want = *req.Curate
	}
	if want && r.deps.Curation == nil {
		r.deps.Log.Warn("curation requested but no chat is configured, skipping")
		return false
	}
	return want
}

func (r *Runner) curate(ctx context.Context, runID, title string, segments []types.Segment, media curation.MediaSource, log *logger.Logger) ([]types.Segment, error) {
	c := r.deps.Curation
	curator := curation.NewCurator(c.Store, c.Messenger, log, c.SendDelay)

	if c.Poll {
		pollCtx, stop := context.WithCancel(ctx)
		defer stop()
		handler := curation.NewHandler(c.Store, c.Messenger, media, c.ChatID, log)
		poller := curation.NewPoller(c.Messenger, handler, log)
		go func() {
			_ = poller.Run(pollCtx)
		}()
	}

	if err := curator.Request(ctx, runID, title, segments); err != nil {
		return nil, fmt.Errorf("curation request: %w", err)
	}
	timeout := firstDuration(c.Timeout, r.deps.Settings.Curation.Timeout.Duration, config.CurationTimeout)
	every := firstDuration(c.Every, r.deps.Settings.Curation.PollInterval.Duration, config.CurationPollInterval)
	return curator.Wait(ctx, timeout, every)
}

// fetchMedia downloads every remote media file into workDir. A failed download
// falls back to a local image.
func (r *Runner) fetchMedia(ctx context.Context, segments []types.Segment, workDir string, log *logger.Logger) error {
	for i := range segments {
		m := segments[i].Media
		if m.Path != "" {
			if _, err := os.Stat(m.Path); err == nil {
				continue
			}
		}
		dst := filepath.Join(workDir, fmt.Sprintf("media_%03d%s", i, mediaExt(m)))
		err := r.deps.Download(ctx, m.URL, dst)
		if err == nil {
			segments[i].Media.Path = dst
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("media download failed, using fallback", "segment", i+1, "url", m.URL, "error", err)
		fb, ferr := r.deps.Finder.Fallback()
		if ferr != nil {
			return fmt.Errorf("segment %d media: %w", i+1, err)
		}
		segments[i].Media = fb
	}
	return nil
}

func mediaExt(m types.Media) string {
	if m.Type == types.MediaVideo {
		return ".mp4"
	}
	p := strings.ToLower(m.URL)
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	switch ext := path.Ext(p); ext {
	case ".jpg", ".jpeg", ".png", ".webp":
		return ext
	}
	return ".jpg"
}

func shortID(id string) string {
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstDuration(vals ...time.Duration) time.Duration {
	for _, v := range vals {
		if v > 0 {
			return v
		}
	}
	return 0
}
