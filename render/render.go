package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"clipbot/logger"
	"clipbot/types"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Job is everything needed to render one video.
type Job struct {
	Segments  []types.Segment
	AudioPath string
	Duration  float64 // narration length in seconds
	Profile   Profile
	Subtitles bool
	WorkDir   string
	Output    string
}

// Runner executes a compiled ffmpeg command.
type Runner func(ctx context.Context, s *ffmpeg.Stream) error

// Renderer turns segments with downloaded media into a finished video.
type Renderer struct {
	log *logger.Logger
	run Runner
}

func NewRenderer(log *logger.Logger) *Renderer {
	return &Renderer{log: log, run: RunFFmpeg}
}

// WithRunner replaces the ffmpeg executor. Used in tests.
func (r *Renderer) WithRunner(run Runner) *Renderer {
	r.run = run
	return r
}

// RunFFmpeg runs s and cancels the process when ctx ends. stderr is attached to errors.
func RunFFmpeg(ctx context.Context, s *ffmpeg.Stream) error {
	compiled := s.Compile()
	cmd := exec.CommandContext(ctx, compiled.Path, compiled.Args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg failed: %w: %s", err, tail(stderr.String(), 800))
	}
	return nil
}

// Render builds one clip per segment, concatenates them and muxes the narration.
func (r *Renderer) Render(ctx context.Context, job Job) (string, error) {
	if len(job.Segments) == 0 {
		return "", errors.New("no segments to render")
	}
	if err := os.MkdirAll(job.WorkDir, 0755); err != nil {
		return "", err
	}
	if dir := filepath.Dir(job.Output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	started := time.Now()
	clips := make([]string, 0, len(job.Segments))
	for i, seg := range job.Segments {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		clip := filepath.Join(job.WorkDir, fmt.Sprintf("clip_%03d.mp4", i))
		if err := r.run(ctx, clipFor(seg, clip, job.Profile)); err != nil {
			return "", fmt.Errorf("segment %d clip: %w", i+1, err)
		}
		r.log.Debug("clip rendered", "segment", i+1, "type", seg.Media.Type, "duration", seg.Duration)
		clips = append(clips, clip)
	}

	listPath := filepath.Join(job.WorkDir, "clips.txt")
	if err := os.WriteFile(listPath, []byte(concatList(clips)), 0644); err != nil {
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}

	assPath := ""
	if job.Subtitles {
		assPath = filepath.Join(job.WorkDir, "subtitles.ass")
		if err := writeASSFile(assPath, job.Segments, job.Profile); err != nil {
			return "", fmt.Errorf("failed to generate ASS: %w", err)
		}
	}

	if err := r.run(ctx, finalVideo(listPath, job.AudioPath, assPath, job.Output, job.Duration, job.Profile)); err != nil {
		return "", fmt.Errorf("final render: %w", err)
	}

	r.log.Info("🎬 video rendered", "output", job.Output, "profile", job.Profile.Name,
		"segments", len(clips), "took", time.Since(started).Round(time.Second))
	return job.Output, nil
}

func clipFor(seg types.Segment, out string, p Profile) *ffmpeg.Stream {
	src := seg.Media.Path
	if src == "" {
		src = seg.Media.URL
	}
	if seg.Media.Type == types.MediaVideo {
		return videoClip(src, out, seg.Media, seg.Duration, p)
	}
	return photoClip(src, out, seg.Duration, p)
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
