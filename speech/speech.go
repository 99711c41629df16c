// Package speech turns narration text into an MP3 file.
package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"clipbot/scriptgen"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Synthesizer writes narration audio for text to outPath.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// NewFromEnv builds the engine named by engine ("polly" or "google"); empty means polly.
func NewFromEnv(ctx context.Context, engine, language string) (Synthesizer, error) {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", "polly":
		return NewPolly(ctx, language, os.Getenv("POLLY_VOICE"))
	case "google":
		return NewGoogle(ctx, language, os.Getenv("GOOGLE_TTS_VOICE"))
	default:
		return nil, fmt.Errorf("unknown TTS engine %q", engine)
	}
}

// Chunk splits text at sentence boundaries into pieces of at most limit bytes.
// A single sentence longer than limit is cut on word boundaries.
func Chunk(text string, limit int) []string {
	var chunks []string
	var cur strings.Builder

	push := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			chunks = append(chunks, s)
		}
		cur.Reset()
	}
	add := func(piece string) {
		if cur.Len() > 0 && cur.Len()+1+len(piece) > limit {
			push()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(piece)
	}

	for _, sentence := range scriptgen.SplitSentences(text) {
		if len(sentence) <= limit {
			add(sentence)
			continue
		}
		for _, word := range strings.Fields(sentence) {
			add(word)
		}
	}
	push()
	return chunks
}

// writeParts concatenates MP3 byte streams into outPath. MP3 frames are
// self-delimiting, so plain concatenation plays back as one stream.
func writeParts(outPath string, parts []io.Reader) error {
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer out.Close()

	for i, p := range parts {
		if _, err := io.Copy(out, p); err != nil {
			return fmt.Errorf("failed to write audio part %d: %w", i, err)
		}
	}
	return nil
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration returns the length of a media file in seconds using ffprobe.
func Duration(path string) (float64, error) {
	raw, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbeDuration(raw)
}

func parseProbeDuration(raw string) (float64, error) {
	var p probeResult
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	d, err := strconv.ParseFloat(p.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe reported no duration: %w", err)
	}
	return d, nil
}
