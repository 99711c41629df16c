// Package render composes the final video and its thumbnail with ffmpeg.
package render

import (
	"fmt"
	"strings"

	"clipbot/config"
)

// Profile is an output format.
type Profile struct {
	Name        string
	Width       int
	Height      int
	FPS         int
	MaxDuration float64 // seconds, 0 means unlimited
	ThumbWidth  int
	ThumbHeight int
}

var (
	Short = Profile{
		Name:        "short",
		Width:       config.ShortWidth,
		Height:      config.ShortHeight,
		FPS:         config.ShortFPS,
		MaxDuration: config.ShortMaxDuration,
		ThumbWidth:  720,
		ThumbHeight: 1280,
	}
	Long = Profile{
		Name:        "long",
		Width:       config.LongWidth,
		Height:      config.LongHeight,
		FPS:         config.LongFPS,
		ThumbWidth:  1280,
		ThumbHeight: 720,
	}
)

// ProfileByName returns "short" or "long".
func ProfileByName(name string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "short", "shorts", "vertical":
		return Short, nil
	case "long", "", "horizontal":
		return Long, nil
	}
	return Profile{}, fmt.Errorf("unknown profile %q", name)
}

// Vertical reports whether the frame is taller than wide.
func (p Profile) Vertical() bool {
	return p.Height > p.Width
}

func (p Profile) size() string {
	return fmt.Sprintf("%dx%d", p.Width, p.Height)
}
