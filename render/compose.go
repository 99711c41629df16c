package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"clipbot/config"
	"clipbot/types"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// coverFilter scales a stream to cover w x h and center-crops the overflow.
func coverFilter(s *ffmpeg.Stream, w, h int) *ffmpeg.Stream {
	return s.
		Filter("scale", ffmpeg.Args{fmt.Sprintf("%d:%d", w, h)}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{fmt.Sprintf("%d:%d", w, h)})
}

// photoClip renders a still image as a slowly zooming clip of seg.Duration seconds.
func photoClip(imagePath, out string, duration float64, p Profile) *ffmpeg.Stream {
	frames := max(int(duration*float64(p.FPS)+0.5), 1)

	// upscale first so zoompan has pixels to work with and does not jitter
	in := ffmpeg.Input(imagePath, ffmpeg.KwArgs{"loop": 1, "framerate": p.FPS, "t": fmt.Sprintf("%.3f", duration)})
	zoomed := coverFilter(in, p.Width*2, p.Height*2).
		Filter("zoompan", ffmpeg.Args{}, ffmpeg.KwArgs{
			"z":   fmt.Sprintf("1+%g*on/%d", config.ZoomPerSecond, p.FPS),
			"x":   "iw/2-(iw/zoom/2)",
			"y":   "ih/2-(ih/zoom/2)",
			"d":   1,
			"s":   p.size(),
			"fps": p.FPS,
		}).
		Filter("setsar", ffmpeg.Args{"1"})

	return zoomed.Output(out, clipOutputArgs(p, frames)).OverWriteOutput()
}

// videoClip trims (looping if needed) a stock video to duration and fits it to the frame.
func videoClip(videoPath, out string, media types.Media, duration float64, p Profile) *ffmpeg.Stream {
	frames := max(int(duration*float64(p.FPS)+0.5), 1)

	inArgs := ffmpeg.KwArgs{}
	if media.Duration > 0 && media.Duration < duration {
		inArgs["stream_loop"] = -1
	}
	in := ffmpeg.Input(videoPath, inArgs).Video()
	fitted := coverFilter(in, p.Width, p.Height).
		Filter("fps", ffmpeg.Args{fmt.Sprintf("%d", p.FPS)}).
		Filter("setsar", ffmpeg.Args{"1"})

	args := clipOutputArgs(p, frames)
	args["t"] = fmt.Sprintf("%.3f", duration)
	return fitted.Output(out, args).OverWriteOutput()
}

func clipOutputArgs(p Profile, frames int) ffmpeg.KwArgs {
	return ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"preset":   config.VideoPreset,
		"pix_fmt":  "yuv420p",
		"r":        p.FPS,
		"frames:v": frames,
		"an":       "",
	}
}

// finalVideo concatenates the clips listed in listPath, muxes the narration and
// optionally burns in the ASS subtitles.
func finalVideo(listPath, audioPath, assPath, out string, duration float64, p Profile) *ffmpeg.Stream {
	video := ffmpeg.Input(listPath, ffmpeg.KwArgs{"f": "concat", "safe": 0}).Video()
	audio := ffmpeg.Input(audioPath).Audio()

	if assPath != "" {
		video = video.Filter("ass", ffmpeg.Args{ffmpegPath(assPath)})
	}

	args := ffmpeg.KwArgs{
		"c:v":      config.VideoCodec,
		"c:a":      config.AudioCodec,
		"b:a":      config.AudioBitrate,
		"preset":   config.VideoPreset,
		"pix_fmt":  "yuv420p",
		"r":        p.FPS,
		"movflags": "+faststart",
		"shortest": "",
	}
	if p.MaxDuration > 0 && duration > p.MaxDuration {
		args["t"] = fmt.Sprintf("%.2f", p.MaxDuration)
	}
	return ffmpeg.Output([]*ffmpeg.Stream{video, audio}, out, args).OverWriteOutput()
}

// frameGrab extracts one frame from a video to an image file.
func frameGrab(videoPath, out string, at float64) *ffmpeg.Stream {
	return ffmpeg.Input(videoPath, ffmpeg.KwArgs{"ss": fmt.Sprintf("%.2f", at)}).
		Output(out, ffmpeg.KwArgs{"frames:v": 1, "q:v": 2}).
		OverWriteOutput()
}

// concatList renders a concat demuxer list for the given clip files.
func concatList(clips []string) string {
	var b strings.Builder
	for _, c := range clips {
		abs, err := filepath.Abs(c)
		if err != nil {
			abs = c
		}
		fmt.Fprintf(&b, "file '%s'\n", strings.ReplaceAll(filepath.ToSlash(abs), "'", `'\''`))
	}
	return b.String()
}

// ffmpegPath converts a path to the form filter arguments expect
// (forward slashes, escaped colons).
func ffmpegPath(p string) string {
	p = filepath.ToSlash(p)
	return strings.ReplaceAll(p, ":", "\\:")
}
