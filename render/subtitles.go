package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"clipbot/config"
	"clipbot/types"
)

// Cue is one subtitle line.
type Cue struct {
	Text  string
	Start float64
	End   float64
}

// BuildCues splits each segment into lines of at most maxWords words. Lines share
// the segment's time in proportion to their word counts.
func BuildCues(segments []types.Segment, maxWords int) []Cue {
	var cues []Cue
	for _, seg := range segments {
		words := strings.Fields(seg.Text)
		if len(words) == 0 || seg.Duration <= 0 {
			continue
		}
		start := seg.Start
		for i := 0; i < len(words); i += maxWords {
			j := min(i+maxWords, len(words))
			end := seg.Start + seg.Duration*float64(j)/float64(len(words))
			cues = append(cues, Cue{Text: strings.Join(words[i:j], " "), Start: start, End: end})
			start = end
		}
	}
	return cues
}

// WriteASS writes cues as an ASS script sized for profile.
func WriteASS(w io.Writer, cues []Cue, profile Profile) error {
	// vertical: 40% from bottom, horizontal: near the bottom edge
	marginV := profile.Height * 2 / 5
	fontSize := config.SubtitleFontSize
	if !profile.Vertical() {
		marginV = profile.Height / 12
		fontSize = config.SubtitleFontSize * 3 / 4
	}

	var b strings.Builder
	b.WriteString("[Script Info]\n")
	b.WriteString("Title: Clipbot Video\n")
	b.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&b, "PlayResX: %d\n", profile.Width)
	fmt.Fprintf(&b, "PlayResY: %d\n", profile.Height)
	b.WriteString("\n[V4+ Styles]\n")
	b.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	fmt.Fprintf(&b, "Style: Default,Arial,%d,&H00FFFFFF,&H00FFFFFF,&H00000000,&H64000000,-1,0,0,0,100,100,0,0,1,4,1,2,60,60,%d,1\n", fontSize, marginV)
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for _, c := range cues {
		fmt.Fprintf(&b, "Dialogue: 0,%s,%s,Default,,0,0,0,,%s\n",
			formatASSTimestamp(c.Start), formatASSTimestamp(c.End), escapeASS(c.Text))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeASSFile(path string, segments []types.Segment, profile Profile) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteASS(f, BuildCues(segments, config.SubtitleMaxWordsLine), profile)
}

// formatASSTimestamp converts seconds to ASS timestamp format (h:mm:ss.cc)
func formatASSTimestamp(seconds float64) string {
	cs := int(seconds*100 + 0.5)
	hours := cs / 360000
	minutes := cs / 6000 % 60
	secs := cs / 100 % 60
	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, secs, cs%100)
}

var assEscaper = strings.NewReplacer("{", "(", "}", ")", "\\", "/", "\n", " ")

func escapeASS(s string) string {
	return assEscaper.Replace(s)
}
