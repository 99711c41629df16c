package scriptgen

import (
	"strings"
	"unicode"

	"clipbot/config"
	"clipbot/types"
)

// Segment splits script into sentence-bounded segments timed against a narration
// of total seconds. Each segment's duration is proportional to its word count, and
// the last one ends exactly at total.
func Segment(script string, total float64) []types.Segment {
	sentences := mergeShort(SplitSentences(script), config.MinSegmentWords)
	if len(sentences) == 0 {
		return nil
	}

	counts := make([]int, len(sentences))
	totalWords := 0
	for i, s := range sentences {
		counts[i] = len(strings.Fields(s))
		totalWords += counts[i]
	}

	segments := make([]types.Segment, len(sentences))
	start := 0.0
	for i, s := range sentences {
		d := total * float64(counts[i]) / float64(totalWords)
		if i == len(sentences)-1 {
			d = total - start
		}
		segments[i] = types.Segment{
			Index:    i,
			Text:     s,
			Words:    counts[i],
			Start:    start,
			Duration: d,
		}
		start += d
	}
	return segments
}

// SplitSentences breaks text at '.', '!', '?', '…' and line breaks.
// A '.' between two digits (4.5) is not a boundary.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	var cur strings.Builder

	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if r == '\n' {
			flush()
			continue
		}
		cur.WriteRune(r)
		if !isTerminator(r) {
			continue
		}
		if r == '.' && i > 0 && i+1 < len(runes) && unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]) {
			continue
		}
		// keep runs like "?!" or "..." and closing quotes together
		for i+1 < len(runes) && (isTerminator(runes[i+1]) || isCloser(runes[i+1])) {
			i++
			cur.WriteRune(runes[i])
		}
		flush()
	}
	flush()
	return out
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

func isCloser(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == '»' || r == '”'
}

// mergeShort joins sentences under min words into the following one; a short tail
// is joined to the previous sentence.
func mergeShort(sentences []string, min int) []string {
	var out []string
	pending := ""
	for _, s := range sentences {
		if pending != "" {
			s = pending + " " + s
			pending = ""
		}
		if len(strings.Fields(s)) < min {
			pending = s
			continue
		}
		out = append(out, s)
	}
	if pending != "" {
		if len(out) == 0 {
			out = append(out, pending)
		} else {
			out[len(out)-1] += " " + pending
		}
	}
	return out
}
