// Package scriptgen writes narration scripts and video metadata with a generative model
// and splits scripts into timed segments.
package scriptgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"clipbot/config"
	"clipbot/types"
)

var ErrNoJSON = errors.New("no JSON object in model response")

// Writer asks a Model for scripts and metadata.
type Writer struct {
	Model    Model
	Language string
}

func NewWriter(model Model, language string) *Writer {
	if language == "" {
		language = "pt-BR"
	}
	return &Writer{Model: model, Language: language}
}

// Script writes narration text about topic sized for minutes of speech.
// Short videos get a handful of facts, long ones 10 to 15.
func (w *Writer) Script(ctx context.Context, topic *types.Topic, minutes float64, short bool) (string, error) {
	raw, err := w.Model.Generate(ctx, w.scriptPrompt(topic, minutes, short))
	if err != nil {
		return "", fmt.Errorf("failed to generate script: %w", err)
	}
	script := CleanScript(raw)
	if script == "" {
		return "", errors.New("model returned an empty script")
	}
	return script, nil
}

func (w *Writer) scriptPrompt(topic *types.Topic, minutes float64, short bool) string {
	words := int(minutes * config.WordsPerMinute)
	facts := "10-15 fatos curiosos numerados"
	kind := "um vídeo de YouTube"
	if short {
		facts = "3-5 fatos curiosos"
		kind = "um vídeo curto vertical (YouTube Shorts)"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Crie um roteiro completo para %s sobre: %s\n\n", kind, topic.Title)
	if topic.IsNews() {
		body := topic.Body
		if body == "" {
			body = topic.Summary
		}
		fmt.Fprintf(&sb, "Baseie-se nesta notícia (%s):\n%s\n\n", topic.URL, truncateRunes(body, 4000))
	}
	sb.WriteString("Requisitos:\n")
	fmt.Fprintf(&sb, "- Duração: %s minutos (aproximadamente %d palavras)\n", formatMinutes(minutes), words)
	sb.WriteString("- Tom: envolvente, informativo e curioso\n")
	fmt.Fprintf(&sb, "- Estrutura: introdução impactante, %s, conclusão memorável\n", facts)
	fmt.Fprintf(&sb, "- Linguagem: %s, natural para narração\n", languageName(w.Language))
	sb.WriteString("- Inclua transições suaves entre os fatos\n\n")
	sb.WriteString("Formato: escreva apenas o texto para narração, sem indicações técnicas, sem markdown.")
	return sb.String()
}

// Metadata asks for title, description and tags based on the start of the script.
func (w *Writer) Metadata(ctx context.Context, script string) (*types.VideoMetadata, error) {
	prompt := fmt.Sprintf(`Com base neste roteiro de vídeo, crie:

1. Um título chamativo (máximo 60 caracteres) otimizado para SEO
2. Uma descrição completa (3-4 parágrafos) incluindo:
   - Resumo do conteúdo
   - Principais curiosidades abordadas
   - Call-to-action (inscrever-se, comentar)
   - Hashtags relevantes

Roteiro: %s...

Retorne no formato JSON:
{"titulo": "...", "descricao": "...", "tags": ["tag1", "tag2"]}`, truncateRunes(script, config.MetadataScriptPreview))

	raw, err := w.Model.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata: %w", err)
	}
	return ParseMetadata(raw)
}

// FallbackMetadata is used when the model's metadata cannot be parsed.
func FallbackMetadata(topic *types.Topic, script string) *types.VideoMetadata {
	return &types.VideoMetadata{
		Title:       topic.Title,
		Description: truncateRunes(script, 1000),
		Tags:        dedupeTags(append([]string{topic.Title}, topic.Keywords...)),
	}
}

type rawMetadata struct {
	Titulo      string   `json:"titulo"`
	Descricao   string   `json:"descricao"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// ParseMetadata extracts the JSON object between the first '{' and the last '}'.
func ParseMetadata(raw string) (*types.VideoMetadata, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}

	var m rawMetadata
	if err := json.Unmarshal([]byte(raw[start:end+1]), &m); err != nil {
		return nil, fmt.Errorf("failed to parse metadata JSON: %w", err)
	}

	meta := &types.VideoMetadata{
		Title:       strings.TrimSpace(firstNonEmpty(m.Titulo, m.Title)),
		Description: strings.TrimSpace(firstNonEmpty(m.Descricao, m.Description)),
		Tags:        dedupeTags(m.Tags),
	}
	if meta.Title == "" {
		return nil, errors.New("metadata has no title")
	}
	return meta, nil
}

var (
	bracketRe  = regexp.MustCompile(`\[[^\]]*\]`)
	headingRe  = regexp.MustCompile(`(?m)^\s*#+\s*`)
	emphasisRe = regexp.MustCompile(`\*{1,3}|_{2,}|` + "`+")
	blankRe    = regexp.MustCompile(`\n{3,}`)
)

// CleanScript strips markdown markers and bracketed stage directions.
func CleanScript(raw string) string {
	s := bracketRe.ReplaceAllString(raw, "")
	s = headingRe.ReplaceAllString(s, "")
	s = emphasisRe.ReplaceAllString(s, "")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	s = blankRe.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(s)
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(t), "#"))
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func formatMinutes(m float64) string {
	if m == float64(int(m)) {
		return fmt.Sprintf("%d", int(m))
	}
	return fmt.Sprintf("%.1f", m)
}

func languageName(lang string) string {
	switch strings.ToLower(lang) {
	case "pt-br", "pt":
		return "português brasileiro"
	case "en", "en-us":
		return "inglês"
	case "es", "es-es":
		return "espanhol"
	default:
		return lang
	}
}
