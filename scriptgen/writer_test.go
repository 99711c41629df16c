package scriptgen

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"clipbot/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	reply   string
	err     error
	prompts []string
}

func (f *fakeModel) Name() string { return "fake" }

func (f *fakeModel) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

func TestScriptPromptAndCleanup(t *testing.T) {
	m := &fakeModel{reply: "## Introdução\n**Você sabia?** [música de fundo] O espaço é silencioso.\n\n\n\nFim."}
	w := NewWriter(m, "")

	script, err := w.Script(context.Background(), &types.Topic{Title: "Curiosidades sobre o espaço"}, 8, false)
	require.NoError(t, err)
	assert.Equal(t, "Introdução\nVocê sabia? O espaço é silencioso.\n\nFim.", script)

	require.Len(t, m.prompts, 1)
	p := m.prompts[0]
	assert.Contains(t, p, "Curiosidades sobre o espaço")
	assert.Contains(t, p, "aproximadamente 1200 palavras")
	assert.Contains(t, p, "10-15 fatos curiosos numerados")
	assert.Contains(t, p, "português brasileiro")
}

func TestScriptShortNewsPrompt(t *testing.T) {
	m := &fakeModel{reply: "Texto."}
	w := NewWriter(m, "en")

	topic := &types.Topic{Title: "New galaxy", URL: "https://news.example.com/x", Body: "Astronomers found it."}
	_, err := w.Script(context.Background(), topic, 0.75, true)
	require.NoError(t, err)

	p := m.prompts[0]
	assert.Contains(t, p, "3-5 fatos curiosos")
	assert.Contains(t, p, "Astronomers found it.")
	assert.Contains(t, p, "0.8 minutos")
	assert.Contains(t, p, "inglês")
}

func TestScriptModelError(t *testing.T) {
	w := NewWriter(&fakeModel{err: errors.New("quota")}, "pt-BR")
	_, err := w.Script(context.Background(), &types.Topic{Title: "x"}, 1, false)
	assert.ErrorContains(t, err, "quota")

	w = NewWriter(&fakeModel{reply: "  [pausa]  "}, "pt-BR")
	_, err = w.Script(context.Background(), &types.Topic{Title: "x"}, 1, false)
	assert.Error(t, err)
}

func TestMetadataUsesScriptPreview(t *testing.T) {
	m := &fakeModel{reply: "Claro! ```json\n{\"titulo\": \"Segredos do Espaço\", \"descricao\": \"Uma viagem.\", \"tags\": [\"espaço\", \"#Espaço\", \" ciência \"]}\n```"}
	w := NewWriter(m, "pt-BR")

	script := strings.Repeat("a", 600) + "FIM"
	meta, err := w.Metadata(context.Background(), script)
	require.NoError(t, err)
	assert.Equal(t, "Segredos do Espaço", meta.Title)
	assert.Equal(t, "Uma viagem.", meta.Description)
	assert.Equal(t, []string{"espaço", "ciência"}, meta.Tags)
	assert.NotContains(t, m.prompts[0], "FIM")
}

func TestParseMetadata(t *testing.T) {
	meta, err := ParseMetadata(`{"title": "English keys", "description": "d", "tags": []}`)
	require.NoError(t, err)
	assert.Equal(t, "English keys", meta.Title)

	long := strings.Repeat("é", 150)
	meta, err = ParseMetadata(`{"titulo": "` + long + `"}`)
	require.NoError(t, err)
	assert.Equal(t, 150, utf8.RuneCountInString(meta.Title), "length is enforced once, at upload")

	_, err = ParseMetadata("sem json aqui")
	assert.ErrorIs(t, err, ErrNoJSON)

	_, err = ParseMetadata(`{"titulo": ""}`)
	assert.Error(t, err)

	_, err = ParseMetadata(`{"titulo": broken}`)
	assert.Error(t, err)
}

func TestFallbackMetadata(t *testing.T) {
	meta := FallbackMetadata(&types.Topic{Title: "Oceanos", Keywords: []string{"mar", "oceanos"}}, "Roteiro.")
	assert.Equal(t, "Oceanos", meta.Title)
	assert.Equal(t, "Roteiro.", meta.Description)
	assert.Equal(t, []string{"Oceanos", "mar"}, meta.Tags)
}
