package speech

import (
	"bytes"
	"context"
	"fmt"
	"io"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
)

// googleTextLimit stays under the 5000 byte input limit.
const googleTextLimit = 4500

type googleAPI interface {
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
}

// Google synthesizes with Google Cloud Text-to-Speech.
type Google struct {
	client   googleAPI
	language string
	voice    string
}

// NewGoogle uses application default credentials.
func NewGoogle(ctx context.Context, language, voice string) (*Google, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create text-to-speech client: %w", err)
	}
	return &Google{client: client, language: language, voice: voice}, nil
}

func (g *Google) Synthesize(ctx context.Context, text, outPath string) error {
	chunks := Chunk(text, googleTextLimit)
	if len(chunks) == 0 {
		return fmt.Errorf("nothing to synthesize")
	}

	parts := make([]io.Reader, 0, len(chunks))
	for i, chunk := range chunks {
		resp, err := g.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: g.language,
				Name:         g.voice,
				SsmlGender:   texttospeechpb.SsmlVoiceGender_NEUTRAL,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
			},
		})
		if err != nil {
			return fmt.Errorf("text-to-speech chunk %d/%d: %w", i+1, len(chunks), err)
		}
		parts = append(parts, bytes.NewReader(resp.AudioContent))
	}

	return writeParts(outPath, parts)
}
