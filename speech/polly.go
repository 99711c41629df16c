package speech

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	ptypes "github.com/aws/aws-sdk-go-v2/service/polly/types"
)

// pollyTextLimit stays under Polly's 3000 character request limit.
const pollyTextLimit = 2900

type pollyAPI interface {
	SynthesizeSpeech(ctx context.Context, in *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// Polly synthesizes with Amazon Polly's neural engine.
type Polly struct {
	client   pollyAPI
	voice    ptypes.VoiceId
	language ptypes.LanguageCode
}

// NewPolly loads AWS credentials from the default chain.
func NewPolly(ctx context.Context, language, voice string) (*Polly, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return newPolly(polly.NewFromConfig(cfg), language, voice), nil
}

func newPolly(client pollyAPI, language, voice string) *Polly {
	if voice == "" {
		voice = defaultPollyVoice(language)
	}
	return &Polly{
		client:   client,
		voice:    ptypes.VoiceId(voice),
		language: ptypes.LanguageCode(language),
	}
}

func defaultPollyVoice(language string) string {
	switch strings.ToLower(language) {
	case "en", "en-us":
		return string(ptypes.VoiceIdJoanna)
	case "es", "es-es":
		return string(ptypes.VoiceIdLucia)
	default:
		return string(ptypes.VoiceIdCamila)
	}
}

func (p *Polly) Synthesize(ctx context.Context, text, outPath string) error {
	chunks := Chunk(text, pollyTextLimit)
	if len(chunks) == 0 {
		return fmt.Errorf("nothing to synthesize")
	}

	parts := make([]io.Reader, 0, len(chunks))
	for i, chunk := range chunks {
		out, err := p.client.SynthesizeSpeech(ctx, &polly.SynthesizeSpeechInput{
			Text:         aws.String(chunk),
			OutputFormat: ptypes.OutputFormatMp3,
			VoiceId:      p.voice,
			Engine:       ptypes.EngineNeural,
			LanguageCode: p.language,
		})
		if err != nil {
			return fmt.Errorf("polly chunk %d/%d: %w", i+1, len(chunks), err)
		}
		defer out.AudioStream.Close()
		parts = append(parts, out.AudioStream)
	}

	return writeParts(outPath, parts)
}
