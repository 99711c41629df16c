package scriptgen

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
)

// Model turns a prompt into text.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

const (
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultCohereModel = "command-r-plus"
	DefaultOpenAIModel = openai.GPT4oMini
)

var ErrNoProvider = errors.New("no text generation provider configured")

// NewModelFromEnv builds the model named by provider ("gemini", "cohere", "openai").
// With an empty provider the first one with an API key set wins, Gemini first.
func NewModelFromEnv(ctx context.Context, provider string) (Model, error) {
	model := os.Getenv("LLM_MODEL")
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gemini":
		return NewGemini(ctx, os.Getenv("GEMINI_API_KEY"), model)
	case "cohere":
		return NewCohere(os.Getenv("COHERE_API_KEY"), model)
	case "openai":
		return NewOpenAI(os.Getenv("OPENAI_API_KEY"), model)
	case "":
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}

	switch {
	case os.Getenv("GEMINI_API_KEY") != "":
		return NewGemini(ctx, os.Getenv("GEMINI_API_KEY"), model)
	case os.Getenv("COHERE_API_KEY") != "":
		return NewCohere(os.Getenv("COHERE_API_KEY"), model)
	case os.Getenv("OPENAI_API_KEY") != "":
		return NewOpenAI(os.Getenv("OPENAI_API_KEY"), model)
	}
	return nil, ErrNoProvider
}

// Gemini generates text with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini/" + g.model }

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini returned empty text")
	}
	return sb.String(), nil
}

// Cohere generates text with the Cohere chat endpoint.
type Cohere struct {
	client *cohereclient.Client
	model  string
}

func NewCohere(apiKey, model string) (*Cohere, error) {
	if apiKey == "" {
		return nil, errors.New("COHERE_API_KEY is not set")
	}
	if model == "" {
		model = DefaultCohereModel
	}
	httpClient := &http.Client{Timeout: 120 * time.Second}
	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)
	return &Cohere{client: client, model: model}, nil
}

func (c *Cohere) Name() string { return "cohere/" + c.model }

func (c *Cohere) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.model
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message: prompt,
		Model:   &model,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", errors.New("cohere returned empty text")
	}
	return resp.Text, nil
}

// OpenAI generates text with the chat completions API.
type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}, nil
}

func (o *OpenAI) Name() string { return "openai/" + o.model }

func (o *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
