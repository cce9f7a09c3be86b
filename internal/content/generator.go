package content

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/outreachly/outreach-backend/internal/config"
	appErrors "github.com/outreachly/outreach-backend/internal/errors"
)

// Generator turns a prompt into email body content
type Generator interface {
	Generate(ctx context.Context, prompt string) (Content, error)
}

// LLMGenerator calls an OpenAI-compatible chat completion endpoint
// (Together AI by default)
type LLMGenerator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
}

func NewLLMGenerator(cfg config.LLMConfig) *LLMGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &LLMGenerator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
	}
}

// Generate returns a GenerationError for transport failures and for
// responses that carry no usable text
func (g *LLMGenerator) Generate(ctx context.Context, prompt string) (Content, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	})
	if err != nil {
		return Content{}, appErrors.NewGeneration(err)
	}
	if len(resp.Choices) == 0 {
		return Content{}, appErrors.NewGeneration(errors.New("completion returned no choices"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return Content{}, appErrors.NewGeneration(errors.New("completion returned empty content"))
	}
	return Classify(text), nil
}

var _ Generator = (*LLMGenerator)(nil)
