package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/user/skillgen-service/internal/repository"
)

var ErrNoChoices = errors.New("model response contained no choices")

// Options configures the chat completion client.
type Options struct {
	APIKey      string
	BaseURL     string // empty means the public OpenAI endpoint
	Model       string
	Temperature float32
}

// Extractor calls an OpenAI-compatible chat completion API in JSON mode.
type Extractor struct {
	client      *goopenai.Client
	model       string
	temperature float32
	logger      *zap.Logger
}

var _ repository.TextExtractor = (*Extractor)(nil)

func NewExtractor(opts Options, logger *zap.Logger) *Extractor {
	cfg := goopenai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		client:      goopenai.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: opts.Temperature,
		logger:      logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, systemPrompt, userContent string) (string, error) {
	start := time.Now()
	resp, err := e.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: e.temperature,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: goopenai.ChatMessageRoleUser, Content: userContent},
		},
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion with %s: %w", e.model, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}

	e.logger.Info("Chat completion finished",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp.Choices[0].Message.Content, nil
}
