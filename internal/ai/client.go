// Package ai talks to the OpenAI chat completion API to analyze journal text
// and suggest journal prompts in Hopper's voice.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/config"
	openai "github.com/sashabaranov/go-openai"
)

var (
	ErrEmptyText       = errors.New("text is required")
	ErrInvalidResponse = errors.New("invalid response from model")
)

// ChatClient is the part of *openai.Client used here.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient builds an OpenAI client from config. OPENAI_BASE_URL points it at
// a compatible gateway.
func NewClient(cfg *config.Config) *openai.Client {
	oc := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.OpenAIBaseURL, "/")
	}
	return openai.NewClientWithConfig(oc)
}

// completeJSON sends one system + user exchange asking for a JSON object and
// decodes the reply into dst.
func completeJSON(ctx context.Context, client ChatClient, model string, timeout time.Duration, system, prompt string, dst any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.4,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return fmt.Errorf("%w: no choices", ErrInvalidResponse)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return nil
}
