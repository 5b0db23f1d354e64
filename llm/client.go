// Package llm wraps the hosted generative model behind a small client
// interface and provides tolerant parsing of model output into typed
// JSON results.
package llm

import (
	"context"
	"errors"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// ErrNotConfigured is returned when no API credentials are available.
// Handlers map it to a service-unavailable response.
var ErrNotConfigured = errors.New("generative model credentials not configured")

// ErrEmptyResponse is returned when the model replies with no choices.
var ErrEmptyResponse = errors.New("generative model returned an empty response")

// Client defines the single operation the orchestration services need:
// send a prompt, get the raw completion text back.
type Client interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIClient calls the OpenAI chat completion API. Every call is
// bounded by the configured timeout; no retries are attempted.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient constructs an OpenAI-backed client. An empty apiKey
// yields a client whose calls fail with ErrNotConfigured, so the rest
// of the API keeps working without credentials.
func NewOpenAIClient(apiKey, model string, timeout time.Duration) *OpenAIClient {
	c := &OpenAIClient{model: model, timeout: timeout}
	if apiKey != "" {
		c.client = openai.NewClient(apiKey)
	}
	return c
}

// Complete sends the prompt pair to the chat completion API and returns
// the assistant's raw text.
func (c *OpenAIClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.client == nil {
		return "", ErrNotConfigured
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
