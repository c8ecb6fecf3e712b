// internal/gpt/client.go
package gpt

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"

	"health-ai/internal/apperr"
)

const DefaultModel = "meta-llama/llama-4-maverick-17b-128e-instruct"

type Client struct {
	client      *openai.Client
	model       string
	temperature float32
}

// NewClient talks to any OpenAI-compatible chat completions API rooted at
// baseURL (Groq by default).
func NewClient(apiKey, baseURL string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		client:      openai.NewClientWithConfig(config),
		model:       DefaultModel,
		temperature: 0.5,
	}
}

func (c *Client) WithModel(model string) *Client {
	if model != "" {
		c.model = model
	}
	return c
}

func (c *Client) WithTemperature(t float32) *Client {
	c.temperature = t
	return c
}

// Complete sends the prompt and returns the first choice's raw content.
// Every failure is an upstream error; nothing is retried.
func (c *Client) Complete(ctx context.Context, prompt Prompt) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt.System,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt.User,
			},
		},
		Temperature: c.temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", apperr.Upstream(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperr.Upstream(errors.New("no choices in completion response"))
	}

	return resp.Choices[0].Message.Content, nil
}
