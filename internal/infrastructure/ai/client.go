package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/doeshing/quickstart-go/internal/domain"
	"github.com/doeshing/quickstart-go/internal/ports"
)

// Client implements ports.CompletionClient against an OpenAI-compatible
// chat completions endpoint.
type Client struct {
	httpClient *http.Client
	logger     ports.Logger
}

// NewClient returns a completion client. A nil httpClient means a fresh
// client per request, bounded by the configured request timeout.
func NewClient(httpClient *http.Client, log ports.Logger) *Client {
	return &Client{httpClient: httpClient, logger: log}
}

// Complete sends one chat completion request and returns the first choice.
// Every failure is a *domain.Error of kind network or api; nothing is retried.
func (c *Client) Complete(ctx context.Context, cfg domain.RunConfig, prompt domain.Prompt) (domain.CompletionResult, error) {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = domain.DefaultHTTPClientTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := chatRequest(cfg, prompt)
	body, err := c.RequestBody(cfg, prompt)
	if err != nil {
		return domain.CompletionResult{}, domain.NewError(domain.KindAPI, domain.ReasonMalformedBody,
			"encode completion request", err)
	}

	c.debug("sending completion request", map[string]interface{}{
		"model":    req.Model,
		"base_url": baseURL(cfg),
		"bytes":    len(body),
	})

	resp, err := c.api(cfg, timeout).CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.CompletionResult{}, classify(ctx, err)
	}
	if len(resp.Choices) == 0 {
		return domain.CompletionResult{}, domain.NewError(domain.KindAPI, domain.ReasonEmptyResponse,
			"completion response has no choices", nil)
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return domain.CompletionResult{}, domain.NewError(domain.KindAPI, domain.ReasonEmptyResponse,
			"completion response has empty content", nil)
	}

	c.debug("completion received", map[string]interface{}{
		"model":             resp.Model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	})

	return domain.CompletionResult{
		Text:             text,
		Model:            valueOrDefault(resp.Model, req.Model),
		RequestBody:      body,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}

// RequestBody returns the JSON body Complete would send for prompt.
func (c *Client) RequestBody(cfg domain.RunConfig, prompt domain.Prompt) ([]byte, error) {
	return json.Marshal(chatRequest(cfg, prompt))
}

func (c *Client) api(cfg domain.RunConfig, timeout time.Duration) *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = baseURL(cfg)
	if c.httpClient != nil {
		config.HTTPClient = c.httpClient
	} else {
		config.HTTPClient = &http.Client{Timeout: timeout}
	}
	return openai.NewClientWithConfig(config)
}

func chatRequest(cfg domain.RunConfig, prompt domain.Prompt) openai.ChatCompletionRequest {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: prompt.Instruction},
	}
	if prompt.Content != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt.Content,
		})
	}
	return openai.ChatCompletionRequest{
		Model:    valueOrDefault(cfg.Model, domain.DefaultModel),
		Messages: messages,
	}
}

func baseURL(cfg domain.RunConfig) string {
	return strings.TrimRight(valueOrDefault(cfg.BaseURL, domain.DefaultBaseURL), "/")
}

func valueOrDefault(value string, def string) string {
	if value == "" {
		return def
	}
	return value
}

func (c *Client) debug(msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, fields)
	}
}

var _ ports.CompletionClient = (*Client)(nil)
