package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultChatBaseURL = "https://api.groq.com/openai/v1"
	defaultChatModel   = "llama3-70b-8192"
	defaultChatTimeout = 30 * time.Second
)

// ChatConfig configures an OpenAI-compatible chat completions endpoint.
type ChatConfig struct {
	Name       string
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// ChatClient talks to an OpenAI-compatible /chat/completions endpoint such as Groq.
type ChatClient struct {
	name   string
	model  string
	client openai.Client
}

var _ Completer = (*ChatClient)(nil)

// NewChatClient validates cfg. The defaults target Groq. The SDK's own retries are off so a
// rate-limited upstream reaches the caller with its status.
func NewChatClient(cfg ChatConfig) (*ChatClient, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("ai: chat api key is required")
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "groq"
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultChatBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultChatModel
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultChatTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &ChatClient{
		name:  name,
		model: model,
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL+"/"),
			option.WithHTTPClient(httpClient),
			option.WithMaxRetries(0),
		),
	}, nil
}

// Provider names the backend for logs and metrics.
func (c *ChatClient) Provider() string { return c.name }

// Complete sends one chat completion request and returns the first choice's text.
func (c *ChatClient) Complete(ctx context.Context, req Request) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       c.model,
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &UpstreamError{Provider: c.name, Status: apiErr.StatusCode, Details: decodeDetails(apiErr.RawJSON())}
		}
		return "", fmt.Errorf("ai: %s request: %w", c.name, err)
	}

	if len(completion.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(completion.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func decodeDetails(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw)
	}
	return raw
}
