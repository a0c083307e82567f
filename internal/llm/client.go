package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/sadop/sadop/internal/errors"
)

// Config represents the completion client configuration
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client implements Service over an OpenAI-compatible chat-completions
// endpoint (Groq in production).
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new completion client with the given configuration.
// The timeout bounds every outbound call; callers get no retries.
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *chatError   `json:"error,omitempty"`
}

type chatChoice struct {
	Message Message `json:"message"`
}

type chatError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Complete issues a single chat-completion call and returns the raw text of
// the first choice.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.config.Model == "" {
		return "", errors.New(errors.ErrTypeConfig, "completion model is not configured")
	}

	reqBody := chatRequest{
		Model:       c.config.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeInternal, "failed to marshal request")
	}

	httpReq, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeInternal, "failed to create request")
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeNetwork, "completion request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrTypeNetwork, "failed to read response")
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrTypeNetwork,
			"completion request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", errors.Wrap(err, errors.ErrTypeGeneration, "failed to parse completion response")
	}

	if response.Error != nil {
		return "", errors.Newf(errors.ErrTypeGeneration,
			"completion API error: %s", response.Error.Message)
	}

	if len(response.Choices) == 0 {
		return "", errors.New(errors.ErrTypeGeneration, "no choices in completion response")
	}

	return response.Choices[0].Message.Content, nil
}

var _ Service = (*Client)(nil)
