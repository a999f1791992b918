package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tyhsieh/adabot/common/retry"
)

const (
	defaultBaseURL    = "https://api.openai.com/v1"
	defaultModel      = "gpt-5-nano"
	defaultTimeout    = 30 * time.Second
	defaultRetries    = 2
	defaultRetryDelay = 250 * time.Millisecond
)

// Config configures the OpenAI-compatible completion provider.
type Config struct {
	// APIKey is the bearer token used to authenticate against the API.
	APIKey string

	// BaseURL overrides the API endpoint. Useful for local models (Ollama)
	// or any other OpenAI-compatible endpoint.
	// Defaults to https://api.openai.com/v1 when empty.
	BaseURL string

	// Model is the chat model to use. Defaults to gpt-5-nano when empty.
	Model string

	// Timeout is the HTTP request timeout. Defaults to 30 s.
	Timeout time.Duration

	// Retries is the total number of attempts per completion, including the
	// first. Only transport failures and 429/5xx responses are retried.
	// Defaults to 2.
	Retries int

	// RetryDelay is the backoff before the second attempt. Defaults to 250 ms.
	RetryDelay time.Duration
}

// openAIProvider implements Provider against the OpenAI chat completions API.
type openAIProvider struct {
	cfg    Config
	client *http.Client
}

// New returns a Provider backed by the OpenAI (or compatible) chat API.
// The returned provider is safe for concurrent use.
func New(cfg Config) Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Retries < 1 {
		cfg.Retries = defaultRetries
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	return &openAIProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// --- minimal OpenAI wire types ---

type oaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type oaiRequest struct {
	Model    string       `json:"model"`
	Messages []oaiMessage `json:"messages"`
}

type oaiResponse struct {
	Choices []oaiChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type oaiChoice struct {
	Message      oaiMessage `json:"message"`
	FinishReason string     `json:"finish_reason"`
}

// transientError marks a failure worth retrying: the request never reached
// the API, or the API asked us to back off.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Complete sends the prompt sequence to the model and returns the completion
// text with surrounding whitespace trimmed. An empty string with a nil error
// means the model genuinely produced nothing. Transport failures and 429/5xx
// responses are retried with backoff before giving up.
func (p *openAIProvider) Complete(ctx context.Context, messages []Message) (string, error) {
	wire := make([]oaiMessage, len(messages))
	for i, m := range messages {
		wire[i] = oaiMessage{Role: m.Role, Content: m.Content}
	}

	data, err := json.Marshal(oaiRequest{Model: p.cfg.Model, Messages: wire})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	var text string
	err = retry.Do(ctx, retry.Policy{
		Attempts:  p.cfg.Retries,
		Base:      p.cfg.RetryDelay,
		Retryable: isTransient,
	}, func() error {
		var attemptErr error
		text, attemptErr = p.complete(ctx, data)
		return attemptErr
	})
	return text, err
}

// complete performs one request/response round trip.
func (p *openAIProvider) complete(ctx context.Context, data []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.cfg.BaseURL+"/chat/completions",
		bytes.NewReader(data),
	)
	if err != nil {
		return "", fmt.Errorf("llm: create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return "", &transientError{fmt.Errorf("llm: http request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &transientError{fmt.Errorf("llm: read response body: %w", err)}
	}

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return "", &transientError{fmt.Errorf("llm: API returned HTTP %d: %s", resp.StatusCode, firstLine(respBody))}
	}

	var oaiResp oaiResponse
	if err := json.Unmarshal(respBody, &oaiResp); err != nil {
		return "", fmt.Errorf("llm: decode API response (HTTP %d): %w", resp.StatusCode, err)
	}

	if oaiResp.Error != nil {
		return "", fmt.Errorf("llm: API error (%s): %s", oaiResp.Error.Type, oaiResp.Error.Message)
	}

	if len(oaiResp.Choices) == 0 {
		return "", fmt.Errorf("llm: no choices returned (HTTP %d)", resp.StatusCode)
	}

	return strings.TrimSpace(oaiResp.Choices[0].Message.Content), nil
}

// firstLine bounds how much of an error body ends up in an error message.
func firstLine(body []byte) string {
	s := strings.TrimSpace(string(body))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
