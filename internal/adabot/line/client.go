package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultAPIBase       = "https://api.line.me"
	defaultClientTimeout = 10 * time.Second
)

// ClientConfig configures the outbound LINE API client.
type ClientConfig struct {
	// AccessToken is the channel access token used as the bearer token.
	AccessToken string

	// BaseURL overrides the API endpoint, mainly for tests.
	// Defaults to https://api.line.me when empty.
	BaseURL string

	// Timeout is the HTTP request timeout. Defaults to 10 s.
	Timeout time.Duration
}

// Client delivers replies through the LINE Messaging API.
// It is safe for concurrent use.
type Client struct {
	cfg    ClientConfig
	client *http.Client
}

// NewClient creates a Client from the given configuration.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultAPIBase
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultClientTimeout
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// --- reply wire types ---

type replyRequest struct {
	ReplyToken string         `json:"replyToken"`
	Messages   []replyMessage `json:"messages"`
}

type replyMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends a single text message back to the chat identified by the
// event's reply token. Reply tokens are single-use and short-lived; a failed
// reply cannot be retried meaningfully, so callers log and move on.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	body := replyRequest{
		ReplyToken: replyToken,
		Messages:   []replyMessage{{Type: "text", Text: text}},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("line: marshal reply: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/v2/bot/message/reply",
		bytes.NewReader(data),
	)
	if err != nil {
		return fmt.Errorf("line: create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.AccessToken)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("line: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The error body is short JSON; include a bounded slice of it.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("line: reply rejected (HTTP %d): %s", resp.StatusCode, b)
	}
	return nil
}
