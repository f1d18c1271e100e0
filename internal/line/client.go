// internal/line/client.go
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

// DefaultBaseURL is the production LINE Messaging API endpoint.
const DefaultBaseURL = "https://api.line.me"

// MaxMessageLength is the platform limit for one text message.
const MaxMessageLength = 5000

// Config holds client configuration. BaseURL is overridable for tests.
type Config struct {
	BaseURL     string
	AccessToken string
}

// Client sends replies through the LINE Messaging API.
type Client struct {
	config     *Config
	httpClient *http.Client
}

// NewClient creates a reply client with the given configuration.
func NewClient(config *Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// replyRequest is the reply endpoint request body.
type replyRequest struct {
	ReplyToken string         `json:"replyToken"`
	Messages   []replyMessage `json:"messages"`
}

type replyMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Reply sends one text message using the event's single-use reply token.
// Delivery is attempted exactly once; the caller decides what to do with a
// failure.
func (c *Client) Reply(ctx context.Context, replyToken, text string) error {
	body, err := json.Marshal(replyRequest{
		ReplyToken: replyToken,
		Messages:   []replyMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return fmt.Errorf("marshaling reply: %w", err)
	}

	url := c.config.BaseURL + "/v2/bot/message/reply"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending reply: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("reply API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return nil
}
