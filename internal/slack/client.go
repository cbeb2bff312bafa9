// Package slack renders proposals to the approval surface and carries
// approval clicks back in. It owns no approval semantics; the
// orchestrator interprets the events it produces.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultAPIRoot = "https://slack.com/api"

// Slack tier-3 methods allow ~50 requests per minute.
const (
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5
)

// Messenger posts and updates presentation messages. The message
// timestamp returned by PostMessage is the presentation handle that
// keys the pending proposal.
type Messenger interface {
	PostMessage(ctx context.Context, channel, text string, blocks []Block) (string, error)
	UpdateMessage(ctx context.Context, channel, ts, text string, blocks []Block) error
}

// Client is a Messenger backed by the Slack Web API.
type Client struct {
	botToken   string
	apiRoot    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Slack client.
func NewClient(botToken, apiRoot string) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("slack bot token required")
	}
	if apiRoot == "" {
		apiRoot = defaultAPIRoot
	}
	return &Client{
		botToken: botToken,
		apiRoot:  strings.TrimRight(apiRoot, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(defaultRateLimit), defaultBurst),
	}, nil
}

type apiAck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	TS    string `json:"ts"`
}

// PostMessage posts a message and returns its timestamp.
func (c *Client) PostMessage(ctx context.Context, channel, text string, blocks []Block) (string, error) {
	payload := map[string]any{
		"channel": channel,
		"text":    text,
	}
	if len(blocks) > 0 {
		payload["blocks"] = blocks
	}

	ack, err := c.call(ctx, "chat.postMessage", payload)
	if err != nil {
		return "", err
	}
	return ack.TS, nil
}

// UpdateMessage replaces an existing message in place.
func (c *Client) UpdateMessage(ctx context.Context, channel, ts, text string, blocks []Block) error {
	payload := map[string]any{
		"channel": channel,
		"ts":      ts,
		"text":    text,
	}
	// chat.update keeps old blocks unless explicitly replaced, so an
	// empty slice is sent as-is to clear them.
	if blocks != nil {
		payload["blocks"] = blocks
	}

	_, err := c.call(ctx, "chat.update", payload)
	return err
}

func (c *Client) call(ctx context.Context, method string, payload map[string]any) (*apiAck, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiRoot+"/"+method, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.botToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slack api request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("slack api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var ack apiAck
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return nil, fmt.Errorf("failed to parse slack response: %w", err)
	}
	if !ack.OK {
		return nil, fmt.Errorf("slack api error: %s", ack.Error)
	}
	return &ack, nil
}
