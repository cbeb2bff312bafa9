// Package recordsink persists approved actions as new records in the
// task-tracking store. Unlike the document sink it never looks for an
// existing record to update, so a retried approval creates a duplicate
// record. That asymmetry is an accepted limitation of this intake path.
package recordsink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultAPIRoot = "https://api.airtable.com"

// RecordCreator creates a record in the record store and returns its id.
type RecordCreator interface {
	CreateRecord(ctx context.Context, baseID, table string, fields map[string]any) (string, error)
}

// Client talks to the Airtable REST API.
type Client struct {
	apiKey     string
	apiRoot    string
	httpClient *http.Client
}

// NewClient creates a record-store client.
func NewClient(apiKey, apiRoot string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("airtable API key required")
	}
	if apiRoot == "" {
		apiRoot = defaultAPIRoot
	}
	return &Client{
		apiKey:  apiKey,
		apiRoot: strings.TrimRight(apiRoot, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

type createRequest struct {
	Fields map[string]any `json:"fields"`
}

type createResponse struct {
	ID    string `json:"id"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateRecord creates one record. Every call writes a new record; the
// API offers no conditional-create primitive for this path.
func (c *Client) CreateRecord(ctx context.Context, baseID, table string, fields map[string]any) (string, error) {
	body, err := json.Marshal(createRequest{Fields: fields})
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v0/%s/%s", c.apiRoot, url.PathEscape(baseID), url.PathEscape(table))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("record store request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var parsed createResponse
	if resp.StatusCode != http.StatusOK {
		if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.Error != nil {
			return "", fmt.Errorf("record store error (%d): %s", resp.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("record store error (%d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if parsed.ID == "" {
		return "", fmt.Errorf("record store returned no record id")
	}
	return parsed.ID, nil
}
