// Package newsletter wraps the third-party subscription API.
package newsletter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the newsletter provider. A zero BaseURL disables
// forwarding; subscribers are still stored locally.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates a Client for the given provider endpoint.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled reports whether a provider endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

type subscribeRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Subscribe registers the address with the provider.
func (c *Client) Subscribe(ctx context.Context, email, name string) error {
	if !c.Enabled() {
		return nil
	}

	body, err := json.Marshal(subscribeRequest{Email: email, Name: name})
	if err != nil {
		return fmt.Errorf("failed to encode subscribe request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/subscribers", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build subscribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("newsletter provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("newsletter provider returned %d", resp.StatusCode)
	}
	return nil
}

// Unsubscribe removes the address from the provider.
func (c *Client) Unsubscribe(ctx context.Context, email string) error {
	if !c.Enabled() {
		return nil
	}

	body, err := json.Marshal(subscribeRequest{Email: email})
	if err != nil {
		return fmt.Errorf("failed to encode unsubscribe request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/unsubscribe", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build unsubscribe request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("newsletter provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("newsletter provider returned %d", resp.StatusCode)
	}
	return nil
}
