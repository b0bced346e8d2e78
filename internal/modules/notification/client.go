package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client posts templated sends to the email provider's HTTP API.
type Client struct {
	baseURL string
	apiKey  string
	from    string
	httpc   *http.Client
}

func NewClient(baseURL, apiKey, from string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		from:    from,
		httpc:   &http.Client{Timeout: timeout},
	}
}

type sendPayload struct {
	From       string                 `json:"from"`
	To         string                 `json:"to"`
	TemplateID string                 `json:"template_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

func (c *Client) Send(ctx context.Context, req Request) error {
	if c.baseURL == "" || c.apiKey == "" {
		return fmt.Errorf("email provider is not configured")
	}
	body, err := json.Marshal(sendPayload{
		From:       c.from,
		To:         req.To,
		TemplateID: req.TemplateID,
		Data:       req.Data,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/send", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return fmt.Errorf("email provider request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, raw)
	}
	return nil
}
