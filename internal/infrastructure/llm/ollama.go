package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"TweetCleaner/internal/ports"
)

// GenerateClient talks to Ollama's native /api/generate endpoint.
type GenerateClient struct {
	host  string
	model string
	http  *http.Client
}

var _ ports.Completer = (*GenerateClient)(nil)

// NewGenerateClient creates a reusable HTTP client. A nil client gets a 60s default.
func NewGenerateClient(host, model string, client *http.Client) *GenerateClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &GenerateClient{
		host:  strings.TrimRight(host, "/"),
		model: model,
		http:  client,
	}
}

// Model returns the model identifier sent with every request.
func (c *GenerateClient) Model() string {
	return c.model
}

// Complete sends a single non-streaming generate request and returns the model text.
func (c *GenerateClient) Complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":  c.model,
		"prompt": prompt,
		"stream": false,
	}

	var resp struct {
		Model    string `json:"model"`
		Response string `json:"response"`
		Error    string `json:"error"`
	}

	if err := c.do(ctx, http.MethodPost, "/api/generate", payload, &resp); err != nil {
		return "", err
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", resp.Error)
	}

	return resp.Response, nil
}

// ListModels returns the names reported by /api/tags.
func (c *GenerateClient) ListModels(ctx context.Context) ([]string, error) {
	var resp struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	if err := c.do(ctx, http.MethodGet, "/api/tags", nil, &resp); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// Pull downloads a model onto the Ollama host; an empty name pulls the configured model.
// Pulls can take minutes, so only ctx bounds the request.
func (c *GenerateClient) Pull(ctx context.Context, model string) error {
	if model == "" {
		model = c.model
	}

	client := *c.http
	client.Timeout = 0

	var resp struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	payload := map[string]any{"model": model, "stream": false}
	if err := c.send(ctx, &client, http.MethodPost, "/api/pull", payload, &resp); err != nil {
		return err
	}
	if resp.Error != "" {
		return fmt.Errorf("ollama error: %s", resp.Error)
	}
	if resp.Status != "success" {
		return fmt.Errorf("pull %s: unexpected status %q", model, resp.Status)
	}
	return nil
}

func (c *GenerateClient) do(ctx context.Context, method, path string, payload any, v any) error {
	return c.send(ctx, c.http, method, path, payload, v)
}

func (c *GenerateClient) send(ctx context.Context, client *http.Client, method, path string, payload any, v any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.host+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
