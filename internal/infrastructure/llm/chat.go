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

// ChatClient implements ports.Completer against OpenAI-compatible chat APIs.
// Ollama serves one under /v1, which makes it the secondary invocation path.
type ChatClient struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.Completer = (*ChatClient)(nil)

// NewChatClient builds a client for <baseURL>/chat/completions.
func NewChatClient(baseURL, model, apiKey string, client *http.Client) *ChatClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &ChatClient{
		endpoint:   strings.TrimRight(baseURL, "/") + "/chat/completions",
		model:      model,
		apiKey:     apiKey,
		httpClient: client,
	}
}

// NewOllamaChatClient points the chat client at Ollama's OpenAI-compatible API.
func NewOllamaChatClient(host, model string, client *http.Client) *ChatClient {
	return NewChatClient(strings.TrimRight(host, "/")+"/v1", model, "", client)
}

// Complete posts the prompt as a single user message and returns the first choice.
func (c *ChatClient) Complete(ctx context.Context, prompt string) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chat client is nil")
	}
	if c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chat client misconfigured")
	}

	body, err := json.Marshal(map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"stream": false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send chat completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat response has no choices")
	}

	return decoded.Choices[0].Message.Content, nil
}
