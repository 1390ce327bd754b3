package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestGenerateClientComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			http.NotFound(w, r)
			return
		}
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
			Stream bool   `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "llama3.2:latest" || req.Stream || req.Prompt != "hello" {
			t.Errorf("unexpected payload: %+v", req)
		}
		_, _ = w.Write([]byte(`{"model":"llama3.2:latest","response":"YES","done":true}`))
	}))
	defer server.Close()

	client := NewGenerateClient(server.URL+"/", "llama3.2:latest", server.Client())
	out, err := client.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if out != "YES" {
		t.Fatalf("unexpected response %q", out)
	}
}

func TestGenerateClientStatusError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	client := NewGenerateClient(server.URL, "missing", server.Client())
	_, err := client.Complete(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGenerateClientListModels(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" || r.Method != http.MethodGet {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"},{"name":"mistral:7b"}]}`))
	}))
	defer server.Close()

	client := NewGenerateClient(server.URL, "llama3.2:latest", server.Client())
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels error: %v", err)
	}
	if !reflect.DeepEqual(models, []string{"llama3.2:latest", "mistral:7b"}) {
		t.Fatalf("unexpected models: %v", models)
	}
}

func TestChatClientComplete(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("ollama chat should not send auth, got %q", got)
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "llama3" || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected payload: %+v", req)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"NO"}}]}`))
	}))
	defer server.Close()

	client := NewOllamaChatClient(server.URL, "llama3", server.Client())
	out, err := client.Complete(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if out != "NO" {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestChatClientErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer header")
		}
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	client := NewChatClient(server.URL, "gpt", "secret", server.Client())
	if _, err := client.Complete(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for empty choices")
	}

	var nilClient *ChatClient
	if _, err := nilClient.Complete(context.Background(), "prompt"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestGenerateClientPull(t *testing.T) {
	t.Parallel()

	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/pull" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		if got["model"] == "broken" {
			_, _ = w.Write([]byte(`{"error":"pull model manifest: file does not exist"}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	// A pull outlives the completion timeout; only the context bounds it.
	client := NewGenerateClient(server.URL, "llama3.2:latest", &http.Client{Timeout: time.Nanosecond})

	if err := client.Pull(context.Background(), ""); err != nil {
		t.Fatalf("Pull error: %v", err)
	}
	want := map[string]any{"model": "llama3.2:latest", "stream": false}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected pull payload %v", got)
	}

	err := client.Pull(context.Background(), "broken")
	if err == nil || !strings.Contains(err.Error(), "file does not exist") {
		t.Fatalf("expected pull error, got %v", err)
	}
}
