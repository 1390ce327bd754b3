package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		configPathEnv, logLevelEnv, bearerTokenEnv, consumerKeyEnv, consumerSecretEnv,
		accessTokenEnv, accessTokenSecretEnv, usernameEnv, ollamaHostEnv, ollamaModelEnv,
		archiveDriverEnv, archiveDSNEnv, telegramTokenEnv, telegramChatIDEnv,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg := Load("")

	if cfg.X.APIBaseURL != "https://api.x.com" {
		t.Fatalf("unexpected api base url: %s", cfg.X.APIBaseURL)
	}
	if cfg.Oracle.Model != "llama3.2:latest" || cfg.Oracle.Host != "http://localhost:11434" {
		t.Fatalf("unexpected oracle config: %+v", cfg.Oracle)
	}
	if cfg.Run.Max != 100 {
		t.Fatalf("expected default max 100, got %d", cfg.Run.Max)
	}
	if !cfg.Oracle.FallbackEnabled() {
		t.Fatalf("fallback should default to enabled")
	}
	if cfg.Archive.Enabled() {
		t.Fatalf("archive should be disabled by default")
	}
	if cfg.Schedule.Location().String() != "UTC" {
		t.Fatalf("unexpected location: %s", cfg.Schedule.Location())
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "config.yaml")
	raw := `
x:
  username: "@someone"
  timeout: 5s
oracle:
  host: "127.0.0.1:11434"
  timeout: 30s
  fallback: false
run:
  max: 50
  keywords: ["politics", "crypto"]
schedule:
  timezone: Europe/Berlin
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(ollamaModelEnv, "mistral")
	t.Setenv(consumerKeyEnv, "ck")
	t.Setenv(accessTokenEnv, "at")

	cfg := Load(path)

	if cfg.X.Username != "someone" {
		t.Fatalf("unexpected username: %q", cfg.X.Username)
	}
	if cfg.X.Timeout != 5*time.Second {
		t.Fatalf("unexpected x timeout: %v", cfg.X.Timeout)
	}
	if cfg.Oracle.Host != "http://127.0.0.1:11434" {
		t.Fatalf("unexpected oracle host: %s", cfg.Oracle.Host)
	}
	if cfg.Oracle.Model != "mistral" {
		t.Fatalf("env should override model, got %s", cfg.Oracle.Model)
	}
	if cfg.Oracle.FallbackEnabled() {
		t.Fatalf("fallback should be disabled by file")
	}
	if cfg.Run.Max != 50 || !reflect.DeepEqual(cfg.Run.Keywords, []string{"politics", "crypto"}) {
		t.Fatalf("unexpected run config: %+v", cfg.Run)
	}
	if cfg.Schedule.Location().String() != "Europe/Berlin" {
		t.Fatalf("unexpected location: %s", cfg.Schedule.Location())
	}

	missing := cfg.X.MissingUserCredentials()
	want := []string{consumerSecretEnv, accessTokenSecretEnv}
	if !reflect.DeepEqual(missing, want) {
		t.Fatalf("missing = %v, want %v", missing, want)
	}
	if cfg.X.HasUserCredentials() {
		t.Fatalf("user credentials should be incomplete")
	}
}

func TestLoadDotEnvDoesNotOverrideEnvironment(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	dotenv := "TWITTER_BEARER_TOKEN=from-file\nTWITTER_CONSUMER_KEY=file-key\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv(consumerKeyEnv, "")
	if err := os.Unsetenv(consumerKeyEnv); err != nil {
		t.Fatalf("unset: %v", err)
	}
	if err := os.Unsetenv(bearerTokenEnv); err != nil {
		t.Fatalf("unset: %v", err)
	}
	t.Setenv(accessTokenEnv, "real-token")

	cfg := Load("")

	if cfg.X.BearerToken != "from-file" {
		t.Fatalf("expected bearer token from .env, got %q", cfg.X.BearerToken)
	}
	if cfg.X.ConsumerKey != "file-key" {
		t.Fatalf("expected consumer key from .env, got %q", cfg.X.ConsumerKey)
	}
	if cfg.X.AccessToken != "real-token" {
		t.Fatalf("environment should win, got %q", cfg.X.AccessToken)
	}
}
