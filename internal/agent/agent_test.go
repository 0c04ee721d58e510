package agent

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/iishyfishyy/llmterm/internal/config"
	"github.com/iishyfishyy/llmterm/internal/provider"
	"github.com/iishyfishyy/llmterm/internal/shell"
)

// TestAgentInterface ensures implementations satisfy the Agent interface
func TestAgentInterface(t *testing.T) {
	var _ Agent = (*Engine)(nil)
	var _ Agent = (*MockAgent)(nil)
}

// MockAgent for testing code that depends on Agent interface
type MockAgent struct {
	TranslateFn func(context.Context, string) (string, bool, error)
}

func (m *MockAgent) TranslateToCommand(ctx context.Context, request string) (string, bool, error) {
	if m.TranslateFn != nil {
		return m.TranslateFn(ctx, request)
	}
	return "echo mock", true, nil
}

type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(content string) string {
	raw, _ := json.Marshal(content)
	return `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"m","choices":[` +
		`{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":` + string(raw) + `}}]}`
}

// newServer returns a chat endpoint that records the request and replies
// with reply.
func newServer(t *testing.T, status int, reply string, got *chatRequest, auth *string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth != nil {
			*auth = r.Header.Get("Authorization")
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(server.Close)
	return server
}

func testRegistry(url string, env map[string]string) provider.Registry {
	return provider.Registry{
		HostedBaseURL:     url + "/hosted/",
		LocalBaseURL:      url + "/local/",
		AggregatorBaseURL: url + "/aggregator/",
		Getenv:            func(k string) string { return env[k] },
	}
}

func TestEngineRequestShape(t *testing.T) {
	var req chatRequest
	var auth string
	server := newServer(t, http.StatusOK, completionBody("ls -la"), &req, &auth)

	cfg := config.Config{Provider: provider.Aggregator{Model: "mistralai/mistral-7b-instruct"}, MaxOutputTokens: 150}
	reg := testRegistry(server.URL, map[string]string{provider.AggregatorEnvVar: "sk-or"})
	engine := New(cfg, reg, shell.Zsh, WithGOOS("darwin"))

	cmd, ok, err := engine.TranslateToCommand(context.Background(), "list files")
	if err != nil {
		t.Fatalf("TranslateToCommand() error = %v", err)
	}
	if !ok || cmd != "ls -la" {
		t.Fatalf("TranslateToCommand() = %q, %v", cmd, ok)
	}

	if auth != "Bearer sk-or" {
		t.Errorf("Authorization = %q", auth)
	}
	if req.Model != "mistralai/mistral-7b-instruct" {
		t.Errorf("model = %q", req.Model)
	}
	if req.MaxTokens != 150 {
		t.Errorf("max_tokens = %d, want 150", req.MaxTokens)
	}
	if req.Temperature != 0.5 {
		t.Errorf("temperature = %v, want 0.5", req.Temperature)
	}
	if len(req.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(req.Messages))
	}
	if req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
		t.Errorf("roles = %q, %q", req.Messages[0].Role, req.Messages[1].Role)
	}
	if req.Messages[0].Content != engine.SystemPrompt() {
		t.Errorf("system message does not match rendered prompt")
	}
	if !strings.Contains(req.Messages[0].Content, "running on the macos operating system") {
		t.Errorf("system prompt missing OS: %q", req.Messages[0].Content)
	}
	if req.Messages[1].Content != "list files" {
		t.Errorf("user message = %q", req.Messages[1].Content)
	}
}

func TestEngineLocalUsesPlaceholderCredential(t *testing.T) {
	var req chatRequest
	var auth string
	server := newServer(t, http.StatusOK, completionBody("  df -h\n"), &req, &auth)

	cfg := config.Config{Provider: provider.Local{Model: "llama3.1"}, MaxOutputTokens: 64}
	engine := New(cfg, testRegistry(server.URL, nil), shell.Bash)

	cmd, ok, err := engine.TranslateToCommand(context.Background(), "disk usage")
	if err != nil || !ok {
		t.Fatalf("TranslateToCommand() = %q, %v, %v", cmd, ok, err)
	}
	if cmd != "df -h" {
		t.Errorf("command = %q, want trimmed %q", cmd, "df -h")
	}
	if auth != "Bearer "+provider.LocalCredential {
		t.Errorf("Authorization = %q", auth)
	}
	if req.Model != "llama3.1" {
		t.Errorf("model = %q", req.Model)
	}
}

func TestEngineEmptyContentIsNoCommand(t *testing.T) {
	replies := map[string]string{
		"empty string": completionBody(""),
		"whitespace":   completionBody("  \n"),
		"null content": `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":null}}]}`,
		"no choices":   `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`,
	}

	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			server := newServer(t, http.StatusOK, reply, nil, nil)
			cfg := config.Config{Provider: provider.HostedSmall{}, MaxOutputTokens: 10}
			reg := testRegistry(server.URL, map[string]string{provider.HostedEnvVar: "sk-test"})

			cmd, ok, err := New(cfg, reg, shell.Bash).TranslateToCommand(context.Background(), "???")
			if err != nil {
				t.Fatalf("TranslateToCommand() error = %v", err)
			}
			if ok || cmd != "" {
				t.Errorf("TranslateToCommand() = %q, %v; want no command", cmd, ok)
			}
		})
	}
}

func TestEngineAPIFailure(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	cfg := config.Config{Provider: provider.HostedLarge{}, MaxOutputTokens: 10}
	reg := testRegistry(server.URL, map[string]string{provider.HostedEnvVar: "sk-test"})

	_, ok, err := New(cfg, reg, shell.Bash).TranslateToCommand(context.Background(), "list files")
	var compErr *CompletionError
	if !errors.As(err, &compErr) {
		t.Fatalf("error = %v, want *CompletionError", err)
	}
	if ok {
		t.Error("ok = true on failure")
	}
	if compErr.Provider != (provider.HostedLarge{}) {
		t.Errorf("Provider = %#v", compErr.Provider)
	}
	if calls != 1 {
		t.Errorf("provider called %d times, want exactly 1", calls)
	}
}

func TestEngineMissingCredential(t *testing.T) {
	cfg := config.Config{Provider: provider.HostedSmall{}, MaxOutputTokens: 10}
	reg := testRegistry("http://127.0.0.1:1", nil)

	_, _, err := New(cfg, reg, shell.Bash).TranslateToCommand(context.Background(), "x")
	var cfgErr *provider.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error = %v, want *provider.ConfigurationError", err)
	}
	var compErr *CompletionError
	if errors.As(err, &compErr) {
		t.Error("configuration error wrapped as completion error")
	}
}
