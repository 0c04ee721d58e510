package agent

import (
	"context"
	"net/http"
	"runtime"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"github.com/iishyfishyy/llmterm/internal/config"
	"github.com/iishyfishyy/llmterm/internal/logger"
	"github.com/iishyfishyy/llmterm/internal/provider"
	"github.com/iishyfishyy/llmterm/internal/shell"
)

// Temperature is fixed for every completion.
const Temperature = 0.5

// Engine implements Agent against any OpenAI-compatible chat endpoint.
type Engine struct {
	cfg        config.Config
	registry   provider.Registry
	flavor     shell.Flavor
	goos       string
	httpClient *http.Client
	log        *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithHTTPClient sets the client used for chat completion requests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) { e.httpClient = c }
}

// WithGOOS overrides the operating system named in the system prompt.
func WithGOOS(goos string) Option {
	return func(e *Engine) { e.goos = goos }
}

// WithLogger sets the diagnostic logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// New creates an engine for the configured provider.
func New(cfg config.Config, reg provider.Registry, flavor shell.Flavor, opts ...Option) *Engine {
	e := &Engine{
		cfg:      cfg,
		registry: reg,
		flavor:   flavor,
		goos:     runtime.GOOS,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = logger.OrNop(e.log)
	return e
}

// SystemPrompt returns the instruction sent with every request.
func (e *Engine) SystemPrompt() string {
	return provider.SystemPrompt(e.flavor.DisplayName(), provider.OSName(e.goos))
}

// TranslateToCommand sends request to the configured provider.
func (e *Engine) TranslateToCommand(ctx context.Context, request string) (string, bool, error) {
	target, err := e.registry.Resolve(e.cfg.Provider)
	if err != nil {
		return "", false, err
	}

	opts := []option.RequestOption{
		option.WithBaseURL(target.BaseURL),
		option.WithAPIKey(target.Credential),
		option.WithMaxRetries(0),
	}
	if e.httpClient != nil {
		opts = append(opts, option.WithHTTPClient(e.httpClient))
	}
	client := openai.NewClient(opts...)

	e.log.Debug("requesting completion",
		zap.String("provider", provider.Label(e.cfg.Provider)),
		zap.String("model", target.Model),
		zap.String("base_url", target.BaseURL),
		zap.Int("max_tokens", e.cfg.MaxOutputTokens))

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(target.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{OfString: openai.String(e.SystemPrompt())},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{OfString: openai.String(request)},
				},
			},
		},
		MaxTokens:   openai.Int(int64(e.cfg.MaxOutputTokens)),
		Temperature: openai.Float(Temperature),
	})
	if err != nil {
		return "", false, &CompletionError{Provider: e.cfg.Provider, Err: err}
	}

	if resp == nil || len(resp.Choices) == 0 {
		e.log.Debug("completion returned no choices")
		return "", false, nil
	}

	command := strings.TrimSpace(resp.Choices[0].Message.Content)
	if command == "" {
		e.log.Debug("completion returned empty content")
		return "", false, nil
	}
	return command, true, nil
}
