// Package setup runs the interactive configuration wizard.
package setup

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iishyfishyy/llmterm/internal/catalog"
	"github.com/iishyfishyy/llmterm/internal/config"
	"github.com/iishyfishyy/llmterm/internal/logger"
	"github.com/iishyfishyy/llmterm/internal/provider"
	"github.com/iishyfishyy/llmterm/internal/ui"
)

// FallbackTokenLimit bounds max_output_tokens when the model's context length
// is unknown.
const FallbackTokenLimit = 4096

// Fetcher lists the aggregator's models.
type Fetcher interface {
	Fetch(ctx context.Context, credential string) ([]catalog.Entry, error)
}

// Wizard asks the user which provider and token budget to use.
type Wizard struct {
	Prompter   ui.Prompter
	Registry   provider.Registry
	Catalog    Fetcher
	HTTPClient *http.Client
	Log        *zap.Logger
}

var providerOptions = []string{
	"OpenAI gpt-4o-mini",
	"OpenAI gpt-4o",
	"Ollama (local)",
	"OpenRouter",
}

// Run asks until a usable configuration has been chosen.
func (w *Wizard) Run(ctx context.Context) (*config.Config, error) {
	ui.ShowSection("llmterm setup")

	for {
		idx, err := w.Prompter.Select("Select a model provider:", providerOptions, 0)
		if err != nil {
			return nil, err
		}

		sel, limit, ok, err := w.chooseProvider(ctx, idx)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		tokens, err := w.askMaxTokens(limit)
		if err != nil {
			return nil, err
		}

		logger.OrNop(w.Log).Debug("configuration chosen",
			zap.String("provider", provider.Label(sel)),
			zap.Int("max_output_tokens", tokens))
		return &config.Config{Provider: sel, MaxOutputTokens: tokens}, nil
	}
}

// chooseProvider resolves menu option idx to a selection and the upper bound
// for its output tokens. ok is false when the user must choose again.
func (w *Wizard) chooseProvider(ctx context.Context, idx int) (provider.Selection, int, bool, error) {
	switch idx {
	case 0, 1:
		var sel provider.Selection = provider.HostedSmall{}
		if idx == 1 {
			sel = provider.HostedLarge{}
		}
		if _, ok := w.checkCredential(sel); !ok {
			return nil, 0, false, nil
		}
		return sel, provider.HostedContextLength, true, nil

	case 2:
		model, err := w.Prompter.Input("Ollama model name", provider.DefaultLocalModel)
		if err != nil {
			return nil, 0, false, err
		}
		model = strings.TrimSpace(model)
		if model == "" {
			model = provider.DefaultLocalModel
		}
		if !w.localServerRunning(ctx) {
			ui.ShowWarning("Ollama does not appear to be running on " + w.Registry.LocalBaseURL)
			ui.ShowInfo("Start it with: ollama serve")
		}
		return provider.Local{Model: model}, FallbackTokenLimit, true, nil

	case 3:
		return w.chooseAggregatorModel(ctx)

	default:
		return nil, 0, false, fmt.Errorf("invalid provider option %d", idx)
	}
}

func (w *Wizard) chooseAggregatorModel(ctx context.Context) (provider.Selection, int, bool, error) {
	credential, ok := w.checkCredential(provider.Aggregator{})
	if !ok {
		return nil, 0, false, nil
	}

	ui.ShowInfo("Fetching available models...")
	entries, err := w.Catalog.Fetch(ctx, credential)
	if err != nil {
		ui.ShowError("Could not fetch model list: " + err.Error())
		model, err := w.Prompter.Input("Enter an OpenRouter model ID manually", "")
		if err != nil {
			return nil, 0, false, err
		}
		model = strings.TrimSpace(model)
		if model == "" {
			ui.ShowWarning("No model entered")
			return nil, 0, false, nil
		}
		return provider.Aggregator{Model: model}, FallbackTokenLimit, true, nil
	}

	if len(entries) == 0 {
		ui.ShowWarning("OpenRouter returned no usable models")
		return nil, 0, false, nil
	}

	labels := make([]string, len(entries))
	for i, e := range entries {
		labels[i] = fmt.Sprintf("%s (%d tokens)", e.ID, *e.ContextLength)
	}
	idx, err := w.Prompter.Select("Select a model:", labels, 0)
	if err != nil {
		return nil, 0, false, err
	}
	if idx < 0 || idx >= len(entries) {
		return nil, 0, false, fmt.Errorf("invalid model option %d", idx)
	}

	chosen := entries[idx]
	limit := *chosen.ContextLength
	if limit <= 0 {
		limit = FallbackTokenLimit
	}
	return provider.Aggregator{Model: chosen.ID}, limit, true, nil
}

// checkCredential reports a missing credential and tells the user how to set
// it.
func (w *Wizard) checkCredential(sel provider.Selection) (string, bool) {
	credential, err := w.Registry.Credential(sel)
	if err == nil {
		return credential, true
	}

	var cfgErr *provider.ConfigurationError
	if errors.As(err, &cfgErr) {
		ui.ShowError(cfgErr.Error())
		ui.ShowInfo(fmt.Sprintf("Set it with: export %s=<your key>", cfgErr.EnvVar))
		ui.ShowInfo("Then run llmterm --config again, or choose another provider.")
	} else {
		ui.ShowError(err.Error())
	}
	return "", false
}

func (w *Wizard) askMaxTokens(limit int) (int, error) {
	def := config.DefaultMaxOutputTokens
	if def > limit {
		def = limit
	}

	for {
		answer, err := w.Prompter.Input(
			fmt.Sprintf("Max output tokens (1-%d)", limit),
			strconv.Itoa(def),
		)
		if err != nil {
			return 0, err
		}

		answer = strings.TrimSpace(answer)
		if answer == "" {
			return def, nil
		}

		n, err := strconv.Atoi(answer)
		switch {
		case err != nil:
			ui.ShowWarning(fmt.Sprintf("%q is not a number", answer))
		case n <= 0:
			ui.ShowWarning("Max output tokens must be positive")
		case n > limit:
			ui.ShowWarning(fmt.Sprintf("Max output tokens cannot exceed %d", limit))
		default:
			return n, nil
		}
	}
}

// localServerRunning checks the local server's model listing endpoint.
func (w *Wizard) localServerRunning(ctx context.Context) bool {
	client := w.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}

	base := strings.TrimSuffix(strings.TrimSuffix(w.Registry.LocalBaseURL, "/"), "/v1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/api/tags", nil)
	if err != nil {
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		logger.OrNop(w.Log).Debug("local server check failed", zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
