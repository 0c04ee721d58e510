// Package provider describes the supported model backends and derives, for a
// chosen backend, the wire model name, endpoint and credential used to reach it.
package provider

import (
	"fmt"
	"os"
)

// Selection is the backend chosen at configuration time. The set of
// implementations is closed: HostedLarge, HostedSmall, Local and Aggregator.
type Selection interface {
	isSelection()
}

// HostedLarge is the larger model of the hosted API.
type HostedLarge struct{}

// HostedSmall is the smaller, cheaper model of the hosted API.
type HostedSmall struct{}

// Local is a model served by a local inference server.
type Local struct {
	Model string
}

// Aggregator is a model reached through the aggregator proxy.
type Aggregator struct {
	Model string
}

func (HostedLarge) isSelection() {}
func (HostedSmall) isSelection() {}
func (Local) isSelection()       {}
func (Aggregator) isSelection()  {}

const (
	HostedEnvVar     = "OPENAI_API_KEY"
	AggregatorEnvVar = "OPENROUTER_API_KEY"

	// LocalCredential is sent to the local server, which ignores it.
	LocalCredential = "ollama"

	DefaultLocalModel = "llama3.1"

	hostedLargeModel = "gpt-4o"
	hostedSmallModel = "gpt-4o-mini"

	// HostedContextLength is the context window of both hosted models.
	HostedContextLength = 128_000
)

// Registry holds the base URLs and environment lookup used to reach each
// backend.
type Registry struct {
	HostedBaseURL     string
	LocalBaseURL      string
	AggregatorBaseURL string
	Getenv            func(string) string
}

// DefaultRegistry returns the registry pointing at the public endpoints.
func DefaultRegistry() Registry {
	return Registry{
		HostedBaseURL:     "https://api.openai.com/v1/",
		LocalBaseURL:      "http://localhost:11434/v1/",
		AggregatorBaseURL: "https://openrouter.ai/api/v1/",
		Getenv:            os.Getenv,
	}
}

// Target is everything needed to issue a chat completion for a selection.
type Target struct {
	Model      string
	BaseURL    string
	Credential string
}

// Resolve derives the wire model name, endpoint and credential for sel.
func (r Registry) Resolve(sel Selection) (Target, error) {
	credential, err := r.Credential(sel)
	if err != nil {
		return Target{}, err
	}
	return Target{
		Model:      ModelName(sel),
		BaseURL:    r.BaseURL(sel),
		Credential: credential,
	}, nil
}

// BaseURL returns the API base URL for sel.
func (r Registry) BaseURL(sel Selection) string {
	switch sel.(type) {
	case HostedLarge, HostedSmall:
		return r.HostedBaseURL
	case Local:
		return r.LocalBaseURL
	case Aggregator:
		return r.AggregatorBaseURL
	default:
		panic(fmt.Sprintf("provider: unknown selection %T", sel))
	}
}

// Credential reads the bearer credential for sel. Hosted and aggregator
// backends fail with a *ConfigurationError when their variable is unset.
func (r Registry) Credential(sel Selection) (string, error) {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	switch sel.(type) {
	case HostedLarge, HostedSmall, Aggregator:
		envVar := CredentialEnv(sel)
		value := getenv(envVar)
		if value == "" {
			return "", &ConfigurationError{
				Provider: Label(sel),
				EnvVar:   envVar,
				Reason:   "missing credential",
			}
		}
		return value, nil
	case Local:
		return LocalCredential, nil
	default:
		panic(fmt.Sprintf("provider: unknown selection %T", sel))
	}
}

// CredentialEnv names the environment variable holding the credential for
// sel, or "" when none is needed.
func CredentialEnv(sel Selection) string {
	switch sel.(type) {
	case HostedLarge, HostedSmall:
		return HostedEnvVar
	case Aggregator:
		return AggregatorEnvVar
	case Local:
		return ""
	default:
		panic(fmt.Sprintf("provider: unknown selection %T", sel))
	}
}

// ModelName returns the model identifier sent on the wire.
func ModelName(sel Selection) string {
	switch s := sel.(type) {
	case HostedLarge:
		return hostedLargeModel
	case HostedSmall:
		return hostedSmallModel
	case Local:
		return s.Model
	case Aggregator:
		return s.Model
	default:
		panic(fmt.Sprintf("provider: unknown selection %T", sel))
	}
}

// Label is a short description for menus and messages.
func Label(sel Selection) string {
	switch s := sel.(type) {
	case HostedLarge:
		return "OpenAI (" + hostedLargeModel + ")"
	case HostedSmall:
		return "OpenAI (" + hostedSmallModel + ")"
	case Local:
		if s.Model == "" {
			return "Ollama"
		}
		return "Ollama (" + s.Model + ")"
	case Aggregator:
		if s.Model == "" {
			return "OpenRouter"
		}
		return "OpenRouter (" + s.Model + ")"
	default:
		panic(fmt.Sprintf("provider: unknown selection %T", sel))
	}
}

// ConfigurationError reports a provider that cannot be used as configured.
type ConfigurationError struct {
	Provider string
	EnvVar   string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	if e.EnvVar != "" {
		return fmt.Sprintf("%s: %s (%s environment variable not set)", e.Provider, e.Reason, e.EnvVar)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
}
