package provider

import (
	"errors"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func envFrom(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func TestRegistryResolve(t *testing.T) {
	reg := DefaultRegistry()
	reg.Getenv = envFrom(map[string]string{
		HostedEnvVar:     "sk-hosted",
		AggregatorEnvVar: "sk-or",
	})

	tests := []struct {
		name string
		sel  Selection
		want Target
	}{
		{"hosted large", HostedLarge{}, Target{Model: "gpt-4o", BaseURL: reg.HostedBaseURL, Credential: "sk-hosted"}},
		{"hosted small", HostedSmall{}, Target{Model: "gpt-4o-mini", BaseURL: reg.HostedBaseURL, Credential: "sk-hosted"}},
		{"local", Local{Model: "qwen2.5-coder"}, Target{Model: "qwen2.5-coder", BaseURL: reg.LocalBaseURL, Credential: LocalCredential}},
		{"aggregator", Aggregator{Model: "mistralai/mistral-7b-instruct"}, Target{Model: "mistralai/mistral-7b-instruct", BaseURL: reg.AggregatorBaseURL, Credential: "sk-or"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := reg.Resolve(tt.sel)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestRegistryMissingCredential(t *testing.T) {
	reg := DefaultRegistry()
	reg.Getenv = envFrom(map[string]string{HostedEnvVar: "sk-hosted"})

	_, err := reg.Resolve(Aggregator{Model: "openai/gpt-4o"})
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("Resolve() error = %v, want *ConfigurationError", err)
	}
	if cfgErr.EnvVar != AggregatorEnvVar {
		t.Errorf("EnvVar = %q, want %q", cfgErr.EnvVar, AggregatorEnvVar)
	}

	// Local never needs a credential.
	reg.Getenv = envFrom(nil)
	if _, err := reg.Resolve(Local{Model: "llama3.1"}); err != nil {
		t.Errorf("Resolve(local) error = %v", err)
	}
	if _, err := reg.Resolve(HostedSmall{}); !errors.As(err, &cfgErr) {
		t.Errorf("Resolve(hosted) error = %v, want *ConfigurationError", err)
	}
}

func TestSpecRoundTrip(t *testing.T) {
	for _, sel := range []Selection{HostedLarge{}, HostedSmall{}, Local{Model: "llama3.1"}, Aggregator{Model: "a/b"}} {
		got, err := Decode(Encode(sel))
		if err != nil {
			t.Fatalf("Decode(Encode(%#v)) error = %v", sel, err)
		}
		if got != sel {
			t.Errorf("Decode(Encode(%#v)) = %#v", sel, got)
		}
	}
}

func TestDecodeRejectsEmptyModel(t *testing.T) {
	if _, err := Decode(Spec{Kind: KindAggregator}); err == nil {
		t.Error("expected error for aggregator without model")
	}
	if _, err := Decode(Spec{Kind: KindLocal}); err == nil {
		t.Error("expected error for local without model")
	}
	if _, err := Decode(Spec{}); err == nil {
		t.Error("expected error for missing kind")
	}
}

func TestKindUnmarshalYAML(t *testing.T) {
	var spec Spec
	if err := yaml.Unmarshal([]byte("kind: ollama\nmodel: llama3.1\n"), &spec); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if spec.Kind != KindLocal || spec.Model != "llama3.1" {
		t.Errorf("spec = %+v", spec)
	}

	err := yaml.Unmarshal([]byte("kind: anthropic\n"), &spec)
	if err == nil || !strings.Contains(err.Error(), "unknown provider kind") {
		t.Errorf("Unmarshal(unknown kind) error = %v", err)
	}
}

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt("Z Shell (zsh)", OSName("darwin"))
	if !strings.Contains(prompt, "Z Shell (zsh) compatible") {
		t.Error("shell name not substituted")
	}
	if !strings.Contains(prompt, "running on the macos operating system") {
		t.Error("OS name not substituted")
	}
	if !strings.Contains(prompt, "return an empty string") {
		t.Error("empty-string escape hatch missing")
	}
	if !strings.Contains(prompt, "operating system. You\n\n            only respond") {
		t.Error("instruction lines not separated by a blank line")
	}
	if got := strings.Count(prompt, "\n\n"); got != 6 {
		t.Errorf("prompt has %d blank-line breaks, want 6", got)
	}
	if !strings.HasSuffix(prompt, "stated otherwise.\n        ") {
		t.Errorf("prompt ending changed: %q", prompt[len(prompt)-30:])
	}
}
