package provider

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind is the persisted tag of a Selection.
type Kind string

const (
	KindHostedLarge Kind = "openai-gpt-4o"
	KindHostedSmall Kind = "openai-gpt-4o-mini"
	KindLocal       Kind = "ollama"
	KindAggregator  Kind = "openrouter"
)

// Spec is the serialized form of a Selection.
type Spec struct {
	Kind  Kind   `yaml:"kind"`
	Model string `yaml:"model,omitempty"`
}

// UnmarshalYAML rejects unknown provider kinds.
func (k *Kind) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch Kind(raw) {
	case KindHostedLarge, KindHostedSmall, KindLocal, KindAggregator:
		*k = Kind(raw)
		return nil
	default:
		return fmt.Errorf("line %d: unknown provider kind %q", value.Line, raw)
	}
}

// Encode converts a selection to its serialized form.
func Encode(sel Selection) Spec {
	switch s := sel.(type) {
	case HostedLarge:
		return Spec{Kind: KindHostedLarge}
	case HostedSmall:
		return Spec{Kind: KindHostedSmall}
	case Local:
		return Spec{Kind: KindLocal, Model: s.Model}
	case Aggregator:
		return Spec{Kind: KindAggregator, Model: s.Model}
	default:
		panic(fmt.Sprintf("provider: unknown selection %T", sel))
	}
}

// Decode converts a serialized spec back into a selection. String-carrying
// kinds require a non-empty model.
func Decode(spec Spec) (Selection, error) {
	switch spec.Kind {
	case KindHostedLarge:
		return HostedLarge{}, nil
	case KindHostedSmall:
		return HostedSmall{}, nil
	case KindLocal:
		if spec.Model == "" {
			return nil, fmt.Errorf("provider %q requires a model", spec.Kind)
		}
		return Local{Model: spec.Model}, nil
	case KindAggregator:
		if spec.Model == "" {
			return nil, fmt.Errorf("provider %q requires a model", spec.Kind)
		}
		return Aggregator{Model: spec.Model}, nil
	case "":
		return nil, fmt.Errorf("provider kind is missing")
	default:
		return nil, fmt.Errorf("unknown provider kind %q", spec.Kind)
	}
}
