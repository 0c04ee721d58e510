package agent

import (
	"context"
	"fmt"

	"github.com/iishyfishyy/llmterm/internal/provider"
)

// Agent translates a natural language request into a single shell command.
type Agent interface {
	// TranslateToCommand returns the generated command. ok is false when the
	// model produced no command, which is not an error.
	TranslateToCommand(ctx context.Context, request string) (command string, ok bool, err error)
}

// CompletionError reports a failed chat completion against a provider.
type CompletionError struct {
	Provider provider.Selection
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", provider.Label(e.Provider), e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }
