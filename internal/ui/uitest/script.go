// Package uitest provides a scripted ui.Prompter for tests.
package uitest

import (
	"github.com/iishyfishyy/llmterm/internal/ui"
)

// Script answers prompts from fixed queues. A prompt asked after its queue
// is exhausted fails with ui.ErrAborted.
type Script struct {
	Confirms []bool
	Selects  []int
	Inputs   []string

	// Asked records every prompt message in order.
	Asked []string
	// Options records the option lists passed to Select.
	Options [][]string
}

var _ ui.Prompter = (*Script)(nil)

func (s *Script) Confirm(message string) (bool, error) {
	s.Asked = append(s.Asked, message)
	if len(s.Confirms) == 0 {
		return false, ui.ErrAborted
	}
	answer := s.Confirms[0]
	s.Confirms = s.Confirms[1:]
	return answer, nil
}

func (s *Script) Select(message string, options []string, def int) (int, error) {
	s.Asked = append(s.Asked, message)
	s.Options = append(s.Options, options)
	if len(s.Selects) == 0 {
		return 0, ui.ErrAborted
	}
	answer := s.Selects[0]
	s.Selects = s.Selects[1:]
	return answer, nil
}

func (s *Script) Input(message, def string) (string, error) {
	s.Asked = append(s.Asked, message)
	if len(s.Inputs) == 0 {
		return "", ui.ErrAborted
	}
	answer := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Exhausted reports whether every scripted answer was consumed.
func (s *Script) Exhausted() bool {
	return len(s.Confirms) == 0 && len(s.Selects) == 0 && len(s.Inputs) == 0
}
