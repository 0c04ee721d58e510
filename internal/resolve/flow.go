// Package resolve drives one prompt from cache lookup through generation,
// confirmation and execution.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iishyfishyy/llmterm/internal/agent"
	"github.com/iishyfishyy/llmterm/internal/executor"
	"github.com/iishyfishyy/llmterm/internal/history"
	"github.com/iishyfishyy/llmterm/internal/logger"
	"github.com/iishyfishyy/llmterm/internal/shell"
	"github.com/iishyfishyy/llmterm/internal/ui"
)

// Cache is the subset of the command cache the flow needs.
type Cache interface {
	Lookup(prompt string) (string, bool)
	Insert(prompt, command string) error
	Invalidate(prompt string) error
}

// Runner executes an accepted command.
type Runner interface {
	Run(ctx context.Context, command string) error
}

// Recorder stores displayed commands.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// Outcome is how a resolution ended.
type Outcome int

const (
	// ExecutedCached means a cached command was accepted and run.
	ExecutedCached Outcome = iota
	// Cancelled means a cached command was declined and kept.
	Cancelled
	// Generated means a new command was shown and cached.
	Generated
	// NoCommand means the model produced nothing.
	NoCommand
	// Failed means the provider call failed.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case ExecutedCached:
		return "executed-cached"
	case Cancelled:
		return "cancelled"
	case Generated:
		return "generated"
	case NoCommand:
		return "no-command"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Options adjust a single resolution.
type Options struct {
	// BypassCache skips the lookup; the generated command still overwrites
	// the cache entry.
	BypassCache bool
	// Copy puts every displayed command on the clipboard.
	Copy bool
}

// Result describes a finished resolution.
type Result struct {
	Outcome   Outcome
	Command   string
	FromCache bool
	Executed  bool
	// Err is the provider failure for Failed, or the execution failure when
	// an accepted command could not run.
	Err error
}

// Flow wires the collaborators of a resolution together.
type Flow struct {
	Cache     Cache
	Agent     agent.Agent
	Prompter  ui.Prompter
	Runner    Runner
	History   Recorder
	Clipboard func(string) error
	Flavor    shell.Flavor
	Provider  string
	Log       *zap.Logger
}

type state int

const (
	stateCacheCheck state = iota
	stateCacheHit
	stateOfferInvalidate
	stateGenerate
	stateConfirmGenerated
	stateDone
)

func (s state) String() string {
	return [...]string{"cache-check", "cache-hit", "offer-invalidate", "generate", "confirm-generated", "done"}[s]
}

const (
	executePrompt    = "Do you want to execute this command?"
	invalidatePrompt = "Do you want to invalidate the cache?"
)

// Run resolves prompt. The returned error is non-nil only when the user's
// input ended or the cache could not be written; every other failure is
// reported and reflected in the Result.
func (f *Flow) Run(ctx context.Context, prompt string, opts Options) (Result, error) {
	log := logger.OrNop(f.Log)
	var res Result

	st := stateCacheCheck
	for st != stateDone {
		log.Debug("resolve state", zap.Stringer("state", st))

		switch st {
		case stateCacheCheck:
			st = stateGenerate
			if opts.BypassCache {
				log.Debug("cache bypassed")
				continue
			}
			if cmd, ok := f.Cache.Lookup(prompt); ok {
				res.Command = cmd
				res.FromCache = true
				st = stateCacheHit
			}

		case stateCacheHit:
			f.present("Cached command:", res.Command, opts)
			yes, err := f.Prompter.Confirm(executePrompt)
			if err != nil {
				return res, err
			}
			if yes {
				res.Executed = true
				res.Err = f.execute(ctx, res.Command)
				f.record(ctx, prompt, res.Command, history.SourceCache, true)
				res.Outcome = ExecutedCached
				st = stateDone
				continue
			}
			f.record(ctx, prompt, res.Command, history.SourceCache, false)
			st = stateOfferInvalidate

		case stateOfferInvalidate:
			yes, err := f.Prompter.Confirm(invalidatePrompt)
			if err != nil {
				return res, err
			}
			if !yes {
				ui.ShowInfo("Execution cancelled.")
				res.Outcome = Cancelled
				st = stateDone
				continue
			}
			if err := f.Cache.Invalidate(prompt); err != nil {
				return res, err
			}
			ui.ShowInfo("Cache entry removed, generating a new command...")
			res.Command = ""
			res.FromCache = false
			st = stateGenerate

		case stateGenerate:
			cmd, ok, err := f.Agent.TranslateToCommand(ctx, prompt)
			if err != nil {
				ui.ShowError(err.Error())
				res.Outcome = Failed
				res.Err = err
				st = stateDone
				continue
			}
			if !ok {
				ui.ShowWarning("The model did not produce a command for this prompt.")
				res.Outcome = NoCommand
				st = stateDone
				continue
			}
			res.Command = cmd
			st = stateConfirmGenerated

		case stateConfirmGenerated:
			f.present("Generated command:", res.Command, opts)
			yes, err := f.Prompter.Confirm(executePrompt)
			if err != nil {
				return res, err
			}
			if yes {
				res.Executed = true
				res.Err = f.execute(ctx, res.Command)
			} else {
				ui.ShowInfo("Execution cancelled.")
			}
			if err := f.Cache.Insert(prompt, res.Command); err != nil {
				return res, err
			}
			f.record(ctx, prompt, res.Command, history.SourceProvider, yes)
			res.Outcome = Generated
			st = stateDone
		}
	}

	log.Debug("resolve finished",
		zap.Stringer("outcome", res.Outcome),
		zap.Bool("from_cache", res.FromCache),
		zap.Bool("executed", res.Executed))
	return res, nil
}

func (f *Flow) present(title, command string, opts Options) {
	ui.ShowCommand(title, command)

	if err := shell.Check(f.Flavor, command); err != nil {
		ui.ShowWarning(fmt.Sprintf("This command may not run as-is: %v", err))
	}

	if opts.Copy && f.Clipboard != nil {
		if err := f.Clipboard(command); err != nil {
			ui.ShowWarning(fmt.Sprintf("Could not copy to clipboard: %v", err))
		} else {
			ui.ShowSuccess("Copied to clipboard")
		}
	}
}

// execute runs command and reports any failure. It never aborts the flow.
func (f *Flow) execute(ctx context.Context, command string) error {
	err := f.Runner.Run(ctx, command)
	if err == nil {
		return nil
	}

	var spawnErr *executor.SpawnError
	var exitErr *executor.ExitError
	switch {
	case errors.As(err, &spawnErr):
		ui.ShowError(spawnErr.Error())
	case errors.As(err, &exitErr):
		ui.ShowWarning(exitErr.Error())
	default:
		ui.ShowError(err.Error())
	}
	return err
}

func (f *Flow) record(ctx context.Context, prompt, command string, source history.Source, executed bool) {
	if f.History == nil {
		return
	}
	err := f.History.Record(ctx, history.Entry{
		Prompt:   prompt,
		Command:  command,
		Source:   source,
		Provider: f.Provider,
		Executed: executed,
	})
	if err != nil {
		ui.ShowWarning(fmt.Sprintf("Could not save history: %v", err))
	}
}
