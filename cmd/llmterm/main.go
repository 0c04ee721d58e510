package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iishyfishyy/llmterm/internal/agent"
	"github.com/iishyfishyy/llmterm/internal/cache"
	"github.com/iishyfishyy/llmterm/internal/catalog"
	"github.com/iishyfishyy/llmterm/internal/config"
	"github.com/iishyfishyy/llmterm/internal/executor"
	"github.com/iishyfishyy/llmterm/internal/history"
	"github.com/iishyfishyy/llmterm/internal/logger"
	"github.com/iishyfishyy/llmterm/internal/provider"
	"github.com/iishyfishyy/llmterm/internal/resolve"
	"github.com/iishyfishyy/llmterm/internal/setup"
	"github.com/iishyfishyy/llmterm/internal/shell"
	"github.com/iishyfishyy/llmterm/internal/ui"
)

var (
	// version is set by goreleaser at build time
	version = "dev"

	// CLI flags
	reconfigure  bool
	disableCache bool
	copyCommand  bool
	debug        bool
	showHistory  bool
	listCache    bool
	clearCache   bool
)

const historyLimit = 20

func main() {
	rootCmd := &cobra.Command{
		Use:           "llmterm [prompt]",
		Short:         "Turn a plain-language request into a shell command",
		Long:          "llmterm asks a language model for a single shell command matching your request, then offers to run it",
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runRoot,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := rootCmd.Flags()
	flags.BoolVarP(&reconfigure, "config", "c", false, "Run the configuration wizard")
	flags.BoolVar(&disableCache, "disable-cache", false, "Ignore the cached command for this prompt")
	flags.BoolVar(&copyCommand, "copy", false, "Copy the command to the clipboard")
	flags.BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	flags.BoolVar(&showHistory, "history", false, fmt.Sprintf("Show the last %d resolved prompts", historyLimit))
	flags.BoolVar(&listCache, "list-cache", false, "List cached prompts and commands")
	flags.BoolVar(&clearCache, "clear-cache", false, "Remove every cached command")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	log := logger.New(debug)
	defer log.Sync()

	dir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to resolve install directory: %w", err)
	}
	log.Debug("install directory", zap.String("dir", dir))

	if err := config.LoadEnvFile(dir); err != nil {
		ui.ShowWarning(err.Error())
	}

	var prompt string
	if len(args) == 1 {
		prompt = args[0]
	}

	ranAction, err := runActions(cmd.Context(), dir, log)
	if err != nil {
		return err
	}

	if prompt == "" && !reconfigure {
		if !ranAction {
			yellow := color.New(color.FgYellow)
			yellow.Println("Usage: llmterm \"<what you want to do>\"")
			yellow.Println("Run llmterm --config to choose a model provider, or llmterm --help for all options.")
		}
		return nil
	}

	// One prompter for the whole run, so piped answers are read in order.
	prompter := ui.NewPrompter()
	reg := provider.DefaultRegistry()

	cfg, err := loadOrConfigure(cmd.Context(), prompter, reg, log)
	if err != nil {
		return err
	}
	if prompt == "" {
		return nil
	}

	return resolvePrompt(cmd.Context(), dir, cfg, prompt, prompter, reg, log)
}

// loadOrConfigure returns the saved configuration, running the wizard when
// there is none, it is unusable, or --config was given.
func loadOrConfigure(ctx context.Context, prompter ui.Prompter, reg provider.Registry, log *zap.Logger) (*config.Config, error) {
	path, err := config.GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path: %w", err)
	}
	log.Debug("loading config", zap.String("path", path))

	cfg, err := config.Load()
	if errors.Is(err, config.ErrInvalid) {
		ui.ShowWarning(fmt.Sprintf("Ignoring unusable configuration at %s: %v", path, err))
		cfg = nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg != nil && !reconfigure {
		log.Debug("config loaded",
			zap.String("provider", provider.Label(cfg.Provider)),
			zap.Int("max_output_tokens", cfg.MaxOutputTokens))
		return cfg, nil
	}

	if cfg == nil {
		ui.ShowInfo("No configuration found. Let's set up llmterm.")
	}

	fetcher := catalog.New(version)
	fetcher.Log = log
	wizard := &setup.Wizard{
		Prompter: prompter,
		Registry: reg,
		Catalog:  fetcher,
		Log:      log,
	}

	cfg, err = wizard.Run(ctx)
	if err != nil {
		return nil, err
	}

	if err := config.Save(cfg); err != nil {
		return nil, fmt.Errorf("failed to save configuration: %w", err)
	}
	ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", path))
	return cfg, nil
}

func resolvePrompt(ctx context.Context, dir string, cfg *config.Config, prompt string, prompter ui.Prompter, reg provider.Registry, log *zap.Logger) error {
	flavor, inv := shell.Detect()
	log.Debug("shell detected",
		zap.Stringer("flavor", flavor),
		zap.String("binary", inv.Binary))

	engine := agent.New(*cfg, reg, flavor, agent.WithLogger(log))

	flow := &resolve.Flow{
		Cache:     cache.Open(filepath.Join(dir, config.CacheFileName), log),
		Agent:     engine,
		Prompter:  prompter,
		Runner:    executor.New(inv, log),
		Clipboard: clipboard.WriteAll,
		Flavor:    flavor,
		Provider:  provider.Label(cfg.Provider),
		Log:       log,
	}

	store, err := history.Open(filepath.Join(dir, config.HistoryFileName))
	if err != nil {
		ui.ShowWarning(fmt.Sprintf("History disabled: %v", err))
	} else {
		defer store.Close()
		flow.History = store
	}

	_, err = flow.Run(ctx, prompt, resolve.Options{
		BypassCache: disableCache,
		Copy:        copyCommand,
	})
	return err
}
