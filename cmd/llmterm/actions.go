package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/iishyfishyy/llmterm/internal/cache"
	"github.com/iishyfishyy/llmterm/internal/config"
	"github.com/iishyfishyy/llmterm/internal/history"
	"github.com/iishyfishyy/llmterm/internal/ui"
)

// runActions handles the maintenance flags. It reports whether any ran.
func runActions(ctx context.Context, dir string, log *zap.Logger) (bool, error) {
	ran := false

	if clearCache {
		ran = true
		c := cache.Open(filepath.Join(dir, config.CacheFileName), log)
		n := c.Len()
		if err := c.Clear(); err != nil {
			return ran, err
		}
		ui.ShowSuccess(fmt.Sprintf("Removed %d cached command(s)", n))
	}

	if listCache {
		ran = true
		printCache(cache.Open(filepath.Join(dir, config.CacheFileName), log))
	}

	if showHistory {
		ran = true
		if err := printHistory(ctx, filepath.Join(dir, config.HistoryFileName)); err != nil {
			return ran, err
		}
	}

	return ran, nil
}

func printCache(c *cache.Cache) {
	entries := c.Entries()
	if len(entries) == 0 {
		ui.ShowInfo("The cache is empty")
		return
	}

	ui.ShowSection(fmt.Sprintf("Cached commands (%d)", len(entries)))
	gray := color.New(color.FgHiBlack)
	for _, e := range entries {
		fmt.Printf("  %s\n", e.Prompt)
		gray.Printf("    %s\n", e.Command)
	}
	fmt.Println()
	ui.ShowInfo(fmt.Sprintf("Cache file: %s", c.Path()))
}

func printHistory(ctx context.Context, path string) error {
	store, err := history.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer store.Close()

	entries, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		ui.ShowInfo(fmt.Sprintf("No history yet (%s)", store.Path()))
		return nil
	}

	ui.ShowSection("Recent prompts")
	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)
	for _, e := range entries {
		fmt.Printf("%s  %s\n", gray.Sprintf("%-10s", formatAgo(e.Timestamp)), e.Prompt)
		fmt.Printf("            %s", e.Command)
		if e.Executed {
			green.Print("  ✓ run")
		}
		gray.Printf("  (%s, %s)\n", e.Source, e.Provider)
	}
	fmt.Println()
	ui.ShowInfo(fmt.Sprintf("History file: %s", store.Path()))
	return nil
}

// formatAgo formats a time.Time as "X ago"
func formatAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
