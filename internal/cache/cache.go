// Package cache stores previously generated commands keyed by the exact
// prompt text that produced them.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/google/renameio"
	"go.uber.org/zap"

	"github.com/iishyfishyy/llmterm/internal/logger"
)

// Entry is one prompt and its cached command.
type Entry struct {
	Prompt  string
	Command string
}

// Cache is a persistent prompt → command mapping. It is not safe for
// concurrent use.
type Cache struct {
	path    string
	entries map[string]string
	log     *zap.Logger
}

// Open loads the cache at path. A missing or unreadable file yields an empty
// cache.
func Open(path string, log *zap.Logger) *Cache {
	c := &Cache{
		path:    path,
		entries: make(map[string]string),
		log:     logger.OrNop(log),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.log.Debug("cache unreadable, starting empty", zap.String("path", path), zap.Error(err))
		}
		return c
	}

	var loaded map[string]string
	if err := json.Unmarshal(data, &loaded); err != nil {
		c.log.Debug("cache corrupt, starting empty", zap.String("path", path), zap.Error(err))
		return c
	}
	if loaded != nil {
		c.entries = loaded
	}

	c.log.Debug("cache loaded", zap.String("path", path), zap.Int("entries", len(c.entries)))
	return c
}

// Path returns the backing file path.
func (c *Cache) Path() string {
	return c.path
}

// Lookup returns the command cached for prompt. Keys are compared exactly.
func (c *Cache) Lookup(prompt string) (string, bool) {
	cmd, ok := c.entries[prompt]
	return cmd, ok
}

// Insert stores command for prompt, replacing any previous value, and
// persists the cache.
func (c *Cache) Insert(prompt, command string) error {
	c.entries[prompt] = command
	return c.Persist()
}

// Invalidate removes prompt from the cache. Removing an absent prompt is a
// no-op and does not touch the file.
func (c *Cache) Invalidate(prompt string) error {
	if _, ok := c.entries[prompt]; !ok {
		return nil
	}
	delete(c.entries, prompt)
	return c.Persist()
}

// Clear removes every entry and persists the empty cache.
func (c *Cache) Clear() error {
	c.entries = make(map[string]string)
	return c.Persist()
}

// Len returns the number of cached prompts.
func (c *Cache) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the cache sorted by prompt.
func (c *Cache) Entries() []Entry {
	out := make([]Entry, 0, len(c.entries))
	for prompt, cmd := range c.entries {
		out = append(out, Entry{Prompt: prompt, Command: cmd})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Prompt < out[j].Prompt })
	return out
}

// Persist replaces the cache file with the current contents.
func (c *Cache) Persist() error {
	data, err := json.MarshalIndent(c.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	if err := renameio.WriteFile(c.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write cache %s: %w", c.path, err)
	}
	c.log.Debug("cache persisted", zap.String("path", c.path), zap.Int("entries", len(c.entries)))
	return nil
}
