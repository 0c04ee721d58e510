package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	entries := []Entry{
		{Timestamp: base, Prompt: "list files", Command: "ls -la", Source: SourceProvider, Provider: "Ollama (llama3.1)", Executed: true},
		{Timestamp: base.Add(time.Minute), Prompt: "list files", Command: "ls -la", Source: SourceCache, Provider: "Ollama (llama3.1)"},
		{Timestamp: base.Add(2 * time.Minute), Prompt: "disk usage", Command: "df -h", Source: SourceProvider, Provider: "OpenAI (gpt-4o)", Executed: true},
	}
	for _, e := range entries {
		if err := s.Record(ctx, e); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	got, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Recent(2) returned %d entries", len(got))
	}
	if got[0].Command != "df -h" || got[1].Source != SourceCache {
		t.Errorf("Recent() order wrong: %+v", got)
	}
	if !got[0].Executed || got[1].Executed {
		t.Errorf("Executed flags wrong: %+v", got)
	}
	if !got[0].Timestamp.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("Timestamp = %v", got[0].Timestamp)
	}
}

func TestRecordDefaultsTimestamp(t *testing.T) {
	s := openTestStore(t)
	fixed := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.Record(context.Background(), Entry{Prompt: "p", Command: "c", Source: SourceProvider}); err != nil {
		t.Fatal(err)
	}
	got, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || !got[0].Timestamp.Equal(fixed) {
		t.Errorf("Recent() = %+v", got)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), Entry{Prompt: "p", Command: "c", Source: SourceCache}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q", s.Path(), path)
	}

	got, err := s.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %d entries after reopen, want 1", len(got))
	}
}
