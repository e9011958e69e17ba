package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ask_analytics/chatlog"
	"ask_analytics/config"
	"ask_analytics/internal/store"
)

func TestNewRejectsIncompleteOptions(t *testing.T) {
	cfg := config.Config{Location: time.UTC}
	cases := []struct {
		name string
		opts Options
	}{
		{"no period", Options{Schools: []string{"Western"}}},
		{"no target", Options{Start: "2024-01-01", End: "2024-01-31"}},
		{"dangling compare end", Options{Schools: []string{"Western"}, Start: "2024-01-01", End: "2024-01-31", CompareEnd: "2024-02-28"}},
		{"compare needs one school", Options{Schools: []string{"Western", "Brock"}, Start: "2024-01-01", End: "2024-01-31", CompareStart: "2024-02-01", CompareEnd: "2024-02-28"}},
	}
	for _, tc := range cases {
		if _, err := New(cfg, tc.opts); err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}
}

func TestNewExpandsAllSchools(t *testing.T) {
	cfg := config.Config{Location: time.UTC}
	a, err := New(cfg, Options{Schools: []string{"all"}, Start: "2024-01-01", End: "2024-01-31"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if len(a.opts.Schools) != len(chatlog.Registry) {
		t.Fatalf("expected %d schools, got %d", len(chatlog.Registry), len(a.opts.Schools))
	}
}

func TestWatchModeNeedsNoPeriod(t *testing.T) {
	cfg := config.Config{Location: time.UTC}
	if _, err := New(cfg, Options{Watch: true}); err != nil {
		t.Fatalf("watch mode should not require a period: %v", err)
	}
}

func TestRunsModeNeedsNoPeriod(t *testing.T) {
	cfg := config.Config{Location: time.UTC}
	if _, err := New(cfg, Options{Runs: 10}); err != nil {
		t.Fatalf("listing runs should not require a period: %v", err)
	}
}

func TestListRunsReadsTheRunLog(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cache.db")
	cache, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	runID, err := cache.StartRun(ctx, "Western University", start, end)
	if err != nil {
		t.Fatalf("start run: %v", err)
	}
	if err := cache.FinishRun(ctx, runID, store.RunOK, 42, ""); err != nil {
		t.Fatalf("finish run: %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Fatalf("close cache: %v", err)
	}

	cfg := config.Config{Location: time.UTC, CacheDBPath: dbPath}
	a, err := New(cfg, Options{Runs: 10})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.listRuns(ctx); err != nil {
		t.Fatalf("list runs: %v", err)
	}

	a, err = New(config.Config{Location: time.UTC}, Options{Runs: 10})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := a.listRuns(ctx); err == nil {
		t.Fatalf("listing runs without a cache database should fail")
	}
}

func TestIngestExport(t *testing.T) {
	dir := t.TempDir()
	cache, err := store.Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	exportPath := filepath.Join(dir, "2024-01-15.json")
	payload := `[{"id": 5, "queue": "western", "started": "2024-01-15 09:00:00"}]`
	if err := os.WriteFile(exportPath, []byte(payload), 0644); err != nil {
		t.Fatalf("write export: %v", err)
	}

	ctx := context.Background()
	if err := ingestExport(ctx, cache, exportPath, time.UTC); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	chats, ok, err := cache.GetDay(ctx, day)
	if err != nil || !ok {
		t.Fatalf("expected cached day, ok=%v err=%v", ok, err)
	}
	if len(chats) != 1 || chats[0].ID != 5 {
		t.Fatalf("unexpected cached chats %+v", chats)
	}
}

func TestIngestExportRejectsBadDayName(t *testing.T) {
	dir := t.TempDir()
	cache, err := store.Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	defer cache.Close()

	path := filepath.Join(dir, "notadate.json")
	if err := os.WriteFile(path, []byte(`[]`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ingestExport(context.Background(), cache, path, time.UTC); err == nil {
		t.Fatalf("expected a bad file name to be rejected")
	}
}
