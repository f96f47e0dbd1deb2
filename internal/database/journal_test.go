package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) (*Journal, func()) {
	t.Helper()

	tmpDir := t.TempDir()
	j, err := Open(tmpDir, DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open journal: %v", err)
	}

	cleanup := func() {
		_ = j.Close()
	}

	return j, cleanup
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates new database", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		j, err := Open(tmpDir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		defer j.Close()

		if _, err := os.Stat(filepath.Join(tmpDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if j.Path() != filepath.Join(tmpDir, FileName) {
			t.Errorf("Path() = %s", j.Path())
		}
	})

	t.Run("creates missing directory", func(t *testing.T) {
		t.Parallel()

		dir := filepath.Join(t.TempDir(), "nested", "data")
		j, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		_ = j.Close()
	})

	t.Run("fails when database missing and create disabled", func(t *testing.T) {
		t.Parallel()

		_, err := Open(t.TempDir(), Options{CreateIfNotExists: false})
		if err == nil {
			t.Error("expected error for missing database")
		}
	})

	t.Run("reopens existing database", func(t *testing.T) {
		t.Parallel()

		tmpDir := t.TempDir()
		j, err := Open(tmpDir, DefaultOptions())
		if err != nil {
			t.Fatalf("first Open() error = %v", err)
		}
		run, err := j.StartRun(context.Background(), "tiles", "overnight", time.Now())
		if err != nil {
			t.Fatalf("StartRun() error = %v", err)
		}
		_ = j.Close()

		j2, err := Open(tmpDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("second Open() error = %v", err)
		}
		defer j2.Close()

		if _, err := j2.GetRun(context.Background(), run.ID); err != nil {
			t.Errorf("GetRun() after reopen error = %v", err)
		}
	})
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()

	j, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	started := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)
	run, err := j.StartRun(ctx, "details", "overnight", started)
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}
	if run.ID == "" {
		t.Fatal("StartRun() returned empty id")
	}

	got, err := j.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if got.Finished() {
		t.Error("new run should not be finished")
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}

	run.FinishedAt = started.Add(90 * time.Minute)
	run.Total = 10
	run.Skipped = 3
	run.Processed = 7
	run.Saved = 5
	run.Empty = 1
	run.Failed = 1
	run.Listings = 5
	run.Interrupted = true
	run.StopReason = "interrupted"
	if err := j.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	got, err = j.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun() error = %v", err)
	}
	if !got.Finished() || !got.FinishedAt.Equal(run.FinishedAt) {
		t.Errorf("FinishedAt = %v, want %v", got.FinishedAt, run.FinishedAt)
	}
	if got.Saved != 5 || got.Failed != 1 || got.Skipped != 3 || got.Processed != 7 {
		t.Errorf("counters = %+v", got)
	}
	if !got.Interrupted || got.StopReason != "interrupted" {
		t.Errorf("Interrupted = %v, StopReason = %q", got.Interrupted, got.StopReason)
	}
}

func TestFinishRunUnknown(t *testing.T) {
	t.Parallel()

	j, cleanup := setupTestDB(t)
	defer cleanup()

	err := j.FinishRun(context.Background(), Run{ID: "missing", FinishedAt: time.Now()})
	if err == nil {
		t.Error("expected error for unknown run")
	}
}

func TestGetRunNotFound(t *testing.T) {
	t.Parallel()

	j, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := j.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun() error = %v, want ErrRunNotFound", err)
	}
}

func TestRecentRuns(t *testing.T) {
	t.Parallel()

	j, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	var ids []string
	for i := range 3 {
		run, err := j.StartRun(ctx, "tiles", "monitored", base.Add(time.Duration(i)*time.Hour))
		if err != nil {
			t.Fatalf("StartRun() error = %v", err)
		}
		ids = append(ids, run.ID)
	}

	runs, err := j.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns() error = %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("RecentRuns() returned %d runs, want 2", len(runs))
	}
	if runs[0].ID != ids[2] || runs[1].ID != ids[1] {
		t.Errorf("RecentRuns() order = [%s %s], want newest first", runs[0].ID, runs[1].ID)
	}
}

func TestAttempts(t *testing.T) {
	t.Parallel()

	j, cleanup := setupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	run, err := j.StartRun(ctx, "tiles", "overnight", time.Now())
	if err != nil {
		t.Fatalf("StartRun() error = %v", err)
	}

	started := time.Date(2024, 3, 1, 1, 2, 3, 0, time.UTC)
	attempts := []Attempt{
		{RunID: run.ID, Phase: "tiles", UnitKey: "tile_1_lat_40.0_long_-74.0", Outcome: "saved", Listings: 12, Pages: 3, Artifact: "a.json", Hash: "abc", StartedAt: started, Duration: 1500 * time.Millisecond},
		{RunID: run.ID, Phase: "tiles", UnitKey: "tile_2_lat_40.0_long_-73.9", Outcome: "failed", Category: "integrity", Error: "data integrity", StartedAt: started},
		{RunID: run.ID, Phase: "tiles", UnitKey: "tile_2_lat_40.0_long_-73.9", Outcome: "failed", Category: "challenge", Error: "challenge", StartedAt: started},
		{RunID: run.ID, Phase: "tiles", UnitKey: "tile_3_lat_40.0_long_-73.8", Outcome: "failed", Category: "integrity", StartedAt: started},
	}
	for _, a := range attempts {
		if err := j.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("RecordAttempt() error = %v", err)
		}
	}

	t.Run("failure counts by category", func(t *testing.T) {
		counts, err := j.FailureCounts(ctx, run.ID)
		if err != nil {
			t.Fatalf("FailureCounts() error = %v", err)
		}
		if counts["integrity"] != 2 || counts["challenge"] != 1 || len(counts) != 2 {
			t.Errorf("FailureCounts() = %v", counts)
		}
	})

	t.Run("unit history", func(t *testing.T) {
		history, err := j.UnitHistory(ctx, "tile_2_lat_40.0_long_-73.9")
		if err != nil {
			t.Fatalf("UnitHistory() error = %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("UnitHistory() returned %d attempts, want 2", len(history))
		}
		if history[0].Category != "integrity" || history[1].Category != "challenge" {
			t.Errorf("UnitHistory() order = %s, %s", history[0].Category, history[1].Category)
		}
	})

	t.Run("round trips fields", func(t *testing.T) {
		history, err := j.UnitHistory(ctx, "tile_1_lat_40.0_long_-74.0")
		if err != nil {
			t.Fatalf("UnitHistory() error = %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("UnitHistory() returned %d attempts, want 1", len(history))
		}
		got := history[0]
		if got.Listings != 12 || got.Pages != 3 || got.Hash != "abc" || got.Artifact != "a.json" {
			t.Errorf("attempt = %+v", got)
		}
		if got.Duration != 1500*time.Millisecond {
			t.Errorf("Duration = %v", got.Duration)
		}
		if !got.StartedAt.Equal(started) {
			t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
		}
	})
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		zero  bool
	}{
		{name: "RFC3339Nano", input: "2024-03-01T10:30:00.123456789Z"},
		{name: "RFC3339", input: "2024-03-01T10:30:00Z"},
		{name: "SQLite datetime", input: "2024-03-01 10:30:00"},
		{name: "without zone", input: "2024-03-01T10:30:00"},
		{name: "empty", input: "", zero: true},
		{name: "garbage", input: "yesterday", zero: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseTimestamp(tt.input)
			if got.IsZero() != tt.zero {
				t.Errorf("parseTimestamp(%q) = %v, zero want %v", tt.input, got, tt.zero)
			}
		})
	}
}
