package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the journal database file name.
const FileName = "tilecrawl.db"

// Journal is the SQLite crawl journal.
type Journal struct {
	db     *sql.DB
	dbPath string
}

// Options configures Journal behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the journal in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*Journal, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("journal not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Path returns the database file path.
func (j *Journal) Path() string {
	return j.dbPath
}

func (j *Journal) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		phase TEXT NOT NULL,
		profile TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL DEFAULT '',
		total INTEGER NOT NULL DEFAULT 0,
		skipped INTEGER NOT NULL DEFAULT 0,
		processed INTEGER NOT NULL DEFAULT 0,
		saved INTEGER NOT NULL DEFAULT 0,
		empty INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		listings INTEGER NOT NULL DEFAULT 0,
		interrupted INTEGER NOT NULL DEFAULT 0,
		stop_reason TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	CREATE TABLE IF NOT EXISTS attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		phase TEXT NOT NULL,
		unit_key TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		listings INTEGER NOT NULL DEFAULT 0,
		pages INTEGER NOT NULL DEFAULT 0,
		artifact TEXT NOT NULL DEFAULT '',
		hash TEXT NOT NULL DEFAULT '',
		started_at TEXT NOT NULL,
		duration_ms INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_run ON attempts(run_id);
	CREATE INDEX IF NOT EXISTS idx_attempts_unit ON attempts(unit_key);
	`

	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one journaled run.
type Run struct {
	ID          string
	Phase       string
	Profile     string
	StartedAt   time.Time
	FinishedAt  time.Time
	Total       int
	Skipped     int
	Processed   int
	Saved       int
	Empty       int
	Failed      int
	Listings    int
	Interrupted bool
	StopReason  string
}

// Finished reports whether the run was closed with FinishRun.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Attempt is one journaled unit attempt.
type Attempt struct {
	RunID     string
	Phase     string
	UnitKey   string
	URL       string
	Outcome   string
	Category  string
	Error     string
	Listings  int
	Pages     int
	Artifact  string
	Hash      string
	StartedAt time.Time
	Duration  time.Duration
}

// StartRun opens a new run and returns it with a fresh identifier.
func (j *Journal) StartRun(ctx context.Context, phase, profile string, started time.Time) (Run, error) {
	run := Run{
		ID:        uuid.NewString(),
		Phase:     phase,
		Profile:   profile,
		StartedAt: started.UTC(),
	}

	query := `INSERT INTO runs (id, phase, profile, started_at) VALUES (?, ?, ?, ?)`
	if _, err := j.db.ExecContext(ctx, query, run.ID, run.Phase, run.Profile, formatTimestamp(run.StartedAt)); err != nil {
		return Run{}, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

// FinishRun stores the final counters of run.
func (j *Journal) FinishRun(ctx context.Context, run Run) error {
	query := `
	UPDATE runs SET
		finished_at = ?,
		total = ?,
		skipped = ?,
		processed = ?,
		saved = ?,
		empty = ?,
		failed = ?,
		listings = ?,
		interrupted = ?,
		stop_reason = ?
	WHERE id = ?
	`

	res, err := j.db.ExecContext(ctx, query,
		formatTimestamp(run.FinishedAt),
		run.Total,
		run.Skipped,
		run.Processed,
		run.Saved,
		run.Empty,
		run.Failed,
		run.Listings,
		boolToInt(run.Interrupted),
		run.StopReason,
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to finish run: no run %s", run.ID)
	}
	return nil
}

// RecordAttempt stores one unit attempt.
func (j *Journal) RecordAttempt(ctx context.Context, a Attempt) error {
	query := `
	INSERT INTO attempts (run_id, phase, unit_key, url, outcome, category, error, listings, pages, artifact, hash, started_at, duration_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := j.db.ExecContext(ctx, query,
		a.RunID,
		a.Phase,
		a.UnitKey,
		a.URL,
		a.Outcome,
		a.Category,
		a.Error,
		a.Listings,
		a.Pages,
		a.Artifact,
		a.Hash,
		formatTimestamp(a.StartedAt),
		a.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record attempt: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
	SELECT id, phase, profile, started_at, finished_at, total, skipped, processed, saved, empty, failed, listings, interrupted, stop_reason
	FROM runs
	ORDER BY started_at DESC
	LIMIT ?
	`

	rows, err := j.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			started, finished string
			interrupted       int
		)
		if err := rows.Scan(
			&r.ID,
			&r.Phase,
			&r.Profile,
			&started,
			&finished,
			&r.Total,
			&r.Skipped,
			&r.Processed,
			&r.Saved,
			&r.Empty,
			&r.Failed,
			&r.Listings,
			&interrupted,
			&r.StopReason,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.StartedAt = parseTimestamp(started)
		r.FinishedAt = parseTimestamp(finished)
		r.Interrupted = interrupted != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// UnitHistory returns every attempt for unitKey, oldest first.
func (j *Journal) UnitHistory(ctx context.Context, unitKey string) ([]Attempt, error) {
	query := `
	SELECT run_id, phase, unit_key, url, outcome, category, error, listings, pages, artifact, hash, started_at, duration_ms
	FROM attempts
	WHERE unit_key = ?
	ORDER BY id
	`

	rows, err := j.db.QueryContext(ctx, query, unitKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var (
			a          Attempt
			started    string
			durationMS int64
		)
		if err := rows.Scan(
			&a.RunID,
			&a.Phase,
			&a.UnitKey,
			&a.URL,
			&a.Outcome,
			&a.Category,
			&a.Error,
			&a.Listings,
			&a.Pages,
			&a.Artifact,
			&a.Hash,
			&started,
			&durationMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}
		a.StartedAt = parseTimestamp(started)
		a.Duration = time.Duration(durationMS) * time.Millisecond
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// FailureCounts returns the number of failed attempts per category in run.
func (j *Journal) FailureCounts(ctx context.Context, runID string) (map[string]int, error) {
	query := `
	SELECT category, COUNT(*) FROM attempts
	WHERE run_id = ? AND outcome = 'failed'
	GROUP BY category
	`

	rows, err := j.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to count failures: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			category string
			n        int
		)
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("failed to scan failure count: %w", err)
		}
		counts[category] = n
	}
	return counts, rows.Err()
}

// ErrRunNotFound is returned by GetRun for unknown identifiers.
var ErrRunNotFound = errors.New("run not found")

// GetRun returns the run with id.
func (j *Journal) GetRun(ctx context.Context, id string) (Run, error) {
	query := `
	SELECT id, phase, profile, started_at, finished_at, total, skipped, processed, saved, empty, failed, listings, interrupted, stop_reason
	FROM runs WHERE id = ?
	`

	var (
		r                 Run
		started, finished string
		interrupted       int
	)
	err := j.db.QueryRowContext(ctx, query, id).Scan(
		&r.ID, &r.Phase, &r.Profile, &started, &finished,
		&r.Total, &r.Skipped, &r.Processed, &r.Saved, &r.Empty, &r.Failed, &r.Listings,
		&interrupted, &r.StopReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to get run: %w", err)
	}
	r.StartedAt = parseTimestamp(started)
	r.FinishedAt = parseTimestamp(finished)
	r.Interrupted = interrupted != 0
	return r, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// formatTimestamp renders t for storage. The zero time is stored as "".
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
