// Package snapshot keeps a history of enrichment runs in SQLite.
//
// Every get_all_case_data call stores its counts and the merged payload so
// earlier runs can be listed and compared without hitting the dashboard
// again. The merge itself stays stateless; this is a record of its output.
package snapshot

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/t5g-dashboard/t5gmcp/internal/casedata"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// timeNow is replaced in tests.
var timeNow = time.Now

// ErrNotFound is returned when a snapshot ID does not exist.
var ErrNotFound = errors.New("snapshot not found")

// ─── Types ───────────────────────────────────────────────────────────────────

// Snapshot is one stored enrichment run.
type Snapshot struct {
	Seq       int64          `json:"seq"`
	ID        string         `json:"id"`
	CreatedAt string         `json:"created_at"`
	Stats     casedata.Stats `json:"stats"`
	Degraded  []string       `json:"degraded,omitempty"`
	Payload   string         `json:"payload,omitempty"`
}

// Stats holds aggregate history statistics.
type Stats struct {
	TotalSnapshots int    `json:"total_snapshots"`
	Oldest         string `json:"oldest,omitempty"`
	Newest         string `json:"newest,omitempty"`
}

// SaveParams holds the input for recording a run.
type SaveParams struct {
	Stats    casedata.Stats
	Degraded []string
	Payload  []byte
}

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds snapshot store configuration.
type Config struct {
	DataDir string
	// Retention is how many snapshots to keep; older ones are pruned on
	// save. Zero keeps everything.
	Retention int
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the snapshot history backed by SQLite.
type Store struct {
	db  *sql.DB
	cfg Config
}

// New creates the data directory if needed, opens SQLite with WAL mode,
// and runs migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("snapshot: create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.DataDir, "snapshots.db")
	db, err := openDB("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("snapshot: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db, cfg: cfg}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("snapshot: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			id           TEXT    NOT NULL UNIQUE,
			created_at   TEXT    NOT NULL,
			shape        TEXT    NOT NULL,
			cards        INTEGER NOT NULL DEFAULT 0,
			with_case    INTEGER NOT NULL DEFAULT 0,
			escalated    INTEGER NOT NULL DEFAULT 0,
			with_issues  INTEGER NOT NULL DEFAULT 0,
			with_bugs    INTEGER NOT NULL DEFAULT 0,
			with_details INTEGER NOT NULL DEFAULT 0,
			degraded     TEXT    NOT NULL DEFAULT '',
			payload      TEXT    NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_snapshots_created ON snapshots(created_at);
	`)
	return err
}

// ─── Writes ──────────────────────────────────────────────────────────────────

// Save records a run and prunes beyond the retention limit.
func (s *Store) Save(p SaveParams) (*Snapshot, error) {
	snap := &Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: timeNow().UTC().Format(time.RFC3339),
		Stats:     p.Stats,
		Degraded:  p.Degraded,
		Payload:   string(p.Payload),
	}

	res, err := s.db.Exec(`
		INSERT INTO snapshots (id, created_at, shape, cards, with_case, escalated,
			with_issues, with_bugs, with_details, degraded, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.CreatedAt, string(p.Stats.Shape), p.Stats.Cards, p.Stats.WithCase,
		p.Stats.Escalated, p.Stats.WithIssues, p.Stats.WithBugs, p.Stats.WithDetails,
		strings.Join(p.Degraded, ","), snap.Payload,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot: insert: %w", err)
	}
	if snap.Seq, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("snapshot: insert id: %w", err)
	}

	if s.cfg.Retention > 0 {
		if _, err := s.db.Exec(`
			DELETE FROM snapshots WHERE seq NOT IN (
				SELECT seq FROM snapshots ORDER BY seq DESC LIMIT ?
			)`, s.cfg.Retention); err != nil {
			return nil, fmt.Errorf("snapshot: prune: %w", err)
		}
	}
	return snap, nil
}

// ─── Reads ───────────────────────────────────────────────────────────────────

const summaryColumns = `seq, id, created_at, shape, cards, with_case, escalated,
	with_issues, with_bugs, with_details, degraded`

// Get returns a snapshot with its payload.
func (s *Store) Get(id string) (*Snapshot, error) {
	row := s.db.QueryRow(`SELECT `+summaryColumns+`, payload FROM snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// Latest returns the newest snapshot without its payload, or nil when the
// history is empty.
func (s *Store) Latest() (*Snapshot, error) {
	recent, err := s.Recent(1)
	if err != nil || len(recent) == 0 {
		return nil, err
	}
	return &recent[0], nil
}

// Recent returns up to limit snapshots, newest first, without payloads.
func (s *Store) Recent(limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(`SELECT `+summaryColumns+` FROM snapshots ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var results []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows, false)
		if err != nil {
			return nil, err
		}
		results = append(results, *snap)
	}
	return results, rows.Err()
}

// Stats returns aggregate history statistics.
func (s *Store) Stats() (*Stats, error) {
	stats := &Stats{}
	var oldest, newest sql.NullString
	err := s.db.QueryRow(`SELECT COUNT(*), MIN(created_at), MAX(created_at) FROM snapshots`).
		Scan(&stats.TotalSnapshots, &oldest, &newest)
	if err != nil {
		return nil, err
	}
	stats.Oldest = oldest.String
	stats.Newest = newest.String
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner, withPayload bool) (*Snapshot, error) {
	var (
		snap     Snapshot
		shape    string
		degraded string
	)
	dest := []any{
		&snap.Seq, &snap.ID, &snap.CreatedAt, &shape,
		&snap.Stats.Cards, &snap.Stats.WithCase, &snap.Stats.Escalated,
		&snap.Stats.WithIssues, &snap.Stats.WithBugs, &snap.Stats.WithDetails,
		&degraded,
	}
	if withPayload {
		dest = append(dest, &snap.Payload)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	snap.Stats.Shape = casedata.Shape(shape)
	if degraded != "" {
		snap.Degraded = strings.Split(degraded, ",")
	}
	return &snap, nil
}
