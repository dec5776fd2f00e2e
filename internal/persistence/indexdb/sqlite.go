package indexdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"hearthday.ai/internal/sim/catalogs"
	"hearthday.ai/internal/sim/day"
)

// SQLiteIndex is a read-model index of the run: per-tick digests, resolved day
// summaries, and the loaded catalog digests. It is never read back by the sim.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqTick reqKind = iota + 1
	reqSummary
)

type req struct {
	kind reqKind

	tick    day.TickLogEntry
	summary day.DaySummary
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			digest TEXT NOT NULL,
			actions INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS day_summaries (
			day INTEGER PRIMARY KEY,
			tick INTEGER NOT NULL,
			visitor_id TEXT NOT NULL,
			affection REAL NOT NULL,
			grade TEXT NOT NULL,
			reason TEXT NOT NULL,
			noticed INTEGER NOT NULL,
			checkpoints INTEGER NOT NULL,
			raw_json TEXT NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_summaries_grade ON day_summaries(grade, day);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteTick(entry day.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqTick, tick: entry}:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
	}
	return nil
}

func (s *SQLiteIndex) WriteSummary(summary day.DaySummary) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqSummary, summary: summary}:
	default:
	}
	return nil
}

// UpsertCatalogs records which authored data this run was driven by.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	rows := map[string]string{
		"content":      cats.Content.Digest,
		"objects":      cats.Objects.Digest,
		"checkpoints":  cats.Checkpoints.Digest,
		"mood_profile": cats.Mood.Digest,
		"tags":         cats.Tags.Digest(),
	}
	for name, digest := range rows {
		if _, err := s.db.Exec(
			`INSERT INTO catalogs(name, digest, updated_at) VALUES(?,?,?)
			 ON CONFLICT(name) DO UPDATE SET digest=excluded.digest, updated_at=excluded.updated_at;`,
			name, digest, now,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) loop() {
	for r := range s.ch {
		switch r.kind {
		case reqTick:
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO ticks(tick, digest, actions) VALUES(?,?,?);`,
				r.tick.Tick, r.tick.Digest, len(r.tick.Actions),
			)
		case reqSummary:
			raw, _ := json.Marshal(r.summary)
			_, _ = s.db.Exec(
				`INSERT OR REPLACE INTO day_summaries(
					day, tick, visitor_id, affection, grade, reason, noticed, checkpoints, raw_json, recorded_at
				) VALUES(?,?,?,?,?,?,?,?,?,?);`,
				r.summary.Day, r.summary.Tick, r.summary.VisitorID, r.summary.Affection,
				r.summary.Grade, r.summary.Reason, r.summary.Noticed, r.summary.Checkpoints,
				string(raw), time.Now().UTC().Format(time.RFC3339Nano),
			)
		}
	}
}

// RecentSummaries returns up to limit day summaries, newest first.
func (s *SQLiteIndex) RecentSummaries(limit int) ([]day.DaySummary, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.Query(
		`SELECT day, tick, visitor_id, affection, grade, reason, noticed, checkpoints
		 FROM day_summaries ORDER BY day DESC LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []day.DaySummary
	for rows.Next() {
		var d day.DaySummary
		if err := rows.Scan(&d.Day, &d.Tick, &d.VisitorID, &d.Affection, &d.Grade, &d.Reason, &d.Noticed, &d.Checkpoints); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
