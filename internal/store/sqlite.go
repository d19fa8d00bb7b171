package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aaronzipp/wargame-turns/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_snapshots (
	code          TEXT PRIMARY KEY,
	mode          TEXT NOT NULL,
	phase         TEXT NOT NULL,
	subphase      TEXT NOT NULL,
	turn_number   INTEGER NOT NULL,
	version       INTEGER NOT NULL,
	payload_json  BLOB NOT NULL,
	updated_at    INTEGER NOT NULL
);`

// SnapshotSummary describes a stored snapshot without its payload.
type SnapshotSummary struct {
	Code       string          `json:"code"`
	Mode       models.Mode     `json:"mode"`
	Phase      models.Phase    `json:"phase"`
	Subphase   models.Subphase `json:"subphase"`
	TurnNumber int             `json:"turnNumber"`
	Version    int64           `json:"version"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// SnapshotStore provides SQLite-backed persistence for session snapshots.
type SnapshotStore struct {
	sqlDB *sql.DB
}

// Open opens a snapshot store and creates its table.
func Open(path string) (*SnapshotStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if path == ":memory:" {
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SnapshotStore{sqlDB: sqlDB}, nil
}

// Close releases the underlying SQLite connection.
func (s *SnapshotStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save upserts a snapshot. An older version never replaces a newer one.
func (s *SnapshotStore) Save(ctx context.Context, snap models.Snapshot) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	code := strings.TrimSpace(snap.Config.Code)
	if code == "" {
		return fmt.Errorf("session code is required")
	}

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO session_snapshots (code, mode, phase, subphase, turn_number, version, payload_json, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(code) DO UPDATE SET
		    mode = excluded.mode,
		    phase = excluded.phase,
		    subphase = excluded.subphase,
		    turn_number = excluded.turn_number,
		    version = excluded.version,
		    payload_json = excluded.payload_json,
		    updated_at = excluded.updated_at
		 WHERE excluded.version >= session_snapshots.version`,
		code,
		string(snap.Config.Mode),
		string(snap.Phase.Phase),
		string(snap.Phase.Subphase),
		snap.Turn.TurnNumber,
		snap.Version,
		payload,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot stored for code.
func (s *SnapshotStore) Load(ctx context.Context, code string) (models.Snapshot, bool, error) {
	if s == nil || s.sqlDB == nil {
		return models.Snapshot{}, false, fmt.Errorf("storage is not configured")
	}

	var payload []byte
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT payload_json FROM session_snapshots WHERE code = ?`, strings.TrimSpace(code),
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return models.Snapshot{}, false, nil
	}
	if err != nil {
		return models.Snapshot{}, false, fmt.Errorf("load snapshot: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return models.Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

// List returns summaries of every stored snapshot, most recent first.
func (s *SnapshotStore) List(ctx context.Context) ([]SnapshotSummary, error) {
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT code, mode, phase, subphase, turn_number, version, updated_at
		 FROM session_snapshots ORDER BY updated_at DESC, code`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotSummary
	for rows.Next() {
		var sum SnapshotSummary
		var updatedAt int64
		if err := rows.Scan(&sum.Code, &sum.Mode, &sum.Phase, &sum.Subphase, &sum.TurnNumber, &sum.Version, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		sum.UpdatedAt = time.UnixMilli(updatedAt).UTC()
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Delete removes the snapshot stored for code.
func (s *SnapshotStore) Delete(ctx context.Context, code string) error {
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM session_snapshots WHERE code = ?`, strings.TrimSpace(code)); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
