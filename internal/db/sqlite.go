package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alexbilevskiy/tgfolders/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	snapshot_id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	created_at TEXT NOT NULL,
	folders INTEGER NOT NULL,
	payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_kind_created_at ON snapshots(kind, created_at);
`

// fixed width, so text order is time order
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

type SqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSqlite(ctx context.Context, path string) (*SqliteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &SqliteStore{db: db, now: time.Now}, nil
}

func (s *SqliteStore) Close(_ context.Context) error {
	if s == nil || s.db == nil {
		return nil
	}

	return s.db.Close()
}

func (s *SqliteStore) Save(ctx context.Context, kind string, snapshot *model.Snapshot) (*SnapshotRecord, error) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	rec := &SnapshotRecord{
		Id:        uuid.NewString(),
		Kind:      kind,
		CreatedAt: s.now().UTC(),
		Folders:   countFolders(snapshot),
		Snapshot:  snapshot,
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO snapshots(snapshot_id, kind, created_at, folders, payload)
VALUES (?, ?, ?, ?, ?)
`, rec.Id, rec.Kind, rec.CreatedAt.Format(tsLayout), rec.Folders, string(payload))
	if err != nil {
		return nil, fmt.Errorf("insert snapshot: %w", err)
	}

	return rec, nil
}

func (s *SqliteStore) Get(ctx context.Context, id string) (*SnapshotRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT snapshot_id, kind, created_at, folders, payload FROM snapshots WHERE snapshot_id = ?
`, id)

	return scanSnapshot(row)
}

func (s *SqliteStore) Latest(ctx context.Context, kind string) (*SnapshotRecord, error) {
	row := s.db.QueryRowContext(ctx, `
SELECT snapshot_id, kind, created_at, folders, payload FROM snapshots
WHERE ? = '' OR kind = ?
ORDER BY created_at DESC, rowid DESC
LIMIT 1
`, kind, kind)

	return scanSnapshot(row)
}

func (s *SqliteStore) List(ctx context.Context, limit int) ([]*SnapshotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT snapshot_id, kind, created_at, folders FROM snapshots
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var res []*SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		var createdAt string
		if err := rows.Scan(&rec.Id, &rec.Kind, &createdAt, &rec.Folders); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		if rec.CreatedAt, err = time.Parse(tsLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse snapshot time: %w", err)
		}
		res = append(res, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return res, nil
}

func scanSnapshot(row *sql.Row) (*SnapshotRecord, error) {
	var rec SnapshotRecord
	var createdAt, payload string
	err := row.Scan(&rec.Id, &rec.Kind, &createdAt, &rec.Folders, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan snapshot: %w", err)
	}
	if rec.CreatedAt, err = time.Parse(tsLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse snapshot time: %w", err)
	}
	rec.Snapshot = &model.Snapshot{}
	if err := json.Unmarshal([]byte(payload), rec.Snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", rec.Id, err)
	}

	return &rec, nil
}
