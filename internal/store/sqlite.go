package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/elonfeng/trendpulse/pkg/trend"
)

// SQLiteCache implements Cache using SQLite.
type SQLiteCache struct {
	db  *sqlx.DB
	ttl time.Duration
	now func() time.Time
}

type buildRow struct {
	ID      string `db:"id"`
	BuiltAt int64  `db:"built_at"`
	Trends  string `db:"trends"`
}

// NewSQLite opens a SQLite database and runs migrations.
func NewSQLite(path string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteCache{db: db, ttl: ttl, now: time.Now}, nil
}

func (s *SQLiteCache) Close() error {
	return s.db.Close()
}

// SaveBuild stores b and drops builds that have outlived the TTL.
func (s *SQLiteCache) SaveBuild(ctx context.Context, b *Build) error {
	trendsJSON, err := json.Marshal(b.Trends)
	if err != nil {
		return fmt.Errorf("encode build %s: %w", b.ID, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO builds (id, built_at, trends) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET built_at = excluded.built_at, trends = excluded.trends
	`, b.ID, b.BuiltAt.UnixMilli(), string(trendsJSON))
	if err != nil {
		return fmt.Errorf("save build %s: %w", b.ID, err)
	}

	cutoff := s.now().Add(-s.ttl).UnixMilli()
	if _, err := s.db.ExecContext(ctx, `DELETE FROM builds WHERE built_at < ? AND id != ?`, cutoff, b.ID); err != nil {
		return fmt.Errorf("prune builds: %w", err)
	}
	return nil
}

func (s *SQLiteCache) LatestBuild(ctx context.Context) (*Build, error) {
	var row buildRow
	err := s.db.GetContext(ctx, &row, `SELECT id, built_at, trends FROM builds ORDER BY built_at DESC LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get latest build: %w", err)
	}

	builtAt := time.UnixMilli(row.BuiltAt).UTC()
	if s.now().Sub(builtAt) > s.ttl {
		return nil, ErrNotFound
	}

	var trends []trend.Trend
	if err := json.Unmarshal([]byte(row.Trends), &trends); err != nil {
		return nil, fmt.Errorf("decode build %s: %w", row.ID, err)
	}
	if trends == nil {
		trends = []trend.Trend{}
	}
	return &Build{ID: row.ID, BuiltAt: builtAt, Trends: trends}, nil
}

func (s *SQLiteCache) MarkAlerted(ctx context.Context, trendID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO alerted_trends (trend_id, alerted_at) VALUES (?, ?)
		ON CONFLICT(trend_id) DO NOTHING
	`, trendID, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("mark alerted %s: %w", trendID, err)
	}
	return nil
}

func (s *SQLiteCache) Alerted(ctx context.Context, trendID string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM alerted_trends WHERE trend_id = ?`, trendID)
	if err != nil {
		return false, fmt.Errorf("check alerted %s: %w", trendID, err)
	}
	return count > 0, nil
}
