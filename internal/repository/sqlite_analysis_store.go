package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	applogger "FinScope/pkg/logger"
)

// SQLiteAnalysisStore keeps analyses in a local SQLite file. Writes are
// serialized; WAL mode lets readers proceed while a write is in flight.
type SQLiteAnalysisStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
	l    *applogger.Logger
}

// NewSQLiteAnalysisStore opens (or creates) the database at path. Use
// ":memory:" for a throwaway store.
func NewSQLiteAnalysisStore(path string, l *applogger.Logger) (*SQLiteAnalysisStore, error) {
	if l == nil {
		l = applogger.Nop()
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create sqlite dir: %w", err)
			}
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if path == ":memory:" {
		// each connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	return &SQLiteAnalysisStore{db: db, path: path, l: l}, nil
}

func (s *SQLiteAnalysisStore) Init(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`CREATE TABLE IF NOT EXISTS analyses (
			id               TEXT PRIMARY KEY,
			ticker           TEXT NOT NULL,
			ts               INTEGER NOT NULL,
			verdict          TEXT,
			confidence       TEXT,
			trend            TEXT,
			price            REAL,
			sentiment        REAL,
			price_vector     REAL,
			volume_vector    REAL,
			coherence        REAL,
			direction        TEXT,
			predicted_change REAL,
			history_source   TEXT,
			forecast_origin  TEXT,
			payload          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ticker_ts ON analyses(ticker, ts)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %q: %w", firstLine(stmt), err)
		}
	}
	s.l.Info("sqlite analysis store ready", applogger.String("path", s.path))
	return nil
}

func (s *SQLiteAnalysisStore) Save(ctx context.Context, r *models.AnalysisResult) error {
	args, err := analysisArgs(r, utc(r.Timestamp).UnixMilli())
	if err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT OR REPLACE INTO analyses (%s) VALUES (%s)",
		strings.Join(analysisColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(analysisColumns)), ", "))

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *SQLiteAnalysisStore) Recent(ctx context.Context, ticker string, limit int) ([]models.AnalysisResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM analyses WHERE ticker = ? ORDER BY ts DESC LIMIT ?`,
		ticker, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("recent analyses: %w", err)
	}
	defer rows.Close()
	return scanPayloads(rows)
}

func (s *SQLiteAnalysisStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQLiteAnalysisStore) Close() error { return s.db.Close() }

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var _ domrepo.AnalysisStore = (*SQLiteAnalysisStore)(nil)
