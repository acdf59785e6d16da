package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"FinScope/internal/domain/models"
	domrepo "FinScope/internal/domain/repository"
	pkgch "FinScope/pkg/clickhouse"
	applogger "FinScope/pkg/logger"
)

// CHAnalysisStore implements AnalysisStore backed by a ClickHouse MergeTree
// table ordered by (ticker, ts).
type CHAnalysisStore struct {
	ch  *pkgch.Client
	db  *sql.DB
	l   *applogger.Logger
	ttl int
}

func NewCHAnalysisStore(ch *pkgch.Client, l *applogger.Logger) *CHAnalysisStore {
	if l == nil {
		l = applogger.Nop()
	}
	return &CHAnalysisStore{ch: ch, db: ch.DB(), l: l, ttl: 180}
}

func (s *CHAnalysisStore) Init(ctx context.Context) error {
	ddl := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS analyses (
            id               String,
            ticker           LowCardinality(String),
            ts               DateTime64(3, 'UTC'),
            verdict          LowCardinality(String),
            confidence       LowCardinality(String),
            trend            LowCardinality(String),
            price            Float64,
            sentiment        Float64,
            price_vector     Float64,
            volume_vector    Float64,
            coherence        Float64,
            direction        LowCardinality(String),
            predicted_change Float64,
            history_source   LowCardinality(String),
            forecast_origin  LowCardinality(String),
            payload          String CODEC(ZSTD(3))
        )
        ENGINE = MergeTree
        ORDER BY (ticker, ts)
        TTL toDateTime(ts) + INTERVAL %d DAY
    `, s.ttl)
	if err := s.ch.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("init analyses table: %w", err)
	}
	return nil
}

func (s *CHAnalysisStore) Save(ctx context.Context, r *models.AnalysisResult) error {
	start := time.Now()
	args, err := analysisArgs(r, utc(r.Timestamp))
	if err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO analyses (%s) VALUES (%s)",
		strings.Join(analysisColumns, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(analysisColumns)), ", "))

	// clickhouse-go batches inserts inside a transaction.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()
	if _, err := stmt.ExecContext(ctx, args...); err != nil {
		_ = tx.Rollback()
		s.l.Error("clickhouse save_analysis error",
			applogger.String("symbol", r.Ticker),
			applogger.Error(err),
		)
		return fmt.Errorf("insert analysis: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit analysis: %w", err)
	}
	s.l.Debug("clickhouse save_analysis ok",
		applogger.String("symbol", r.Ticker),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return nil
}

func (s *CHAnalysisStore) Recent(ctx context.Context, ticker string, limit int) ([]models.AnalysisResult, error) {
	const q = `
        SELECT payload
        FROM analyses
        WHERE ticker = ?
        ORDER BY ts DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, ticker, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("recent analyses: %w", err)
	}
	defer rows.Close()
	return scanPayloads(rows)
}

func (s *CHAnalysisStore) Ping(ctx context.Context) error { return s.ch.Health(ctx) }

func (s *CHAnalysisStore) Close() error { return s.ch.Close() }

func scanPayloads(rows *sql.Rows) ([]models.AnalysisResult, error) {
	out := make([]models.AnalysisResult, 0, 16)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		r, err := decodeAnalysis(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

var _ domrepo.AnalysisStore = (*CHAnalysisStore)(nil)
