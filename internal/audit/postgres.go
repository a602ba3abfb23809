package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS session_activity (
	id          UUID PRIMARY KEY,
	session_id  TEXT NOT NULL,
	action      TEXT NOT NULL,
	severity    TEXT NOT NULL,
	table_name  TEXT,
	path        TEXT,
	detail      TEXT,
	rows_before INTEGER,
	rows_after  INTEGER,
	ip_address  TEXT,
	user_agent  TEXT,
	error       TEXT,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS session_activity_created_at_idx ON session_activity (created_at DESC);
`

const insertSQL = `
INSERT INTO session_activity
	(id, session_id, action, severity, table_name, path, detail,
	 rows_before, rows_after, ip_address, user_agent, error, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

const recentSQL = `
SELECT id::text, session_id, action, severity, table_name, path, detail,
       rows_before, rows_after, ip_address, user_agent, error, created_at
FROM session_activity
ORDER BY created_at DESC
LIMIT $1`

// PoolOptions tunes the connection pool of a PostgresRecorder.
type PoolOptions struct {
	MaxConns int32
	MinConns int32
}

// PostgresRecorder stores history entries in PostgreSQL.
type PostgresRecorder struct {
	pool *pgxpool.Pool
}

// NewPostgresRecorder connects to databaseURL, verifies the connection and
// creates the history table if needed.
func NewPostgresRecorder(ctx context.Context, databaseURL string, opts PoolOptions) (*PostgresRecorder, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if opts.MaxConns > 0 {
		poolConfig.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		poolConfig.MinConns = opts.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create history table: %w", err)
	}
	return &PostgresRecorder{pool: pool}, nil
}

func (p *PostgresRecorder) Record(ctx context.Context, e Entry) error {
	_, err := p.pool.Exec(ctx, insertSQL,
		e.ID,
		e.SessionID,
		string(e.Action),
		string(e.Severity),
		toPgText(e.Table),
		toPgText(e.Path),
		toPgText(e.Detail),
		toPgInt4(e.RowsBefore),
		toPgInt4(e.RowsAfter),
		toPgText(e.IPAddress),
		toPgText(e.UserAgent),
		toPgText(e.Error),
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

func (p *PostgresRecorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultMaxEntries
	}
	rows, err := p.pool.Query(ctx, recentSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("scan activity: %w", err)
	}
	return entries, nil
}

func (p *PostgresRecorder) Close() { p.pool.Close() }

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var (
		e                              Entry
		action, severity               string
		table, path, detail            pgtype.Text
		rowsBefore, rowsAfter          pgtype.Int4
		ipAddress, userAgent, errorMsg pgtype.Text
	)
	err := row.Scan(&e.ID, &e.SessionID, &action, &severity, &table, &path, &detail,
		&rowsBefore, &rowsAfter, &ipAddress, &userAgent, &errorMsg, &e.CreatedAt)
	if err != nil {
		return Entry{}, err
	}
	e.Action = Action(action)
	e.Severity = Severity(severity)
	e.Table = table.String
	e.Path = path.String
	e.Detail = detail.String
	e.RowsBefore = int(rowsBefore.Int32)
	e.RowsAfter = int(rowsAfter.Int32)
	e.IPAddress = ipAddress.String
	e.UserAgent = userAgent.String
	e.Error = errorMsg.String
	return e, nil
}

// toPgText stores empty strings as NULL.
func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgInt4(i int) pgtype.Int4 {
	if i == 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}
}
