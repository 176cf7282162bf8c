package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists routed queries in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed query log.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Compile-time interface check
var _ Store = (*PostgresStore)(nil)

// Migrate creates the query_log table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS query_log (
			id                 VARCHAR(40) PRIMARY KEY,
			tenant_id          VARCHAR(40) NOT NULL,
			query              TEXT NOT NULL,
			intent             VARCHAR(30) NOT NULL,
			summary            TEXT NOT NULL DEFAULT '',
			response           JSONB,
			processing_time_ms NUMERIC(10,3) NOT NULL,
			is_successful      BOOLEAN NOT NULL,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_query_log_tenant
			ON query_log (tenant_id, created_at DESC);
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, r *Result) error {
	responseJSON, err := json.Marshal(r.Response)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO query_log (id, tenant_id, query, intent, summary, response, processing_time_ms, is_successful, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		r.ID, r.TenantID, r.Query, string(r.Intent), r.Summary,
		responseJSON, r.ProcessingTimeMs, r.IsSuccessful, r.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record query: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Result, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, query, intent, summary, response, processing_time_ms, is_successful, created_at
		FROM query_log
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list queries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Result
	for rows.Next() {
		var r Result
		var responseJSON []byte
		if err := rows.Scan(&r.ID, &r.TenantID, &r.Query, &r.Intent, &r.Summary,
			&responseJSON, &r.ProcessingTimeMs, &r.IsSuccessful, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan query: %w", err)
		}
		_ = json.Unmarshal(responseJSON, &r.Response)
		result = append(result, &r)
	}
	return result, rows.Err()
}
