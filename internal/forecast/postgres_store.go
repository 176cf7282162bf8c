package forecast

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// PostgresStore persists forecasts in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed forecast store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Compile-time interface check
var _ Store = (*PostgresStore)(nil)

// Migrate creates the forecasts table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS forecasts (
			id              VARCHAR(40) PRIMARY KEY,
			tenant_id       VARCHAR(40) NOT NULL,
			kind            VARCHAR(20) NOT NULL,
			method          VARCHAR(20) NOT NULL,
			target_date     TIMESTAMPTZ NOT NULL,
			predicted_value NUMERIC(14,2) NOT NULL,
			confidence      NUMERIC(4,3) NOT NULL CHECK (confidence >= 0 AND confidence <= 1),
			features        JSONB NOT NULL DEFAULT '{}',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_forecasts_tenant
			ON forecasts (tenant_id, created_at DESC);
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, f *Forecast) error {
	featuresJSON, err := json.Marshal(f.Features)
	if err != nil {
		return fmt.Errorf("marshal features: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO forecasts (id, tenant_id, kind, method, target_date, predicted_value, confidence, features, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		f.ID, f.TenantID, f.Kind, string(f.Method), f.TargetDate,
		f.PredictedValue, f.Confidence, featuresJSON, f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record forecast: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Forecast, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, kind, method, target_date, predicted_value, confidence, features, created_at
		FROM forecasts
		WHERE tenant_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list forecasts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*Forecast
	for rows.Next() {
		var f Forecast
		var featuresJSON []byte
		if err := rows.Scan(&f.ID, &f.TenantID, &f.Kind, &f.Method, &f.TargetDate,
			&f.PredictedValue, &f.Confidence, &featuresJSON, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan forecast: %w", err)
		}
		f.Features = make(map[string]float64)
		_ = json.Unmarshal(featuresJSON, &f.Features)
		out = append(out, &f)
	}
	return out, rows.Err()
}
