package behavior

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore persists behavioral profiles in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed profile store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Compile-time interface check
var _ Store = (*PostgresStore)(nil)

// Migrate creates the behavior_profiles table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS behavior_profiles (
			id                  VARCHAR(40) PRIMARY KEY,
			tenant_id           VARCHAR(40) NOT NULL,
			customer_id         VARCHAR(40) NOT NULL,
			churn_probability   NUMERIC(4,3) NOT NULL CHECK (churn_probability >= 0 AND churn_probability <= 1),
			segment             VARCHAR(30) NOT NULL,
			metrics             JSONB NOT NULL DEFAULT '{}',
			next_purchase       JSONB NOT NULL DEFAULT '{}',
			recommended_actions TEXT[] NOT NULL DEFAULT '{}',
			evaluated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_behavior_profiles_tenant
			ON behavior_profiles (tenant_id, evaluated_at DESC);

		CREATE INDEX IF NOT EXISTS idx_behavior_profiles_customer
			ON behavior_profiles (tenant_id, customer_id, evaluated_at DESC);
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, p *Profile) error {
	metricsJSON, err := json.Marshal(p.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	nextJSON, err := json.Marshal(p.NextPurchase)
	if err != nil {
		return fmt.Errorf("marshal next purchase: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO behavior_profiles
			(id, tenant_id, customer_id, churn_probability, segment, metrics, next_purchase, recommended_actions, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		p.ID, p.TenantID, p.CustomerID, p.ChurnProbability, string(p.Segment),
		metricsJSON, nextJSON, pq.Array(p.RecommendedActions), p.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("record profile: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Profile, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, customer_id, churn_probability, segment, metrics, next_purchase, recommended_actions, evaluated_at
		FROM behavior_profiles
		WHERE tenant_id = $1
		ORDER BY evaluated_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Profile
	for rows.Next() {
		var p Profile
		var metricsJSON, nextJSON []byte
		if err := rows.Scan(&p.ID, &p.TenantID, &p.CustomerID, &p.ChurnProbability,
			&p.Segment, &metricsJSON, &nextJSON, pq.Array(&p.RecommendedActions),
			&p.EvaluatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		_ = json.Unmarshal(metricsJSON, &p.Metrics)
		_ = json.Unmarshal(nextJSON, &p.NextPurchase)
		result = append(result, &p)
	}
	return result, rows.Err()
}
