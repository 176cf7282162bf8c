package risk

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
)

// PostgresStore persists risk assessments in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a PostgreSQL-backed assessment store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Compile-time interface check
var _ Store = (*PostgresStore)(nil)

// Migrate creates the risk_assessments table if it doesn't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS risk_assessments (
			id              VARCHAR(40) PRIMARY KEY,
			tenant_id       VARCHAR(40) NOT NULL,
			risk_type       VARCHAR(20) NOT NULL CHECK (risk_type IN ('CREDIT_RISK', 'LIQUIDITY_RISK')),
			severity        VARCHAR(10) NOT NULL CHECK (severity IN ('LOW', 'MEDIUM', 'HIGH', 'CRITICAL')),
			risk_score      NUMERIC(6,2) NOT NULL CHECK (risk_score >= 0),
			probability     NUMERIC(4,3) NOT NULL CHECK (probability >= 0 AND probability <= 0.95),
			factors         JSONB NOT NULL DEFAULT '{}',
			recommendations TEXT[] NOT NULL DEFAULT '{}',
			narrative       TEXT NOT NULL DEFAULT '',
			review_date     TIMESTAMPTZ NOT NULL,
			evaluated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_risk_assessments_tenant
			ON risk_assessments (tenant_id, evaluated_at DESC);

		CREATE INDEX IF NOT EXISTS idx_risk_assessments_critical
			ON risk_assessments (evaluated_at DESC) WHERE severity = 'CRITICAL';
	`)
	return err
}

func (s *PostgresStore) Record(ctx context.Context, a *Assessment) error {
	factorsJSON, err := json.Marshal(a.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO risk_assessments
			(id, tenant_id, risk_type, severity, risk_score, probability, factors, recommendations, narrative, review_date, evaluated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		a.ID, a.TenantID, string(a.Type), string(a.Severity), a.RiskScore,
		a.Probability, factorsJSON, pq.Array(a.Recommendations), a.Narrative,
		a.ReviewDate, a.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("record assessment: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByTenant(ctx context.Context, tenantID string, limit int) ([]*Assessment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tenant_id, risk_type, severity, risk_score, probability, factors, recommendations, narrative, review_date, evaluated_at
		FROM risk_assessments
		WHERE tenant_id = $1
		ORDER BY evaluated_at DESC
		LIMIT $2
	`, tenantID, limit)
	if err != nil {
		return nil, fmt.Errorf("list assessments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []*Assessment
	for rows.Next() {
		var a Assessment
		var factorsJSON []byte
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Type, &a.Severity, &a.RiskScore,
			&a.Probability, &factorsJSON, pq.Array(&a.Recommendations), &a.Narrative,
			&a.ReviewDate, &a.EvaluatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		a.Factors = make(map[string]float64)
		_ = json.Unmarshal(factorsJSON, &a.Factors)
		result = append(result, &a)
	}
	return result, rows.Err()
}
