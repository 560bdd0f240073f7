package sqlite

import (
	"context"

	"github.com/metagate/metagate/domain/deploy"
	"github.com/metagate/metagate/ports"
)

// DefaultHistoryLimit is used when a caller asks for a non-positive number
// of records.
const DefaultHistoryLimit = 20

// DeploymentStore implements ports.DeploymentStore using SQLite.
type DeploymentStore struct {
	db *DB
}

// NewDeploymentStore creates a new SQLite deployment store.
func NewDeploymentStore(db *DB) *DeploymentStore {
	return &DeploymentStore{db: db}
}

// Record stores a settled deployment attempt.
func (s *DeploymentStore) Record(ctx context.Context, r deploy.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO deployments (
			id, object_name, api_name, org_alias, field_count,
			status, output, error, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.ObjectName, r.APIName, r.OrgAlias, r.FieldCount,
		string(r.Status), r.Output, r.Error, r.DurationMs, r.CreatedAt.UTC())
	return err
}

// List returns the most recent records, newest first.
func (s *DeploymentStore) List(ctx context.Context, limit int) ([]deploy.Record, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, object_name, api_name, org_alias, field_count,
		       status, output, error, duration_ms, created_at
		FROM deployments
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []deploy.Record
	for rows.Next() {
		var r deploy.Record
		var status string
		if err := rows.Scan(
			&r.ID, &r.ObjectName, &r.APIName, &r.OrgAlias, &r.FieldCount,
			&status, &r.Output, &r.Error, &r.DurationMs, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		r.Status = deploy.Status(status)
		records = append(records, r)
	}

	return records, rows.Err()
}

// Ensure interface compliance.
var _ ports.DeploymentStore = (*DeploymentStore)(nil)
