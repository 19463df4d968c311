package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, log *Log) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, user_id, event_type, severity, resource_type, resource_id, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		log.ID, log.UserID, log.EventType, log.Severity, log.ResourceType,
		log.ResourceID, log.Details, log.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting audit log: %w", err)
	}
	return nil
}

func (r *Repository) ListByUser(ctx context.Context, userID string, limit int) ([]*Log, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, event_type, severity, resource_type, resource_id, details, created_at
		 FROM audit_logs WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing audit logs: %w", err)
	}
	defer rows.Close()

	var out []*Log
	for rows.Next() {
		log := &Log{}
		if err := rows.Scan(&log.ID, &log.UserID, &log.EventType, &log.Severity,
			&log.ResourceType, &log.ResourceID, &log.Details, &log.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning audit log row: %w", err)
		}
		out = append(out, log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit log rows: %w", err)
	}
	return out, nil
}

// DeleteByUser erases the user's audit trail. Part of account deletion.
func (r *Repository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM audit_logs WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting user audit logs: %w", err)
	}
	return nil
}
