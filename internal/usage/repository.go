package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the usage ledger storage contract. Both increments MUST be a
// single atomic add-with-default statement at the storage layer: concurrent
// requests from one user are normal (double-taps, client retries) and a
// read-modify-write would lose increments.
type Repository interface {
	Peek(ctx context.Context, userID string, f Feature, day string) (count, bonusCount int, err error)
	IncrementUsage(ctx context.Context, userID string, f Feature, day string, expiresAt time.Time) error
	IncrementBonus(ctx context.Context, userID string, f Feature, day string, expiresAt time.Time) error
	DeleteByUser(ctx context.Context, userID string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the Postgres-backed ledger.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Peek(ctx context.Context, userID string, f Feature, day string) (int, int, error) {
	var count, bonus int
	err := r.pool.QueryRow(ctx,
		`SELECT count, bonus_count FROM usage_records
		 WHERE user_id = $1 AND feature = $2 AND day = $3`,
		userID, string(f), day,
	).Scan(&count, &bonus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, nil
		}
		return 0, 0, fmt.Errorf("peeking usage record: %w", err)
	}
	return count, bonus, nil
}

// IncrementUsage atomically adds 1 to count, creating the day's record if
// absent, and refreshes the retention expiry.
func (r *postgresRepository) IncrementUsage(ctx context.Context, userID string, f Feature, day string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO usage_records (user_id, feature, day, count, bonus_count, expires_at)
		 VALUES ($1, $2, $3, 1, 0, $4)
		 ON CONFLICT (user_id, feature, day)
		 DO UPDATE SET count = usage_records.count + 1, expires_at = $4`,
		userID, string(f), day, expiresAt)
	if err != nil {
		return fmt.Errorf("incrementing usage: %w", err)
	}
	return nil
}

// IncrementBonus atomically adds 1 to bonus_count under the same
// initialize-or-add semantics as IncrementUsage.
func (r *postgresRepository) IncrementBonus(ctx context.Context, userID string, f Feature, day string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO usage_records (user_id, feature, day, count, bonus_count, expires_at)
		 VALUES ($1, $2, $3, 0, 1, $4)
		 ON CONFLICT (user_id, feature, day)
		 DO UPDATE SET bonus_count = usage_records.bonus_count + 1, expires_at = $4`,
		userID, string(f), day, expiresAt)
	if err != nil {
		return fmt.Errorf("incrementing bonus: %w", err)
	}
	return nil
}

// DeleteByUser removes every ledger row for a user. Only account erasure
// calls this; there is no other delete path.
func (r *postgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM usage_records WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting usage records: %w", err)
	}
	return nil
}

// PurgeExpired removes rows past their retention expiry.
func (r *postgresRepository) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM usage_records WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purging expired usage records: %w", err)
	}
	return tag.RowsAffected(), nil
}
