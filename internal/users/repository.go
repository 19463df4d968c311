package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Ensure(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

// Ensure inserts the user's profile row if it does not already exist.
// Concurrent first requests for the same subject are expected; the conflict
// clause makes them all succeed.
func (r *postgresRepository) Ensure(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, display_name, plan, target_language, native_language, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING`

	_, err := r.pool.Exec(ctx, query,
		user.ID, user.Email, user.DisplayName, user.Plan,
		string(user.TargetLanguage), string(user.NativeLanguage),
		user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("ensuring user: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `
		SELECT id, email, display_name, plan, target_language, native_language, created_at, updated_at
		FROM users WHERE id = $1`

	user := &User{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.DisplayName, &user.Plan,
		&user.TargetLanguage, &user.NativeLanguage,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying user by id: %w", err)
	}
	return user, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET display_name = $2, target_language = $3, native_language = $4, updated_at = $5
		WHERE id = $1`

	user.UpdatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx, query,
		user.ID, user.DisplayName,
		string(user.TargetLanguage), string(user.NativeLanguage),
		user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating user profile: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	return nil
}
