package reviewcards

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, card *Card) error
	GetByID(ctx context.Context, id uuid.UUID) (*Card, error)
	ListByUser(ctx context.Context, userID, tag string, limit int) ([]*Card, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDiary(ctx context.Context, diaryID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID string) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Create(ctx context.Context, card *Card) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO review_cards (id, user_id, diary_id, before_text, after_text, context, tags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		card.ID, card.UserID, card.DiaryID, card.Before, card.After, card.Context, card.Tags, card.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting review card: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Card, error) {
	card := &Card{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, diary_id, before_text, after_text, context, tags, created_at
		 FROM review_cards WHERE id = $1`, id).Scan(
		&card.ID, &card.UserID, &card.DiaryID, &card.Before, &card.After,
		&card.Context, &card.Tags, &card.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying review card: %w", err)
	}
	return card, nil
}

func (r *postgresRepository) ListByUser(ctx context.Context, userID, tag string, limit int) ([]*Card, error) {
	query := `
		SELECT id, user_id, diary_id, before_text, after_text, context, tags, created_at
		FROM review_cards WHERE user_id = $1`
	args := []any{userID}

	if tag != "" {
		args = append(args, tag)
		query += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing review cards: %w", err)
	}
	defer rows.Close()

	var out []*Card
	for rows.Next() {
		card := &Card{}
		if err := rows.Scan(&card.ID, &card.UserID, &card.DiaryID, &card.Before, &card.After,
			&card.Context, &card.Tags, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning review card row: %w", err)
		}
		out = append(out, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating review card rows: %w", err)
	}
	return out, nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM review_cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting review card: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteByDiary(ctx context.Context, diaryID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM review_cards WHERE diary_id = $1`, diaryID)
	if err != nil {
		return fmt.Errorf("deleting cards for diary: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM review_cards WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting user review cards: %w", err)
	}
	return nil
}
