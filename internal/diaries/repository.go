package diaries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/writediary/writediary/internal/correction"
)

type Repository interface {
	Create(ctx context.Context, d *Diary) error
	GetByID(ctx context.Context, id uuid.UUID) (*Diary, error)
	ListByUser(ctx context.Context, userID string, from, to string, limit int) ([]*Diary, error)
	UpdateText(ctx context.Context, d *Diary) error
	SaveCorrection(ctx context.Context, id uuid.UUID, correctedText string, corrections []correction.Correction) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByUser(ctx context.Context, userID string) error
}

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &postgresRepository{pool: pool}
}

const diaryColumns = `id, user_id, date, original_text, corrected_text, corrections, input_type, created_at, updated_at`

func scanDiary(row pgx.Row) (*Diary, error) {
	d := &Diary{}
	var correctionsJSON []byte
	err := row.Scan(&d.ID, &d.UserID, &d.Date, &d.OriginalText, &d.CorrectedText,
		&correctionsJSON, &d.InputType, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(correctionsJSON) > 0 {
		if err := json.Unmarshal(correctionsJSON, &d.Corrections); err != nil {
			return nil, fmt.Errorf("decoding corrections: %w", err)
		}
	}
	return d, nil
}

func (r *postgresRepository) Create(ctx context.Context, d *Diary) error {
	query := `
		INSERT INTO diaries (` + diaryColumns + `)
		VALUES ($1, $2, $3, $4, NULL, NULL, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		d.ID, d.UserID, d.Date, d.OriginalText, d.InputType, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting diary: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id uuid.UUID) (*Diary, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries WHERE id = $1`

	d, err := scanDiary(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying diary by id: %w", err)
	}
	return d, nil
}

// ListByUser returns the user's entries newest-first, optionally bounded by
// an inclusive date range.
func (r *postgresRepository) ListByUser(ctx context.Context, userID string, from, to string, limit int) ([]*Diary, error) {
	query := `SELECT ` + diaryColumns + ` FROM diaries WHERE user_id = $1`
	args := []any{userID}

	if from != "" {
		args = append(args, from)
		query += fmt.Sprintf(" AND date >= $%d", len(args))
	}
	if to != "" {
		args = append(args, to)
		query += fmt.Sprintf(" AND date <= $%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY date DESC, created_at DESC LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing diaries: %w", err)
	}
	defer rows.Close()

	var out []*Diary
	for rows.Next() {
		d, err := scanDiary(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning diary row: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating diary rows: %w", err)
	}
	return out, nil
}

// UpdateText persists edited text and whatever correction state the service
// decided on. Passing nil corrected fields clears a stale correction.
func (r *postgresRepository) UpdateText(ctx context.Context, d *Diary) error {
	var correctionsJSON []byte
	if d.Corrections != nil {
		var err error
		correctionsJSON, err = json.Marshal(d.Corrections)
		if err != nil {
			return fmt.Errorf("encoding corrections: %w", err)
		}
	}

	d.UpdatedAt = time.Now().UTC()
	_, err := r.pool.Exec(ctx,
		`UPDATE diaries
		 SET date = $2, original_text = $3, corrected_text = $4, corrections = $5, updated_at = $6
		 WHERE id = $1`,
		d.ID, d.Date, d.OriginalText, d.CorrectedText, correctionsJSON, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating diary: %w", err)
	}
	return nil
}

// SaveCorrection durably stores a correction result. The usage ledger is
// only charged after this returns without error.
func (r *postgresRepository) SaveCorrection(ctx context.Context, id uuid.UUID, correctedText string, corrections []correction.Correction) error {
	if corrections == nil {
		corrections = []correction.Correction{}
	}
	correctionsJSON, err := json.Marshal(corrections)
	if err != nil {
		return fmt.Errorf("encoding corrections: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE diaries
		 SET corrected_text = $2, corrections = $3, updated_at = $4
		 WHERE id = $1`,
		id, correctedText, correctionsJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving correction: %w", err)
	}
	return nil
}

func (r *postgresRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM diaries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting diary: %w", err)
	}
	return nil
}

func (r *postgresRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM diaries WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting user diaries: %w", err)
	}
	return nil
}
