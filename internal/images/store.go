// Package images stores scanned diary page images. Images are kept only so
// a user can review what a scan transcribed; they are never re-read by the
// AI pipeline after the initial recognition pass.
package images

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store interface {
	Put(ctx context.Context, userID string, diaryID uuid.UUID, mediaType string, data []byte) error
	DeleteByDiary(ctx context.Context, diaryID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID string) error
}

type postgresStore struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) Store {
	return &postgresStore{pool: pool}
}

func (s *postgresStore) Put(ctx context.Context, userID string, diaryID uuid.UUID, mediaType string, data []byte) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO diary_images (id, diary_id, user_id, media_type, data, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), diaryID, userID, mediaType, data, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("storing diary image: %w", err)
	}
	return nil
}

func (s *postgresStore) DeleteByDiary(ctx context.Context, diaryID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM diary_images WHERE diary_id = $1`, diaryID)
	if err != nil {
		return fmt.Errorf("deleting diary images: %w", err)
	}
	return nil
}

func (s *postgresStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM diary_images WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deleting user images: %w", err)
	}
	return nil
}
