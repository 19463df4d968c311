package reviewcards

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/writediary/writediary/internal/diaries"
)

var (
	// ErrDiaryNotFound covers both missing and foreign diaries.
	ErrDiaryNotFound = errors.New("diary not found")
	// ErrNoCorrections means the diary has no stored correction pass yet.
	ErrNoCorrections = errors.New("diary has no corrections")
)

// DiarySource fetches diaries with ownership enforced. Satisfied by
// diaries.Service.
type DiarySource interface {
	GetOwned(ctx context.Context, userID string, id uuid.UUID) (*diaries.Diary, error)
}

type Service struct {
	repo    Repository
	diaries DiarySource
	logger  *slog.Logger
}

func NewService(repo Repository, src DiarySource, logger *slog.Logger) *Service {
	return &Service{repo: repo, diaries: src, logger: logger}
}

// CreateFromCorrections builds one card per selected correction index.
// Out-of-range indices are skipped rather than failing the batch, so a
// client holding a stale correction list still gets the valid cards.
func (s *Service) CreateFromCorrections(ctx context.Context, userID string, diaryID uuid.UUID, indices []int) ([]*Card, error) {
	d, err := s.diaries.GetOwned(ctx, userID, diaryID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrDiaryNotFound
	}
	if len(d.Corrections) == 0 {
		return nil, ErrNoCorrections
	}

	source := d.OriginalText
	if d.CorrectedText != nil {
		source = *d.CorrectedText
	}

	now := time.Now().UTC()
	var created []*Card
	for _, idx := range indices {
		if idx < 0 || idx >= len(d.Corrections) {
			continue
		}
		c := d.Corrections[idx]
		card := &Card{
			ID:        uuid.New(),
			UserID:    userID,
			DiaryID:   diaryID,
			Before:    c.Before,
			After:     c.After,
			Context:   extractContext(source, c.After),
			Tags:      []string{c.Type},
			CreatedAt: now,
		}
		if err := s.repo.Create(ctx, card); err != nil {
			return nil, err
		}
		created = append(created, card)
	}

	s.logger.Info("created review cards",
		"user_id", userID, "diary_id", diaryID, "count", len(created))
	return created, nil
}

func (s *Service) List(ctx context.Context, userID, tag string, limit int) ([]*Card, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, tag, limit)
}

// Delete removes a card the caller owns. Foreign cards look missing.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	card, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if card == nil || card.UserID != userID {
		return false, nil
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteByDiary removes a diary's cards. Called from the diary delete
// cascade.
func (s *Service) DeleteByDiary(ctx context.Context, diaryID uuid.UUID) error {
	return s.repo.DeleteByDiary(ctx, diaryID)
}

// DeleteByUser erases the user's cards. Part of account deletion.
func (s *Service) DeleteByUser(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}
