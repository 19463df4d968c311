package users

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/writediary/writediary/internal/correction"
	"github.com/writediary/writediary/internal/nats"
)

// Eraser removes everything a feature stores for one user. Account deletion
// fans out over the registered erasers before removing the profile row.
type Eraser interface {
	DeleteByUser(ctx context.Context, userID string) error
}

// AuditPublisher emits audit events. Best-effort: a broker outage never
// fails a request.
type AuditPublisher interface {
	PublishAudit(ctx context.Context, event nats.AuditEvent) error
}

type Service struct {
	repo    Repository
	erasers []Eraser
	events  AuditPublisher
	logger  *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// RegisterEraser adds a per-feature cleanup hook. Called during wiring,
// before the server starts.
func (s *Service) RegisterEraser(e Eraser) {
	s.erasers = append(s.erasers, e)
}

// SetAuditPublisher wires event emission. Set during startup; nil disables
// publishing.
func (s *Service) SetAuditPublisher(p AuditPublisher) {
	s.events = p
}

// Provision returns the user's profile, creating it on first sight of the
// subject. New profiles start on the free plan writing English diaries with
// explanations in Japanese until the user picks their own languages.
func (s *Service) Provision(ctx context.Context, userID, email string) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	now := time.Now().UTC()
	user = &User{
		ID:             userID,
		Email:          email,
		Plan:           "free",
		TargetLanguage: correction.LangEnglish,
		NativeLanguage: correction.LangJapanese,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Ensure(ctx, user); err != nil {
		return nil, err
	}

	// A concurrent request may have won the insert; read back the row that
	// actually landed.
	stored, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, fmt.Errorf("user %s missing after provisioning", userID)
	}

	s.logger.Info("provisioned user", "user_id", userID)
	return stored, nil
}

// PlanOf resolves the user's subscription plan. Users without a profile row
// yet are treated as free.
func (s *Service) PlanOf(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "free", nil
	}
	return user.Plan, nil
}

func (s *Service) Get(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

// UpdateProfile changes the user's display name and language pair.
func (s *Service) UpdateProfile(ctx context.Context, userID, displayName string, target, native correction.Language) (*User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	user.DisplayName = displayName
	user.TargetLanguage = target
	user.NativeLanguage = native
	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteAccount removes the user's data across every feature, then the
// profile itself. Eraser failures abort the deletion so no half-erased
// account is left behind a missing profile row.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	for _, e := range s.erasers {
		if err := e.DeleteByUser(ctx, userID); err != nil {
			return fmt.Errorf("erasing user data: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, userID); err != nil {
		return err
	}

	if s.events != nil {
		event := nats.AuditEvent{
			UserID:    userID,
			EventType: nats.EventAccountDeleted,
			Severity:  "warn",
			Timestamp: time.Now().UTC(),
		}
		if err := s.events.PublishAudit(ctx, event); err != nil {
			s.logger.Warn("publishing account deletion event", "user_id", userID, "error", err)
		}
	}

	s.logger.Info("deleted account", "user_id", userID)
	return nil
}
