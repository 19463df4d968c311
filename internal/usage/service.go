package usage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/writediary/writediary/internal/metrics"
	"github.com/writediary/writediary/internal/nats"
)

// PlanResolver reports the subscription plan for a user. Implemented by the
// users service; declared here so the ledger does not depend on that package.
type PlanResolver interface {
	PlanOf(ctx context.Context, userID string) (string, error)
}

// AuditPublisher emits audit events. Best-effort: a broker outage never
// fails a grant.
type AuditPublisher interface {
	PublishAudit(ctx context.Context, event nats.AuditEvent) error
}

// Service wraps the ledger with plan-aware admission, commits, and bonus
// grants.
type Service struct {
	repo   Repository
	plans  PlanResolver
	events AuditPublisher
	logger *slog.Logger
	now    func() time.Time
}

func NewService(repo Repository, plans PlanResolver, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		plans:  plans,
		logger: logger,
		now:    time.Now,
	}
}

// SetAuditPublisher wires event emission. Set during startup; nil disables
// publishing.
func (s *Service) SetAuditPublisher(p AuditPublisher) {
	s.events = p
}

func (s *Service) today() string {
	return s.now().UTC().Format("2006-01-02")
}

func (s *Service) expiry() time.Time {
	return s.now().UTC().Add(RetentionDays * 24 * time.Hour)
}

// Admit checks whether the user may perform one more metered action today.
// A denial is returned as a *QuotaError; any other error is infrastructure.
// Admit never writes: the caller commits only after the action succeeds.
func (s *Service) Admit(ctx context.Context, userID string, f Feature) error {
	plan, err := s.plans.PlanOf(ctx, userID)
	if err != nil {
		return fmt.Errorf("resolving plan: %w", err)
	}

	count, bonus, err := s.repo.Peek(ctx, userID, f, s.today())
	if err != nil {
		return err
	}

	decision := CheckAdmission(plan, f, count, bonus)
	if !decision.Allowed {
		metrics.QuotaDenialsTotal.WithLabelValues(string(f)).Inc()
		s.logger.Info("quota denied",
			"user_id", userID,
			"feature", string(f),
			"count", decision.Count,
			"bonus_count", decision.BonusCount,
		)
		return DenialError(f, decision)
	}
	return nil
}

// Commit records one completed metered action. Called only after the
// action's result has been durably persisted, so an interrupted request
// costs the user nothing.
func (s *Service) Commit(ctx context.Context, userID string, f Feature) error {
	return s.repo.IncrementUsage(ctx, userID, f, s.today(), s.expiry())
}

// Snapshot returns the user's current standing for a feature.
func (s *Service) Snapshot(ctx context.Context, userID string, f Feature) (Snapshot, error) {
	plan, err := s.plans.PlanOf(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("resolving plan: %w", err)
	}

	count, bonus, err := s.repo.Peek(ctx, userID, f, s.today())
	if err != nil {
		return Snapshot{}, err
	}

	limits := LimitsFor(plan, f)
	return Snapshot{
		Count:      count,
		Limit:      limits.PerDay,
		BonusCount: bonus,
		MaxBonus:   limits.MaxBonusPerDay,
	}, nil
}

// GrantBonus awards one bonus unit, raising today's effective limit by one.
// Premium users and users already at the bonus cap get a *QuotaError.
func (s *Service) GrantBonus(ctx context.Context, userID string, f Feature) (BonusGrant, error) {
	plan, err := s.plans.PlanOf(ctx, userID)
	if err != nil {
		return BonusGrant{}, fmt.Errorf("resolving plan: %w", err)
	}

	day := s.today()
	_, bonus, err := s.repo.Peek(ctx, userID, f, day)
	if err != nil {
		return BonusGrant{}, err
	}

	decision := CheckBonusGrant(plan, f, bonus)
	if !decision.Allowed {
		return BonusGrant{}, BonusDenialError(decision)
	}

	if err := s.repo.IncrementBonus(ctx, userID, f, day, s.expiry()); err != nil {
		return BonusGrant{}, err
	}

	granted := bonus + 1
	remaining := decision.MaxBonus - granted
	if remaining < 0 {
		remaining = 0
	}

	if s.events != nil {
		event := nats.AuditEvent{
			UserID:       userID,
			EventType:    nats.EventBonusGranted,
			Severity:     "info",
			ResourceType: "usage",
			Details:      map[string]any{"feature": string(f), "bonus_count": granted},
			Timestamp:    s.now().UTC(),
		}
		if err := s.events.PublishAudit(ctx, event); err != nil {
			s.logger.Warn("publishing bonus grant event", "user_id", userID, "error", err)
		}
	}

	return BonusGrant{
		BonusCount:     granted,
		MaxBonus:       decision.MaxBonus,
		RemainingBonus: remaining,
	}, nil
}

// DeleteByUser erases the user's ledger rows. Part of account deletion.
func (s *Service) DeleteByUser(ctx context.Context, userID string) error {
	return s.repo.DeleteByUser(ctx, userID)
}
