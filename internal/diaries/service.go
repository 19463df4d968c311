package diaries

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/writediary/writediary/internal/ai"
	"github.com/writediary/writediary/internal/correction"
	"github.com/writediary/writediary/internal/images"
	"github.com/writediary/writediary/internal/metrics"
	"github.com/writediary/writediary/internal/nats"
	"github.com/writediary/writediary/internal/usage"
	"github.com/writediary/writediary/internal/users"
)

// ModelInvoker is the AI surface this service needs. Satisfied by
// ai.Invoker; tests substitute a fake.
type ModelInvoker interface {
	CorrectText(ctx context.Context, system, user string) (*correction.Result, error)
	RecognizeText(ctx context.Context, prompt, imageB64, mediaType string) (string, error)
}

// UsageGate admits and commits metered actions. Satisfied by usage.Service.
type UsageGate interface {
	Admit(ctx context.Context, userID string, f usage.Feature) error
	Commit(ctx context.Context, userID string, f usage.Feature) error
}

// ProfileSource resolves user profiles. Satisfied by users.Service.
type ProfileSource interface {
	Get(ctx context.Context, userID string) (*users.User, error)
}

// CardSweeper removes review cards tied to a diary when the diary goes away.
type CardSweeper interface {
	DeleteByDiary(ctx context.Context, diaryID uuid.UUID) error
}

// AuditPublisher emits audit events. Publishing is best-effort: a broker
// outage never fails a user request.
type AuditPublisher interface {
	PublishAudit(ctx context.Context, event nats.AuditEvent) error
}

// ServiceConfig carries orchestration toggles.
type ServiceConfig struct {
	// FallbackOriginal, when set, turns a model outage during correction
	// into a degraded success: the original text is echoed back uncorrected,
	// nothing is persisted, and the user is not charged. Off by default so
	// clients see the outage and can retry.
	FallbackOriginal bool
}

type Service struct {
	repo     Repository
	invoker  ModelInvoker
	gate     UsageGate
	profiles ProfileSource
	imgs     images.Store
	cards    CardSweeper
	events   AuditPublisher
	cfg      ServiceConfig
	logger   *slog.Logger
}

func NewService(
	repo Repository,
	invoker ModelInvoker,
	gate UsageGate,
	profiles ProfileSource,
	imgs images.Store,
	events AuditPublisher,
	cfg ServiceConfig,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		invoker:  invoker,
		gate:     gate,
		profiles: profiles,
		imgs:     imgs,
		events:   events,
		cfg:      cfg,
		logger:   logger,
	}
}

// SetCardSweeper wires the review-card cascade. Set during startup; avoids
// a package cycle with the cards feature.
func (s *Service) SetCardSweeper(cs CardSweeper) {
	s.cards = cs
}

// Create stores a manually written entry. Scanned entries are created by
// the Scan flow only.
func (s *Service) Create(ctx context.Context, userID, date, text string) (*Diary, error) {
	now := time.Now().UTC()
	d := &Diary{
		ID:           uuid.New(),
		UserID:       userID,
		Date:         date,
		OriginalText: text,
		InputType:    InputManual,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// GetOwned returns the entry when it exists and belongs to userID, nil
// otherwise. Entries owned by someone else are indistinguishable from
// missing ones so diary IDs cannot be probed.
func (s *Service) GetOwned(ctx context.Context, userID string, id uuid.UUID) (*Diary, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil || d.UserID != userID {
		return nil, nil
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, userID, from, to string, limit int) ([]*Diary, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repo.ListByUser(ctx, userID, from, to, limit)
}

// Update edits an entry's date and text. Changing the text invalidates any
// stored correction, which refers to the old wording; rewriting only
// whitespace keeps it.
func (s *Service) Update(ctx context.Context, userID string, id uuid.UUID, date, text string) (*Diary, error) {
	d, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}

	textChanged := strings.TrimSpace(d.OriginalText) != strings.TrimSpace(text)
	d.Date = date
	d.OriginalText = text
	if textChanged {
		d.CorrectedText = nil
		d.Corrections = nil
	}

	if err := s.repo.UpdateText(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

// Delete removes an entry along with its review cards and scanned image.
func (s *Service) Delete(ctx context.Context, userID string, id uuid.UUID) (bool, error) {
	d, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if d == nil {
		return false, nil
	}

	if s.cards != nil {
		if err := s.cards.DeleteByDiary(ctx, id); err != nil {
			return false, err
		}
	}
	if err := s.imgs.DeleteByDiary(ctx, id); err != nil {
		return false, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

// Correct runs the AI correction flow: admission, prompt assembly, model
// invocation, durable persistence, then the usage charge. The order is the
// point: the user pays only for corrections they actually received.
func (s *Service) Correct(ctx context.Context, userID string, id uuid.UUID, mode correction.Mode) (*Diary, error) {
	d, err := s.GetOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, nil
	}

	if err := s.gate.Admit(ctx, userID, usage.FeatureCorrection); err != nil {
		return nil, err
	}

	target, native, plan, err := s.languagePrefs(ctx, userID)
	if err != nil {
		return nil, err
	}

	system := correction.BuildCorrectionPrompt(mode, target, native)
	user := correction.BuildUserPrompt(d.OriginalText, target, native)

	result, err := s.invoker.CorrectText(ctx, system, user)
	if err != nil {
		metrics.CorrectionsTotal.WithLabelValues("failure").Inc()
		if s.cfg.FallbackOriginal && errors.Is(err, ai.ErrModelUnavailable) {
			s.logger.Warn("model unavailable, returning original text uncorrected",
				"user_id", userID, "diary_id", id, "error", err)
			fallback := *d
			fallback.CorrectedText = &d.OriginalText
			fallback.Corrections = []correction.Correction{}
			return &fallback, nil
		}
		return nil, err
	}

	if err := s.repo.SaveCorrection(ctx, id, result.CorrectedText, result.Corrections); err != nil {
		return nil, err
	}

	// Premium corrections are unmetered end to end.
	if plan != usage.PlanPremium {
		if err := s.gate.Commit(ctx, userID, usage.FeatureCorrection); err != nil {
			s.logger.Error("recording correction usage", "user_id", userID, "error", err)
		}
	}

	metrics.CorrectionsTotal.WithLabelValues("success").Inc()
	s.publishAudit(ctx, nats.AuditEvent{
		UserID:       userID,
		EventType:    nats.EventDiaryCorrected,
		Severity:     "info",
		ResourceType: "diary",
		ResourceID:   id.String(),
		Details:      map[string]any{"mode": string(mode), "corrections": len(result.Corrections)},
		Timestamp:    time.Now().UTC(),
	})

	d.CorrectedText = &result.CorrectedText
	d.Corrections = result.Corrections
	return d, nil
}

// ScanResult is the outcome of the scan flow. An empty Text is a valid
// result, not an error: the model saw no legible writing, so no diary is
// created and the scan is not charged.
type ScanResult struct {
	Text  string `json:"text"`
	Diary *Diary `json:"diary,omitempty"`
}

// Scan transcribes a handwritten page and creates the diary entry from the
// result. Like Correct, the usage charge lands only after the entry is
// durably stored.
func (s *Service) Scan(ctx context.Context, userID, date, imageData string) (*ScanResult, error) {
	if err := s.gate.Admit(ctx, userID, usage.FeatureScan); err != nil {
		return nil, err
	}

	imageB64 := StripDataURL(imageData)
	mediaType := DetectMediaType(imageB64)

	text, err := s.invoker.RecognizeText(ctx, correction.BuildOCRPrompt(), imageB64, mediaType)
	if err != nil {
		metrics.ScansTotal.WithLabelValues("failure").Inc()
		return nil, err
	}
	if text == "" {
		metrics.ScansTotal.WithLabelValues("no_text").Inc()
		return &ScanResult{Text: ""}, nil
	}

	now := time.Now().UTC()
	d := &Diary{
		ID:           uuid.New(),
		UserID:       userID,
		Date:         date,
		OriginalText: text,
		InputType:    InputScan,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	if err := s.storeImage(ctx, userID, d.ID, mediaType, imageB64); err != nil {
		// The entry itself is intact; losing the source image is tolerable.
		s.logger.Error("storing scanned image", "diary_id", d.ID, "error", err)
	}

	if err := s.gate.Commit(ctx, userID, usage.FeatureScan); err != nil {
		s.logger.Error("recording scan usage", "user_id", userID, "error", err)
	}

	metrics.ScansTotal.WithLabelValues("success").Inc()
	s.publishAudit(ctx, nats.AuditEvent{
		UserID:       userID,
		EventType:    nats.EventDiaryScanned,
		Severity:     "info",
		ResourceType: "diary",
		ResourceID:   d.ID.String(),
		Details:      map[string]any{"media_type": mediaType, "chars": len(text)},
		Timestamp:    now,
	})

	return &ScanResult{Text: text, Diary: d}, nil
}

// DeleteByUser erases the user's diaries, cards, and images. Part of
// account deletion.
func (s *Service) DeleteByUser(ctx context.Context, userID string) error {
	if err := s.imgs.DeleteByUser(ctx, userID); err != nil {
		return err
	}
	return s.repo.DeleteByUser(ctx, userID)
}

// languagePrefs returns the user's language pair and plan, falling back to
// English diaries explained in Japanese when no profile exists yet. A failed
// profile read is an error, not a fallback: defaulting the plan to free
// there would charge a premium user.
func (s *Service) languagePrefs(ctx context.Context, userID string) (correction.Language, correction.Language, string, error) {
	user, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return "", "", "", fmt.Errorf("loading profile: %w", err)
	}
	if user == nil {
		return correction.LangEnglish, correction.LangJapanese, usage.PlanFree, nil
	}

	target, native := user.TargetLanguage, user.NativeLanguage
	if !target.Valid() {
		target = correction.LangEnglish
	}
	if !native.Valid() {
		native = correction.LangJapanese
	}
	return target, native, user.Plan, nil
}

func (s *Service) storeImage(ctx context.Context, userID string, diaryID uuid.UUID, mediaType, imageB64 string) error {
	data, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil {
		return fmt.Errorf("decoding image: %w", err)
	}
	return s.imgs.Put(ctx, userID, diaryID, mediaType, data)
}

func (s *Service) publishAudit(ctx context.Context, event nats.AuditEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishAudit(ctx, event); err != nil {
		s.logger.Warn("publishing audit event", "event_type", event.EventType, "error", err)
	}
}
