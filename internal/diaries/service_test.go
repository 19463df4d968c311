package diaries

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writediary/writediary/internal/ai"
	"github.com/writediary/writediary/internal/correction"
	"github.com/writediary/writediary/internal/usage"
	"github.com/writediary/writediary/internal/users"
)

type fakeRepo struct {
	diaries     map[uuid.UUID]*Diary
	saveErr     error
	savedResult *correction.Result
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{diaries: make(map[uuid.UUID]*Diary)}
}

func (r *fakeRepo) Create(_ context.Context, d *Diary) error {
	cp := *d
	r.diaries[d.ID] = &cp
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*Diary, error) {
	d, ok := r.diaries[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (r *fakeRepo) ListByUser(_ context.Context, userID string, from, to string, limit int) ([]*Diary, error) {
	var out []*Diary
	for _, d := range r.diaries {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeRepo) UpdateText(_ context.Context, d *Diary) error {
	cp := *d
	r.diaries[d.ID] = &cp
	return nil
}

func (r *fakeRepo) SaveCorrection(_ context.Context, id uuid.UUID, correctedText string, corrections []correction.Correction) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	d := r.diaries[id]
	d.CorrectedText = &correctedText
	d.Corrections = corrections
	r.savedResult = &correction.Result{CorrectedText: correctedText, Corrections: corrections}
	return nil
}

func (r *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.diaries, id)
	return nil
}

func (r *fakeRepo) DeleteByUser(_ context.Context, userID string) error {
	for id, d := range r.diaries {
		if d.UserID == userID {
			delete(r.diaries, id)
		}
	}
	return nil
}

type fakeInvoker struct {
	result     *correction.Result
	transcript string
	err        error
	calls      int
}

func (f *fakeInvoker) CorrectText(context.Context, string, string) (*correction.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeInvoker) RecognizeText(context.Context, string, string, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.transcript, nil
}

type fakeGate struct {
	admitErr error
	commits  []usage.Feature
}

func (g *fakeGate) Admit(_ context.Context, _ string, f usage.Feature) error {
	return g.admitErr
}

func (g *fakeGate) Commit(_ context.Context, _ string, f usage.Feature) error {
	g.commits = append(g.commits, f)
	return nil
}

type fakeProfiles struct {
	user *users.User
	err  error
}

func (p *fakeProfiles) Get(context.Context, string) (*users.User, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.user, nil
}

type fakeImageStore struct {
	puts    int
	deletes int
}

func (s *fakeImageStore) Put(context.Context, string, uuid.UUID, string, []byte) error {
	s.puts++
	return nil
}

func (s *fakeImageStore) DeleteByDiary(context.Context, uuid.UUID) error {
	s.deletes++
	return nil
}

func (s *fakeImageStore) DeleteByUser(context.Context, string) error { return nil }

type fixture struct {
	svc      *Service
	repo     *fakeRepo
	invoker  *fakeInvoker
	gate     *fakeGate
	imgs     *fakeImageStore
	profiles *fakeProfiles
}

func newFixture(plan string) *fixture {
	repo := newFakeRepo()
	invoker := &fakeInvoker{
		result: &correction.Result{
			CorrectedText: "I went to school.",
			Corrections: []correction.Correction{
				{Type: "grammar", Before: "goed", After: "went", Explanation: "past tense"},
			},
		},
		transcript: "Dear diary, today was good.",
	}
	gate := &fakeGate{}
	imgs := &fakeImageStore{}
	profiles := &fakeProfiles{user: &users.User{
		ID:             "user-1",
		Plan:           plan,
		TargetLanguage: correction.LangEnglish,
		NativeLanguage: correction.LangJapanese,
	}}
	svc := NewService(repo, invoker, gate, profiles, imgs, nil, ServiceConfig{}, slog.Default())
	return &fixture{svc: svc, repo: repo, invoker: invoker, gate: gate, imgs: imgs, profiles: profiles}
}

func (f *fixture) seedDiary(userID string) *Diary {
	d := &Diary{
		ID:           uuid.New(),
		UserID:       userID,
		Date:         "2026-03-01",
		OriginalText: "I goed to school.",
		InputType:    InputManual,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	f.repo.diaries[d.ID] = d
	return d
}

func TestCorrect_HappyPathChargesAfterPersist(t *testing.T) {
	f := newFixture("free")
	d := f.seedDiary("user-1")

	got, err := f.svc.Correct(context.Background(), "user-1", d.ID, correction.ModeIntermediate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "I went to school.", *got.CorrectedText)
	require.Len(t, got.Corrections, 1)

	// Correction was persisted and the ledger charged once.
	assert.NotNil(t, f.repo.savedResult)
	assert.Equal(t, []usage.Feature{usage.FeatureCorrection}, f.gate.commits)
}

func TestCorrect_DeniedNeverCallsModel(t *testing.T) {
	f := newFixture("free")
	d := f.seedDiary("user-1")
	f.gate.admitErr = &usage.QuotaError{Code: usage.CodeCorrectionLimitReached}

	_, err := f.svc.Correct(context.Background(), "user-1", d.ID, correction.ModeIntermediate)

	var qe *usage.QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Zero(t, f.invoker.calls, "denied requests must not reach the model")
	assert.Empty(t, f.gate.commits)
}

func TestCorrect_ModelFailureLeavesNoTrace(t *testing.T) {
	f := newFixture("free")
	d := f.seedDiary("user-1")
	f.invoker.err = ai.ErrModelUnavailable

	_, err := f.svc.Correct(context.Background(), "user-1", d.ID, correction.ModeIntermediate)
	require.ErrorIs(t, err, ai.ErrModelUnavailable)

	stored := f.repo.diaries[d.ID]
	assert.Nil(t, stored.CorrectedText, "nothing may be persisted on failure")
	assert.Empty(t, f.gate.commits, "nothing may be charged on failure")
}

func TestCorrect_PersistFailureDoesNotCharge(t *testing.T) {
	f := newFixture("free")
	d := f.seedDiary("user-1")
	f.repo.saveErr = errors.New("db down")

	_, err := f.svc.Correct(context.Background(), "user-1", d.ID, correction.ModeIntermediate)
	require.Error(t, err)
	assert.Empty(t, f.gate.commits)
}

func TestCorrect_PremiumNotCharged(t *testing.T) {
	f := newFixture("premium")
	d := f.seedDiary("user-1")

	got, err := f.svc.Correct(context.Background(), "user-1", d.ID, correction.ModeIntermediate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Empty(t, f.gate.commits, "premium corrections are unmetered")
}

func TestCorrect_ProfileReadFailureAborts(t *testing.T) {
	f := newFixture("premium")
	d := f.seedDiary("user-1")
	f.profiles.err = errors.New("profile store down")

	_, err := f.svc.Correct(context.Background(), "user-1", d.ID, correction.ModeIntermediate)
	require.Error(t, err)

	// Without the plan there is no safe way to decide metering, so nothing
	// may run or be charged.
	assert.Zero(t, f.invoker.calls)
	assert.Empty(t, f.gate.commits)
	assert.Nil(t, f.repo.savedResult)
}

func TestCorrect_ForeignDiaryLooksMissing(t *testing.T) {
	f := newFixture("free")
	d := f.seedDiary("someone-else")

	got, err := f.svc.Correct(context.Background(), "user-1", d.ID, correction.ModeIntermediate)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Zero(t, f.invoker.calls)
}

func TestCorrect_FallbackEchoesOriginalWithoutPersisting(t *testing.T) {
	f := newFixture("free")
	f.svc.cfg.FallbackOriginal = true
	d := f.seedDiary("user-1")
	f.invoker.err = ai.ErrModelUnavailable

	got, err := f.svc.Correct(context.Background(), "user-1", d.ID, correction.ModeIntermediate)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, d.OriginalText, *got.CorrectedText)
	assert.Empty(t, got.Corrections)

	stored := f.repo.diaries[d.ID]
	assert.Nil(t, stored.CorrectedText, "fallback must not persist")
	assert.Empty(t, f.gate.commits, "fallback must not charge")
}

func TestScan_CreatesEntryAndCharges(t *testing.T) {
	f := newFixture("free")

	got, err := f.svc.Scan(context.Background(), "user-1", "2026-03-01", "aGVsbG8=")
	require.NoError(t, err)
	require.NotNil(t, got.Diary)
	assert.Equal(t, "Dear diary, today was good.", got.Text)
	assert.Equal(t, got.Text, got.Diary.OriginalText)
	assert.Equal(t, InputScan, got.Diary.InputType)

	assert.Contains(t, f.repo.diaries, got.Diary.ID)
	assert.Equal(t, 1, f.imgs.puts)
	assert.Equal(t, []usage.Feature{usage.FeatureScan}, f.gate.commits)
}

func TestScan_EmptyTranscriptIsSuccessWithNothingCreated(t *testing.T) {
	f := newFixture("free")
	f.invoker.transcript = ""

	got, err := f.svc.Scan(context.Background(), "user-1", "2026-03-01", "aGVsbG8=")
	require.NoError(t, err, "an illegible page is a valid result, not a failure")
	assert.Empty(t, got.Text)
	assert.Nil(t, got.Diary)
	assert.Empty(t, f.repo.diaries)
	assert.Zero(t, f.imgs.puts)
	assert.Empty(t, f.gate.commits)
}

func TestScan_DeniedNeverCallsModel(t *testing.T) {
	f := newFixture("free")
	f.gate.admitErr = &usage.QuotaError{Code: usage.CodeScanLimitReached}

	_, err := f.svc.Scan(context.Background(), "user-1", "2026-03-01", "aGVsbG8=")

	var qe *usage.QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Zero(t, f.invoker.calls)
}

func TestUpdate_ChangedTextClearsCorrections(t *testing.T) {
	f := newFixture("free")
	d := f.seedDiary("user-1")
	corrected := "I went to school."
	d.CorrectedText = &corrected
	d.Corrections = []correction.Correction{{Type: "grammar"}}

	got, err := f.svc.Update(context.Background(), "user-1", d.ID, d.Date, "A whole new entry.")
	require.NoError(t, err)
	assert.Nil(t, got.CorrectedText)
	assert.Nil(t, got.Corrections)
}

func TestUpdate_WhitespaceOnlyEditKeepsCorrections(t *testing.T) {
	f := newFixture("free")
	d := f.seedDiary("user-1")
	corrected := "I went to school."
	d.CorrectedText = &corrected
	d.Corrections = []correction.Correction{{Type: "grammar"}}

	got, err := f.svc.Update(context.Background(), "user-1", d.ID, d.Date, "  "+d.OriginalText+"\n")
	require.NoError(t, err)
	assert.NotNil(t, got.CorrectedText)
	assert.Len(t, got.Corrections, 1)
}

type fakeSweeper struct{ calls int }

func (s *fakeSweeper) DeleteByDiary(context.Context, uuid.UUID) error {
	s.calls++
	return nil
}

func TestDelete_CascadesCardsAndImages(t *testing.T) {
	f := newFixture("free")
	sweeper := &fakeSweeper{}
	f.svc.SetCardSweeper(sweeper)
	d := f.seedDiary("user-1")

	deleted, err := f.svc.Delete(context.Background(), "user-1", d.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, 1, sweeper.calls)
	assert.Equal(t, 1, f.imgs.deletes)
	assert.NotContains(t, f.repo.diaries, d.ID)
}

func TestDelete_ForeignDiaryUntouched(t *testing.T) {
	f := newFixture("free")
	d := f.seedDiary("someone-else")

	deleted, err := f.svc.Delete(context.Background(), "user-1", d.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Contains(t, f.repo.diaries, d.ID)
}
