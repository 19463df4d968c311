package usage

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu      sync.Mutex
	records map[string]*Record
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[string]*Record)}
}

func (r *fakeRepo) key(userID string, f Feature, day string) string {
	return userID + "|" + string(f) + "|" + day
}

func (r *fakeRepo) Peek(_ context.Context, userID string, f Feature, day string) (int, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[r.key(userID, f, day)]
	if !ok {
		return 0, 0, nil
	}
	return rec.Count, rec.BonusCount, nil
}

func (r *fakeRepo) IncrementUsage(_ context.Context, userID string, f Feature, day string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(userID, f, day)
	if r.records[k] == nil {
		r.records[k] = &Record{UserID: userID, Feature: f, Day: day}
	}
	r.records[k].Count++
	r.records[k].ExpiresAt = expiresAt
	return nil
}

func (r *fakeRepo) IncrementBonus(_ context.Context, userID string, f Feature, day string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := r.key(userID, f, day)
	if r.records[k] == nil {
		r.records[k] = &Record{UserID: userID, Feature: f, Day: day}
	}
	r.records[k].BonusCount++
	r.records[k].ExpiresAt = expiresAt
	return nil
}

func (r *fakeRepo) DeleteByUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, rec := range r.records {
		if rec.UserID == userID {
			delete(r.records, k)
		}
	}
	return nil
}

func (r *fakeRepo) PurgeExpired(context.Context) (int64, error) { return 0, nil }

type fakePlans struct {
	plan string
}

func (p fakePlans) PlanOf(context.Context, string) (string, error) {
	return p.plan, nil
}

func newTestService(plan string) (*Service, *fakeRepo) {
	repo := newFakeRepo()
	svc := NewService(repo, fakePlans{plan: plan}, slog.Default())
	return svc, repo
}

func TestService_AdmitAndCommit(t *testing.T) {
	svc, _ := newTestService(PlanFree)
	ctx := context.Background()

	// Free correction limit is 3: three rounds pass, the fourth is denied.
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Admit(ctx, "user-1", FeatureCorrection), "round %d", i+1)
		require.NoError(t, svc.Commit(ctx, "user-1", FeatureCorrection))
	}

	err := svc.Admit(ctx, "user-1", FeatureCorrection)
	require.Error(t, err)

	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, CodeCorrectionLimitReached, qe.Code)
	assert.Equal(t, 3, qe.Count)
	assert.Equal(t, 3, qe.Limit)
	assert.True(t, qe.CanWatchAd)
}

func TestService_AdmitWithoutCommitDoesNotCharge(t *testing.T) {
	svc, repo := newTestService(PlanFree)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, svc.Admit(ctx, "user-1", FeatureScan))
	}
	assert.Empty(t, repo.records, "admission alone must not write the ledger")
}

func TestService_ScanDenialCode(t *testing.T) {
	svc, _ := newTestService(PlanFree)
	ctx := context.Background()

	require.NoError(t, svc.Admit(ctx, "user-1", FeatureScan))
	require.NoError(t, svc.Commit(ctx, "user-1", FeatureScan))

	err := svc.Admit(ctx, "user-1", FeatureScan)
	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, CodeScanLimitReached, qe.Code)
}

func TestService_GrantBonusRaisesLimit(t *testing.T) {
	svc, _ := newTestService(PlanFree)
	ctx := context.Background()

	// Exhaust the base scan limit.
	require.NoError(t, svc.Commit(ctx, "user-1", FeatureScan))
	require.Error(t, svc.Admit(ctx, "user-1", FeatureScan))

	grant, err := svc.GrantBonus(ctx, "user-1", FeatureScan)
	require.NoError(t, err)
	assert.Equal(t, 1, grant.BonusCount)
	assert.Equal(t, 2, grant.MaxBonus)
	assert.Equal(t, 1, grant.RemainingBonus)

	// The bonus unit admits one more scan.
	require.NoError(t, svc.Admit(ctx, "user-1", FeatureScan))
}

func TestService_GrantBonusAtCap(t *testing.T) {
	svc, _ := newTestService(PlanFree)
	ctx := context.Background()

	_, err := svc.GrantBonus(ctx, "user-1", FeatureScan)
	require.NoError(t, err)
	_, err = svc.GrantBonus(ctx, "user-1", FeatureScan)
	require.NoError(t, err)

	_, err = svc.GrantBonus(ctx, "user-1", FeatureScan)
	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, CodeMaxBonusReached, qe.Code)
}

func TestService_GrantBonusPremiumDenied(t *testing.T) {
	svc, _ := newTestService(PlanPremium)

	_, err := svc.GrantBonus(context.Background(), "user-1", FeatureCorrection)
	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Equal(t, CodeMaxBonusReached, qe.Code)
}

func TestService_PremiumNeverDenied(t *testing.T) {
	svc, _ := newTestService(PlanPremium)
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		require.NoError(t, svc.Commit(ctx, "user-1", FeatureCorrection))
	}
	require.NoError(t, svc.Admit(ctx, "user-1", FeatureCorrection))
}

func TestService_SnapshotReflectsLedger(t *testing.T) {
	svc, _ := newTestService(PlanFree)
	ctx := context.Background()

	require.NoError(t, svc.Commit(ctx, "user-1", FeatureCorrection))
	require.NoError(t, svc.Commit(ctx, "user-1", FeatureCorrection))
	_, err := svc.GrantBonus(ctx, "user-1", FeatureCorrection)
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, "user-1", FeatureCorrection)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{Count: 2, Limit: 3, BonusCount: 1, MaxBonus: 2}, snap)
}

func TestService_DayRollsOverAtUTCMidnight(t *testing.T) {
	svc, _ := newTestService(PlanFree)
	ctx := context.Background()

	day1 := time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return day1 }

	require.NoError(t, svc.Commit(ctx, "user-1", FeatureScan))
	require.Error(t, svc.Admit(ctx, "user-1", FeatureScan))

	// Two hours later it is a new UTC day with a fresh counter.
	svc.now = func() time.Time { return day1.Add(2 * time.Hour) }
	require.NoError(t, svc.Admit(ctx, "user-1", FeatureScan))
}

func TestService_ConcurrentCommitsAllLand(t *testing.T) {
	svc, repo := newTestService(PlanFree)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = svc.Commit(ctx, "user-1", FeatureCorrection)
		}()
	}
	wg.Wait()

	count, _, err := repo.Peek(ctx, "user-1", FeatureCorrection, svc.today())
	require.NoError(t, err)
	assert.Equal(t, 20, count, "increments must never be lost")
}
