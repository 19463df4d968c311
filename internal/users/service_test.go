package users

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/writediary/writediary/internal/correction"
)

type fakeUserRepo struct {
	users map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*User)}
}

func (r *fakeUserRepo) Ensure(_ context.Context, u *User) error {
	if _, ok := r.users[u.ID]; ok {
		return nil
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, u *User) error {
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	delete(r.users, id)
	return nil
}

type recordingEraser struct {
	calls int
	err   error
}

func (e *recordingEraser) DeleteByUser(context.Context, string) error {
	e.calls++
	return e.err
}

func TestProvision_CreatesOnFirstSight(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, slog.Default())

	u, err := svc.Provision(context.Background(), "user-1", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "user-1", u.ID)
	assert.Equal(t, "a@example.com", u.Email)
	assert.Equal(t, "free", u.Plan)
	assert.Equal(t, correction.LangEnglish, u.TargetLanguage)
	assert.Equal(t, correction.LangJapanese, u.NativeLanguage,
		"explanations default to the learner's assumed native language")
}

func TestProvision_Idempotent(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, slog.Default())

	first, err := svc.Provision(context.Background(), "user-1", "a@example.com")
	require.NoError(t, err)

	// A profile edit between requests must survive re-provisioning.
	first.DisplayName = "Aki"
	first.TargetLanguage = correction.LangSpanish
	require.NoError(t, repo.UpdateProfile(context.Background(), first))

	again, err := svc.Provision(context.Background(), "user-1", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Aki", again.DisplayName)
	assert.Equal(t, correction.LangSpanish, again.TargetLanguage)
}

func TestPlanOf_DefaultsToFree(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, slog.Default())

	plan, err := svc.PlanOf(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, "free", plan)

	repo.users["user-1"] = &User{ID: "user-1", Plan: "premium"}
	plan, err = svc.PlanOf(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "premium", plan)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, slog.Default())
	_, err := svc.Provision(context.Background(), "user-1", "a@example.com")
	require.NoError(t, err)

	u, err := svc.UpdateProfile(context.Background(), "user-1", "Aki", correction.LangEnglish, correction.LangJapanese)
	require.NoError(t, err)
	assert.Equal(t, "Aki", u.DisplayName)
	assert.Equal(t, correction.LangJapanese, u.NativeLanguage)

	missing, err := svc.UpdateProfile(context.Background(), "ghost", "x", correction.LangEnglish, correction.LangEnglish)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestDeleteAccount_FansOutThenDeletesProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, slog.Default())
	_, err := svc.Provision(context.Background(), "user-1", "a@example.com")
	require.NoError(t, err)

	e1 := &recordingEraser{}
	e2 := &recordingEraser{}
	svc.RegisterEraser(e1)
	svc.RegisterEraser(e2)

	require.NoError(t, svc.DeleteAccount(context.Background(), "user-1"))
	assert.Equal(t, 1, e1.calls)
	assert.Equal(t, 1, e2.calls)
	assert.Empty(t, repo.users)
}

func TestDeleteAccount_EraserFailureKeepsProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, slog.Default())
	_, err := svc.Provision(context.Background(), "user-1", "a@example.com")
	require.NoError(t, err)

	svc.RegisterEraser(&recordingEraser{err: errors.New("cascade failed")})

	err = svc.DeleteAccount(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, repo.users, "user-1", "profile row must outlive a failed cascade")
}

func TestUserTimestamps(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, slog.Default())

	before := time.Now().UTC()
	u, err := svc.Provision(context.Background(), "user-1", "a@example.com")
	require.NoError(t, err)
	assert.False(t, u.CreatedAt.Before(before.Add(-time.Second)))
	assert.False(t, u.UpdatedAt.Before(u.CreatedAt))
}
