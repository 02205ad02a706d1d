//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/innofeed/innofeed/internal/model"
	"github.com/innofeed/innofeed/internal/testutil"
)

func newTestRepo(t *testing.T) (context.Context, *Repository) {
	t.Helper()

	databaseURL := testutil.RequireEnv(t, "DATABASE_URL")
	ctx := context.Background()

	_, err := Migrate(databaseURL)
	require.NoError(t, err)

	repo, err := New(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	require.NoError(t, err)
	t.Cleanup(func() { _ = unlock() })

	require.NoError(t, testutil.TruncateAll(ctx, repo.Pool()))
	return ctx, repo
}

func ptr[T any](v T) *T { return &v }

func TestIntegrationMigrate_Idempotent(t *testing.T) {
	databaseURL := testutil.RequireEnv(t, "DATABASE_URL")

	first, err := Migrate(databaseURL)
	require.NoError(t, err)
	second, err := Migrate(databaseURL)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestIntegrationUsers_CreateAndGet(t *testing.T) {
	ctx, repo := newTestRepo(t)

	user := &model.User{Email: "ann@example.com", PasswordHash: "hash", Name: ptr("Ann")}
	require.NoError(t, repo.CreateUser(ctx, user))
	assert.NotZero(t, user.ID)

	got, err := repo.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, "hash", got.PasswordHash)
	require.NotNil(t, got.Name)
	assert.Equal(t, "Ann", *got.Name)

	err = repo.CreateUser(ctx, &model.User{Email: "ann@example.com", PasswordHash: "other"})
	assert.ErrorIs(t, err, ErrEmailExists)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestIntegrationDomains_EnsureAndList(t *testing.T) {
	ctx, repo := newTestRepo(t)

	ai, err := repo.EnsureDomain(ctx, "AI")
	require.NoError(t, err)
	robotics, err := repo.EnsureDomain(ctx, "Robotics")
	require.NoError(t, err)
	again, err := repo.EnsureDomain(ctx, "AI")
	require.NoError(t, err)
	assert.Equal(t, ai, again)

	domains, err := repo.ListDomains(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Domain{{ID: ai, Name: "AI"}, {ID: robotics, Name: "Robotics"}}, domains)
}

func TestIntegrationItems_FeedOrderAndDedup(t *testing.T) {
	ctx, repo := newTestRepo(t)

	ai, err := repo.EnsureDomain(ctx, "AI")
	require.NoError(t, err)
	other, err := repo.EnsureDomain(ctx, "Genetics")
	require.NoError(t, err)

	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	for _, it := range []*model.Item{
		{Type: model.ItemTypePaper, Title: "Old", Date: &older, DomainID: &ai, DOI: ptr("10.1/x")},
		{Type: model.ItemTypePatent, Title: "New", Date: &newer, DomainID: &ai, Assignee: ptr("N/A"), CitedByCount: ptr(3)},
		{Type: model.ItemTypePaper, Title: "Elsewhere", Date: &newer, DomainID: &other},
	} {
		inserted, err := repo.InsertItem(ctx, it)
		require.NoError(t, err)
		assert.True(t, inserted)
	}

	inserted, err := repo.InsertItem(ctx, &model.Item{Type: model.ItemTypePaper, Title: "Old", DomainID: &ai})
	require.NoError(t, err)
	assert.False(t, inserted, "duplicate title is skipped")

	exists, err := repo.ItemExistsByTitle(ctx, "Old")
	require.NoError(t, err)
	assert.True(t, exists)

	items, err := repo.ListItemsByDomains(ctx, []int64{ai})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "New", items[0].Title)
	assert.Equal(t, model.ItemTypePatent, items[0].Type)
	require.NotNil(t, items[0].CitedByCount)
	assert.Equal(t, 3, *items[0].CitedByCount)
	assert.Equal(t, "Old", items[1].Title)
	require.NotNil(t, items[1].DOI)
	assert.Equal(t, "10.1/x", *items[1].DOI)

	empty, err := repo.ListItemsByDomains(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestIntegrationPreferences_Replace(t *testing.T) {
	ctx, repo := newTestRepo(t)

	user := &model.User{Email: "bob@example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(ctx, user))
	a, err := repo.EnsureDomain(ctx, "AI")
	require.NoError(t, err)
	b, err := repo.EnsureDomain(ctx, "Robotics")
	require.NoError(t, err)

	require.NoError(t, repo.SetPreferences(ctx, user.ID, []int64{b, a}))
	ids, err := repo.GetPreferenceIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, b}, ids)

	require.NoError(t, repo.SetPreferences(ctx, user.ID, []int64{b}))
	ids, err = repo.GetPreferenceIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{b}, ids)

	require.NoError(t, repo.SetPreferences(ctx, user.ID, nil))
	ids, err = repo.GetPreferenceIDs(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}
