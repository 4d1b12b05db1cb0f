package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

func TestSessionRepo_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	c := createTestCompany(t, db, "Acme Bakery", "owner@acmebakery.test")

	s := &model.Session{
		Token:       "tok-pending",
		CompanyID:   c.ID,
		OTPVerified: false,
		ExpiresAt:   time.Now().UTC().Add(24 * time.Hour),
	}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.Get(ctx, "tok-pending")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, c.ID, got.CompanyID)
	assert.False(t, got.OTPVerified)
	assert.WithinDuration(t, s.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestSessionRepo_GetMissingReturnsNil(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)

	got, err := repo.Get(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionRepo_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	c := createTestCompany(t, db, "Acme Bakery", "owner@acmebakery.test")
	require.NoError(t, repo.Create(ctx, &model.Session{
		Token: "tok", CompanyID: c.ID, ExpiresAt: time.Now().UTC().Add(time.Hour),
	}))

	require.NoError(t, repo.Delete(ctx, "tok"))

	got, err := repo.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting an absent token is a no-op rather than an error.
	assert.NoError(t, repo.Delete(ctx, "tok"))
}

func TestSessionRepo_DeleteByCompany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewSessionRepo(db)
	ctx := context.Background()

	a := createTestCompany(t, db, "Acme Bakery", "owner@acmebakery.test")
	b := createTestCompany(t, db, "Beta Books", "owner@betabooks.test")

	expires := time.Now().UTC().Add(time.Hour)
	require.NoError(t, repo.Create(ctx, &model.Session{Token: "a1", CompanyID: a.ID, ExpiresAt: expires}))
	require.NoError(t, repo.Create(ctx, &model.Session{Token: "a2", CompanyID: a.ID, OTPVerified: true, ExpiresAt: expires}))
	require.NoError(t, repo.Create(ctx, &model.Session{Token: "b1", CompanyID: b.ID, ExpiresAt: expires}))

	require.NoError(t, repo.DeleteByCompany(ctx, a.ID))

	for _, token := range []string{"a1", "a2"} {
		got, err := repo.Get(ctx, token)
		require.NoError(t, err)
		assert.Nil(t, got)
	}

	got, err := repo.Get(ctx, "b1")
	require.NoError(t, err)
	assert.NotNil(t, got)
}
