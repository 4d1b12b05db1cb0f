package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
	"github.com/ledgerdesk/ledgerdesk/internal/domain/port/driven"
)

func TestChallengeRepo_CreateAndLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepo(db)
	ctx := context.Background()

	c := createTestCompany(t, db, "Acme Bakery", "owner@acmebakery.test")

	ch := &model.Challenge{
		CompanyID: c.ID,
		CodeHash:  "$2a$10$codehash",
		ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}
	require.NoError(t, repo.Create(ctx, ch))
	assert.NotZero(t, ch.ID)

	got, err := repo.LatestUnverified(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, ch.ID, got.ID)
	assert.Equal(t, "$2a$10$codehash", got.CodeHash)
	assert.False(t, got.Verified)
	assert.WithinDuration(t, ch.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestChallengeRepo_LatestUnverifiedPicksNewest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepo(db)
	ctx := context.Background()

	c := createTestCompany(t, db, "Acme Bakery", "owner@acmebakery.test")

	now := time.Now().UTC()
	first := &model.Challenge{CompanyID: c.ID, CodeHash: "hash-1", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now.Add(-2 * time.Minute)}
	second := &model.Challenge{CompanyID: c.ID, CodeHash: "hash-2", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now.Add(-time.Minute)}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.LatestUnverified(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
}

func TestChallengeRepo_SameTimestampBreaksTieOnID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepo(db)
	ctx := context.Background()

	c := createTestCompany(t, db, "Acme Bakery", "owner@acmebakery.test")

	now := time.Now().UTC()
	first := &model.Challenge{CompanyID: c.ID, CodeHash: "hash-1", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now}
	second := &model.Challenge{CompanyID: c.ID, CodeHash: "hash-2", ExpiresAt: now.Add(10 * time.Minute), CreatedAt: now}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	got, err := repo.LatestUnverified(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, second.ID, got.ID)
}

func TestChallengeRepo_MarkVerifiedRemovesFromLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepo(db)
	ctx := context.Background()

	c := createTestCompany(t, db, "Acme Bakery", "owner@acmebakery.test")

	ch := &model.Challenge{CompanyID: c.ID, CodeHash: "hash", ExpiresAt: time.Now().UTC().Add(10 * time.Minute)}
	require.NoError(t, repo.Create(ctx, ch))
	require.NoError(t, repo.MarkVerified(ctx, ch.ID))

	got, err := repo.LatestUnverified(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "verified challenge must not be matchable again")
}

func TestChallengeRepo_MarkVerifiedMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepo(db)

	err := repo.MarkVerified(context.Background(), 42)
	assert.ErrorIs(t, err, driven.ErrNotFound)
}

func TestChallengeRepo_ScopedToCompany(t *testing.T) {
	db := setupTestDB(t)
	repo := NewChallengeRepo(db)
	ctx := context.Background()

	a := createTestCompany(t, db, "Acme Bakery", "owner@acmebakery.test")
	b := createTestCompany(t, db, "Beta Books", "owner@betabooks.test")

	require.NoError(t, repo.Create(ctx, &model.Challenge{
		CompanyID: a.ID, CodeHash: "hash-a", ExpiresAt: time.Now().UTC().Add(10 * time.Minute),
	}))

	got, err := repo.LatestUnverified(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
