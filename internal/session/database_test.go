package session_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/go-roster/internal/database/models"
	"github.com/hugh/go-roster/internal/session"
	"github.com/hugh/go-roster/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	userID := uuid.New()
	sess, err := session.New(userID, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, userID, sess.UserID)
	assert.Len(t, sess.ID, 43)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sess.ExpiresAt, 5*time.Second)
	assert.False(t, sess.Expired(time.Now()))
	assert.True(t, sess.Expired(sess.ExpiresAt))
}

func TestDatabaseStore_Lifecycle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := session.NewDatabaseStore(db)
	ctx := testutil.TestContext(t)

	sess, err := session.New(uuid.New(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, sess))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, got.UserID)

	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err = store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	// deleting twice is fine
	assert.NoError(t, store.Delete(ctx, sess.ID))
}

func TestDatabaseStore_UnknownID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := session.NewDatabaseStore(db)

	_, err := store.Get(testutil.TestContext(t), "missing")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestDatabaseStore_ExpiredIsRemoved(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := session.NewDatabaseStore(db)
	ctx := testutil.TestContext(t)

	sess := &session.Session{
		ID:        "expired-session",
		UserID:    uuid.New(),
		CreatedAt: time.Now().Add(-2 * time.Hour),
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, store.Create(ctx, sess))

	_, err := store.Get(ctx, sess.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Session{}).Where("id = ?", sess.ID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDatabaseStore_PurgeExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)
	store := session.NewDatabaseStore(db)
	ctx := testutil.TestContext(t)

	live, err := session.New(uuid.New(), time.Hour)
	require.NoError(t, err)
	require.NoError(t, store.Create(ctx, live))
	require.NoError(t, store.Create(ctx, &session.Session{
		ID:        "old",
		UserID:    uuid.New(),
		CreatedAt: time.Now().Add(-48 * time.Hour),
		ExpiresAt: time.Now().Add(-24 * time.Hour),
	}))

	n, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}
