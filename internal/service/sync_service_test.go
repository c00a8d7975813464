package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
)

func entityVersion(entityType, id string, localV, serverV, baseV int64, deleted bool, changed ...string) models.EntityVersion {
	return models.EntityVersion{
		EntityType:    entityType,
		EntityID:      id,
		LocalVersion:  localV,
		ServerVersion: serverV,
		BaseVersion:   baseV,
		Deleted:       deleted,
		ChangedFields: changed,
	}
}

func TestBeginSessionFastForwardOnly(t *testing.T) {
	svc := NewSyncService(repository.NewMemoryStore())

	local := []models.EntityVersion{
		// Exists only on this device.
		entityVersion(models.EntityLocation, "l1", 1, 0, 0, false),
		// Edited locally, untouched remotely.
		entityVersion(models.EntityPlaceVisit, "v1", 3, 1, 1, false, "notes"),
	}
	remote := []models.EntityVersion{
		entityVersion(models.EntityPlaceVisit, "v1", 1, 1, 1, false),
		// Exists only remotely.
		entityVersion(models.EntityTrip, "t9", 1, 1, 0, false),
	}

	diff := svc.BeginSession(local, remote)
	assert.Empty(t, diff.SessionID)
	assert.Empty(t, diff.Conflicts)
	assert.Equal(t, 3, diff.FastForwards)
	assert.Zero(t, diff.AutoMergeable)
}

func TestBeginSessionOpensOnConflict(t *testing.T) {
	svc := NewSyncService(repository.NewMemoryStore())

	local := []models.EntityVersion{
		// Both sides edited disjoint fields since base 1.
		entityVersion(models.EntityPlaceVisit, "v1", 2, 1, 1, false, "label"),
		// Locally edited, remotely deleted.
		entityVersion(models.EntityPlaceVisit, "v2", 2, 1, 1, false, "notes"),
	}
	remote := []models.EntityVersion{
		entityVersion(models.EntityPlaceVisit, "v1", 2, 2, 1, false, "notes"),
		entityVersion(models.EntityPlaceVisit, "v2", 1, 2, 1, true),
	}

	diff := svc.BeginSession(local, remote)
	require.NotEmpty(t, diff.SessionID)
	require.Len(t, diff.Conflicts, 2)
	assert.Equal(t, models.ConflictVersionMismatch, diff.Conflicts[0].Kind)
	assert.Equal(t, models.ConflictDeletion, diff.Conflicts[1].Kind)
	assert.Equal(t, 1, diff.AutoMergeable)
	assert.Zero(t, diff.FastForwards)

	session, err := svc.Session(diff.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, session.PendingCount())
}

func TestSessionUnknownID(t *testing.T) {
	svc := NewSyncService(repository.NewMemoryStore())

	_, err := svc.Session("nope")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFinalizeRequiresAllDecisions(t *testing.T) {
	svc := NewSyncService(repository.NewMemoryStore())

	diff := svc.BeginSession(
		[]models.EntityVersion{entityVersion(models.EntityPlaceVisit, "v1", 2, 1, 1, false, "label")},
		[]models.EntityVersion{entityVersion(models.EntityPlaceVisit, "v1", 2, 2, 1, false, "notes")},
	)
	require.NotEmpty(t, diff.SessionID)

	_, err := svc.Finalize(context.Background(), testUser, diff.SessionID)
	assert.ErrorIs(t, err, models.ErrConflictUnresolved)

	// The session stays open for another attempt.
	_, err = svc.Session(diff.SessionID)
	assert.NoError(t, err)
}

func TestFinalizeAppliesRemoteDeletion(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewSyncService(store)
	ctx := context.Background()

	visit := &models.PlaceVisit{
		ID:        "v2",
		UserID:    testUser,
		StartTime: 100,
		EndTime:   700,
		CenterLat: 52.5,
		CenterLon: 13.4,
	}
	require.NoError(t, store.Visits().Insert(ctx, visit))

	diff := svc.BeginSession(
		[]models.EntityVersion{entityVersion(models.EntityPlaceVisit, "v2", 2, 1, 1, false, "notes")},
		[]models.EntityVersion{entityVersion(models.EntityPlaceVisit, "v2", 1, 2, 1, true)},
	)
	require.NotEmpty(t, diff.SessionID)

	session, err := svc.Session(diff.SessionID)
	require.NoError(t, err)
	require.NoError(t, session.ResolveKeepRemote())

	resolved, err := svc.Finalize(ctx, testUser, diff.SessionID)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, models.ResolutionKeepRemote, resolved[0].Resolution)

	_, err = store.Visits().GetByID(ctx, testUser, "v2")
	assert.ErrorIs(t, err, models.ErrNotFound)

	// The session is gone once applied.
	_, err = svc.Session(diff.SessionID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFinalizeKeepLocalRetainsEntity(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewSyncService(store)
	ctx := context.Background()

	visit := &models.PlaceVisit{ID: "v3", UserID: testUser, StartTime: 100, EndTime: 700}
	require.NoError(t, store.Visits().Insert(ctx, visit))

	diff := svc.BeginSession(
		[]models.EntityVersion{entityVersion(models.EntityPlaceVisit, "v3", 2, 1, 1, false, "label")},
		[]models.EntityVersion{entityVersion(models.EntityPlaceVisit, "v3", 1, 2, 1, true)},
	)
	require.NotEmpty(t, diff.SessionID)

	session, err := svc.Session(diff.SessionID)
	require.NoError(t, err)
	require.NoError(t, session.ResolveKeepLocal())

	_, err = svc.Finalize(ctx, testUser, diff.SessionID)
	require.NoError(t, err)

	_, err = store.Visits().GetByID(ctx, testUser, "v3")
	assert.NoError(t, err)
}

func TestFinalizeToleratesAlreadyDeletedEntity(t *testing.T) {
	svc := NewSyncService(repository.NewMemoryStore())
	ctx := context.Background()

	diff := svc.BeginSession(
		[]models.EntityVersion{entityVersion(models.EntityTrip, "t1", 2, 1, 1, false, "notes")},
		[]models.EntityVersion{entityVersion(models.EntityTrip, "t1", 1, 2, 1, true)},
	)
	require.NotEmpty(t, diff.SessionID)

	session, err := svc.Session(diff.SessionID)
	require.NoError(t, err)
	require.NoError(t, session.ResolveKeepRemote())

	// The trip never existed locally; the deletion converged earlier.
	_, err = svc.Finalize(ctx, testUser, diff.SessionID)
	assert.NoError(t, err)
}
