package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
	"github.com/tomasvik/trails-backend-go/internal/syncer"
)

// SyncService diffs the entity versions of two devices and drives the
// interactive conflict-resolution flow. Sessions live in memory; an
// abandoned session simply means the next sync re-detects the same
// conflicts.
type SyncService struct {
	store repository.Store

	mu       sync.Mutex
	sessions map[string]*syncer.Session
}

// NewSyncService creates a new sync service.
func NewSyncService(store repository.Store) *SyncService {
	return &SyncService{
		store:    store,
		sessions: make(map[string]*syncer.Session),
	}
}

// SyncDiff summarizes one sync comparison.
type SyncDiff struct {
	SessionID     string                `json:"sessionId,omitempty"`
	Conflicts     []models.SyncConflict `json:"conflicts"`
	FastForwards  int                   `json:"fastForwards"`
	AutoMergeable int                   `json:"autoMergeable"`
}

// BeginSession pairs local and remote entity versions, detects conflicts and
// opens a resolution session over them. Pairs that fast-forward cleanly are
// counted but need no decision; entities present on only one side always
// fast-forward.
func (s *SyncService) BeginSession(local, remote []models.EntityVersion) *SyncDiff {
	remoteByKey := make(map[string]models.EntityVersion, len(remote))
	for _, rv := range remote {
		remoteByKey[rv.EntityType+"/"+rv.EntityID] = rv
	}

	diff := &SyncDiff{}
	var conflicts []models.SyncConflict
	matched := 0
	for _, lv := range local {
		rv, ok := remoteByKey[lv.EntityType+"/"+lv.EntityID]
		if !ok {
			diff.FastForwards++
			continue
		}
		matched++

		c := syncer.Detect(lv, rv)
		if c == nil {
			diff.FastForwards++
			continue
		}
		if syncer.MergeEligible(c) {
			diff.AutoMergeable++
		}
		conflicts = append(conflicts, *c)
	}
	diff.FastForwards += len(remote) - matched
	diff.Conflicts = conflicts

	if len(conflicts) == 0 {
		return diff
	}

	diff.SessionID = uuid.NewString()
	s.mu.Lock()
	s.sessions[diff.SessionID] = syncer.NewSession(conflicts)
	s.mu.Unlock()

	log.Printf("[Sync] Session %s opened with %d conflicts", diff.SessionID, len(conflicts))
	return diff
}

// Session returns the open session with the given id.
func (s *SyncService) Session(id string) (*syncer.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: sync session %s", models.ErrNotFound, id)
	}
	return session, nil
}

// Finalize applies a fully resolved session and closes it. Honored remote
// deletions are soft-deleted locally in one transaction. Fails with
// ErrConflictUnresolved (wrapped) while any conflict is pending, leaving
// the session open.
func (s *SyncService) Finalize(ctx context.Context, userID, sessionID string) ([]models.SyncConflict, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}

	resolved, err := session.Finalize()
	if err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		for i := range resolved {
			c := &resolved[i]
			if c.Resolution != models.ResolutionKeepRemote || !c.RemoteDeleted {
				continue
			}
			if err := softDeleteEntity(ctx, tx, userID, c.EntityType, c.EntityID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	log.Printf("[Sync] Session %s finalized with %d decisions", sessionID, len(resolved))
	return resolved, nil
}

// softDeleteEntity honors a remote deletion locally. An already-absent
// entity is fine; the deletion converged earlier.
func softDeleteEntity(ctx context.Context, tx repository.Store, userID, entityType, entityID string) error {
	var err error
	switch entityType {
	case models.EntityLocation:
		err = tx.Samples().SoftDelete(ctx, userID, entityID)
	case models.EntityPlaceVisit:
		err = tx.Visits().SoftDelete(ctx, userID, entityID)
	case models.EntityTrip:
		err = tx.Trips().SoftDelete(ctx, userID, entityID)
	default:
		// Photos and settings are synced by another service.
		log.Printf("[Sync] No local storage for %s %s, skipping deletion", entityType, entityID)
		return nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", entityType, entityID, err)
	}
	return nil
}
