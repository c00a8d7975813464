// Package syncer reconciles entities edited on two or more devices while
// disconnected. Detection and merge are pure functions; the session wraps
// them with the user-facing decision flow.
package syncer

import "github.com/tomasvik/trails-backend-go/internal/models"

// Detect compares the local and remote versions of one entity and returns a
// conflict, or nil when the versions fast-forward cleanly.
//
// Classification:
//   - nil: only one side changed since the common base. The caller applies
//     the changed side directly; no decision is needed.
//   - DELETION_CONFLICT: one side deleted, the other modified. Merge is not
//     offered; the user keeps the modification or honors the deletion.
//   - CONCURRENT_MODIFICATION: both sides modified and the entity has never
//     been synced (no common ancestor version).
//   - VERSION_MISMATCH: both sides diverged from the same synced base.
func Detect(local, remote models.EntityVersion) *models.SyncConflict {
	localModified := local.Modified()
	remoteModified := remote.ServerVersion > local.BaseVersion || remote.Modified()

	if !localModified && !remoteModified {
		return nil
	}
	if local.Deleted && remote.Deleted {
		// Both sides agree the entity is gone.
		return nil
	}
	if localModified != remoteModified {
		// One-sided change: fast-forward, never a conflict.
		return nil
	}

	conflict := &models.SyncConflict{
		EntityType:    local.EntityType,
		EntityID:      local.EntityID,
		LocalFields:   local.Fields,
		RemoteFields:  remote.Fields,
		LocalChanged:  local.ChangedFields,
		RemoteChanged: remote.ChangedFields,
		LocalDeleted:  local.Deleted,
		RemoteDeleted: remote.Deleted,
	}

	switch {
	case local.Deleted != remote.Deleted:
		conflict.Kind = models.ConflictDeletion
	case local.BaseVersion == 0:
		conflict.Kind = models.ConflictConcurrentModification
	default:
		conflict.Kind = models.ConflictVersionMismatch
	}

	return conflict
}

// Merge unions the two field maps at field granularity. Fields changed on
// only one side take that side's value; when both sides changed the same
// field, remote wins (last-writer-wins at field granularity). This is the
// one place silent data loss can occur, so the policy is deliberate and
// pinned by tests.
func Merge(localFields, remoteFields map[string]string, localChanged, remoteChanged []string) map[string]string {
	merged := make(map[string]string, len(localFields)+len(remoteChanged))
	for k, v := range localFields {
		merged[k] = v
	}
	for _, f := range remoteChanged {
		if v, ok := remoteFields[f]; ok {
			merged[f] = v
		}
	}
	return merged
}

// MergeEligible reports whether a conflict qualifies for automatic merging:
// both field sets survive untouched only when the changed-field sets are
// disjoint, and deletion conflicts never merge.
func MergeEligible(c *models.SyncConflict) bool {
	if c.Kind == models.ConflictDeletion {
		return false
	}
	remoteSet := make(map[string]bool, len(c.RemoteChanged))
	for _, f := range c.RemoteChanged {
		remoteSet[f] = true
	}
	for _, f := range c.LocalChanged {
		if remoteSet[f] {
			return false
		}
	}
	return true
}
