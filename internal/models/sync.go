package models

// Entity types exchanged during sync.
const (
	EntityLocation   = "LOCATION"
	EntityPlaceVisit = "PLACE_VISIT"
	EntityTrip       = "TRIP"
	EntityPhoto      = "PHOTO"
	EntitySettings   = "SETTINGS"
)

// Conflict kinds.
const (
	ConflictVersionMismatch        = "VERSION_MISMATCH"
	ConflictConcurrentModification = "CONCURRENT_MODIFICATION"
	ConflictDeletion               = "DELETION_CONFLICT"
)

// Resolution outcomes.
const (
	ResolutionKeepLocal  = "KEEP_LOCAL"
	ResolutionKeepRemote = "KEEP_REMOTE"
	ResolutionMerged     = "MERGED"
	ResolutionSkipped    = "SKIPPED"
)

// SyncConflict is a transient record of one diverged entity. It lives only
// for the duration of a resolution session and is never persisted.
type SyncConflict struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
	Kind       string `json:"kind"`

	// Stringified field maps of both versions, shown to the user and fed to
	// the field-level merge.
	LocalFields  map[string]string `json:"localFields"`
	RemoteFields map[string]string `json:"remoteFields"`

	// Field names each side changed since the common base.
	LocalChanged  []string `json:"localChanged"`
	RemoteChanged []string `json:"remoteChanged"`

	LocalDeleted  bool `json:"localDeleted"`
	RemoteDeleted bool `json:"remoteDeleted"`

	// Resolution is empty until a decision is recorded.
	Resolution   string            `json:"resolution,omitempty"`
	MergedFields map[string]string `json:"mergedFields,omitempty"`
}

// Resolved reports whether a decision has been recorded.
func (c *SyncConflict) Resolved() bool {
	return c.Resolution != ""
}

// EntityVersion is the version metadata carried by every syncable entity,
// as seen by one side of the diff.
type EntityVersion struct {
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`

	// LocalVersion increases monotonically on every local edit.
	LocalVersion int64 `json:"localVersion"`
	// ServerVersion is the version assigned by the server at last sync;
	// zero means the entity has never been synced.
	ServerVersion int64 `json:"serverVersion"`
	// BaseVersion is the server version this side last synced against.
	BaseVersion int64 `json:"baseVersion"`

	ModifiedAt int64 `json:"modifiedAt"` // Unix seconds
	Deleted    bool  `json:"deleted"`

	Fields        map[string]string `json:"fields"`
	ChangedFields []string          `json:"changedFields"`
}

// Modified reports whether this side has edits on top of its sync base.
func (v EntityVersion) Modified() bool {
	return v.LocalVersion > v.BaseVersion || len(v.ChangedFields) > 0
}
