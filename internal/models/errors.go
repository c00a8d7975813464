package models

import "errors"

// Domain errors shared across services and repositories.
var (
	// ErrInvalidCoordinate is returned for NaN or out-of-range latitude/longitude.
	ErrInvalidCoordinate = errors.New("invalid coordinate")

	// ErrStorage wraps persistent-store I/O failures.
	ErrStorage = errors.New("storage error")

	// ErrGeocodingProvider wraps remote reverse-geocoding failures. Always
	// non-fatal: callers fall back to an unresolved address.
	ErrGeocodingProvider = errors.New("geocoding provider error")

	// ErrConflictUnresolved means a sync conflict exists with no recorded
	// decision; it blocks finalizing a sync session.
	ErrConflictUnresolved = errors.New("sync conflict unresolved")

	// ErrInsufficientData means a sample run is too short to classify.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrNotFound is returned when a requested entity does not exist or is
	// soft-deleted.
	ErrNotFound = errors.New("not found")

	// ErrMergeNotOffered is returned when merge is requested for a deletion
	// conflict, which only offers keep-local or keep-remote.
	ErrMergeNotOffered = errors.New("merge not offered for this conflict")
)
