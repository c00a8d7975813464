package syncer

import (
	"fmt"
	"sync"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

// Session walks the user through the ordered list of pending conflicts of
// one sync run. Resolution within a session is serialized: one mutex guards
// navigation and decisions, so two conflicting edits to the same entity can
// never be resolved concurrently.
type Session struct {
	mu        sync.Mutex
	conflicts []models.SyncConflict
	index     int
}

// NewSession creates a session over the given conflicts, in order.
func NewSession(conflicts []models.SyncConflict) *Session {
	return &Session{conflicts: conflicts}
}

// Conflicts returns a snapshot of all conflicts and their recorded outcomes.
func (s *Session) Conflicts() []models.SyncConflict {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SyncConflict, len(s.conflicts))
	copy(out, s.conflicts)
	return out
}

// Index returns the current position.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Current returns the conflict at the current position, or nil when the
// session is empty or exhausted.
func (s *Session) Current() *models.SyncConflict {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() *models.SyncConflict {
	if s.index < 0 || s.index >= len(s.conflicts) {
		return nil
	}
	return &s.conflicts[s.index]
}

// Next advances to the following conflict. Returns false at the end.
func (s *Session) Next() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.conflicts)-1 {
		return false
	}
	s.index++
	return true
}

// Previous steps back to the prior conflict. Returns false at the start.
func (s *Session) Previous() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index <= 0 {
		return false
	}
	s.index--
	return true
}

// ResolveKeepLocal records KEEP_LOCAL for the current conflict and advances.
func (s *Session) ResolveKeepLocal() error {
	return s.resolve(models.ResolutionKeepLocal, nil)
}

// ResolveKeepRemote records KEEP_REMOTE for the current conflict and
// advances. On a deletion conflict this honors the deletion: the entity ends
// up absent.
func (s *Session) ResolveKeepRemote() error {
	return s.resolve(models.ResolutionKeepRemote, nil)
}

// ResolveMerge records a field-level merge for the current conflict and
// advances. Deletion conflicts never offer merge.
func (s *Session) ResolveMerge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.currentLocked()
	if c == nil {
		return fmt.Errorf("no current conflict")
	}
	if c.Kind == models.ConflictDeletion {
		return models.ErrMergeNotOffered
	}

	c.Resolution = models.ResolutionMerged
	c.MergedFields = Merge(c.LocalFields, c.RemoteFields, c.LocalChanged, c.RemoteChanged)
	s.advanceLocked()
	return nil
}

// Skip records SKIPPED for the current conflict and advances. A skipped
// entity stays pinned at its pre-sync local state.
func (s *Session) Skip() error {
	return s.resolve(models.ResolutionSkipped, nil)
}

func (s *Session) resolve(resolution string, merged map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.currentLocked()
	if c == nil {
		return fmt.Errorf("no current conflict")
	}

	c.Resolution = resolution
	c.MergedFields = merged
	s.advanceLocked()
	return nil
}

func (s *Session) advanceLocked() {
	if s.index < len(s.conflicts)-1 {
		s.index++
	}
}

// PendingCount returns how many conflicts still have no recorded decision.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := 0
	for i := range s.conflicts {
		if !s.conflicts[i].Resolved() {
			pending++
		}
	}
	return pending
}

// Finalize returns the decided conflicts, or ErrConflictUnresolved while any
// conflict still has no recorded decision.
func (s *Session) Finalize() ([]models.SyncConflict, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.conflicts {
		if !s.conflicts[i].Resolved() {
			return nil, fmt.Errorf("%w: %s %s", models.ErrConflictUnresolved,
				s.conflicts[i].EntityType, s.conflicts[i].EntityID)
		}
	}

	out := make([]models.SyncConflict, len(s.conflicts))
	copy(out, s.conflicts)
	return out, nil
}
