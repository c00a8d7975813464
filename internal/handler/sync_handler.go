package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tomasvik/trails-backend-go/internal/middleware"
	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/service"
	"github.com/tomasvik/trails-backend-go/internal/syncer"
	"github.com/tomasvik/trails-backend-go/pkg/response"
)

// SyncHandler handles HTTP requests for the offline sync flow.
type SyncHandler struct {
	service *service.SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(service *service.SyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// DiffRequest carries both sides' entity versions for comparison.
type DiffRequest struct {
	Local  []models.EntityVersion `json:"local" binding:"required"`
	Remote []models.EntityVersion `json:"remote" binding:"required"`
}

// Diff handles POST /api/v1/sync/diff
func (h *SyncHandler) Diff(c *gin.Context) {
	var req DiffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid diff payload")
		return
	}

	response.Success(c, h.service.BeginSession(req.Local, req.Remote))
}

// sessionState is the snapshot returned by session endpoints.
type sessionState struct {
	Conflicts []models.SyncConflict `json:"conflicts"`
	Index     int                   `json:"index"`
	Pending   int                   `json:"pending"`
	Current   *models.SyncConflict  `json:"current,omitempty"`
}

func snapshotSession(s *syncer.Session) sessionState {
	return sessionState{
		Conflicts: s.Conflicts(),
		Index:     s.Index(),
		Pending:   s.PendingCount(),
		Current:   s.Current(),
	}
}

// GetSession handles GET /api/v1/sync/sessions/:id
func (h *SyncHandler) GetSession(c *gin.Context) {
	session, err := h.service.Session(c.Param("id"))
	if err != nil {
		response.NotFound(c, "Sync session not found")
		return
	}

	response.Success(c, snapshotSession(session))
}

// ResolveRequest records a decision for the session's current conflict.
type ResolveRequest struct {
	Action string `json:"action" binding:"required"` // KEEP_LOCAL, KEEP_REMOTE, MERGE, SKIP
}

// Resolve handles POST /api/v1/sync/sessions/:id/resolve
func (h *SyncHandler) Resolve(c *gin.Context) {
	session, err := h.service.Session(c.Param("id"))
	if err != nil {
		response.NotFound(c, "Sync session not found")
		return
	}

	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid resolve payload")
		return
	}

	switch req.Action {
	case models.ResolutionKeepLocal:
		err = session.ResolveKeepLocal()
	case models.ResolutionKeepRemote:
		err = session.ResolveKeepRemote()
	case "MERGE", models.ResolutionMerged:
		err = session.ResolveMerge()
	case "SKIP", models.ResolutionSkipped:
		err = session.Skip()
	default:
		response.BadRequest(c, "Unknown resolve action: "+req.Action)
		return
	}
	if err != nil {
		if errors.Is(err, models.ErrMergeNotOffered) {
			response.Conflict(c, "Merge is not offered for deletion conflicts")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, snapshotSession(session))
}

// Next handles POST /api/v1/sync/sessions/:id/next
func (h *SyncHandler) Next(c *gin.Context) {
	h.navigate(c, func(s *syncer.Session) bool { return s.Next() })
}

// Previous handles POST /api/v1/sync/sessions/:id/previous
func (h *SyncHandler) Previous(c *gin.Context) {
	h.navigate(c, func(s *syncer.Session) bool { return s.Previous() })
}

func (h *SyncHandler) navigate(c *gin.Context, move func(*syncer.Session) bool) {
	session, err := h.service.Session(c.Param("id"))
	if err != nil {
		response.NotFound(c, "Sync session not found")
		return
	}

	moved := move(session)
	state := snapshotSession(session)
	response.Success(c, gin.H{
		"moved":   moved,
		"index":   state.Index,
		"current": state.Current,
	})
}

// Finalize handles POST /api/v1/sync/sessions/:id/finalize
func (h *SyncHandler) Finalize(c *gin.Context) {
	resolved, err := h.service.Finalize(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrConflictUnresolved) {
			response.Conflict(c, err.Error())
			return
		}
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Sync session not found")
			return
		}
		response.InternalError(c, "Failed to finalize sync session")
		return
	}

	response.Success(c, gin.H{"resolved": resolved})
}
