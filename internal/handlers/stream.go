package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/treysonbrown/planner-api/internal/dto"
	apierrors "github.com/treysonbrown/planner-api/internal/errors"
	"github.com/treysonbrown/planner-api/internal/events"
	"github.com/treysonbrown/planner-api/internal/logging"
	"github.com/treysonbrown/planner-api/internal/services"
)

const streamHeartbeatInterval = 25 * time.Second

// StreamHandler serves the live board feed over server-sent events.
type StreamHandler struct {
	projectService *services.ProjectService
	userService    *services.UserService
	hub            *events.Hub
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(projectService *services.ProjectService, userService *services.UserService, hub *events.Hub) *StreamHandler {
	return &StreamHandler{
		projectService: projectService,
		userService:    userService,
		hub:            hub,
	}
}

// StreamBoard streams a board snapshot whenever the project changes. Each
// event carries the full board, so clients never have to reconcile deltas.
func (h *StreamHandler) StreamBoard(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := h.projectService.MemberRole(projectID, caller.ID); err != nil {
		respondServiceError(c, err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		apierrors.InternalError(c, "Streaming not supported")
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	updates, cancel := h.hub.Subscribe(projectID)
	defer cancel()

	if !h.writeBoard(c, projectID, caller.ID) {
		return
	}
	flusher.Flush()

	heartbeat := time.NewTicker(streamHeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-updates:
			if !h.writeBoard(c, projectID, caller.ID) {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := c.Writer.WriteString(": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeBoard fetches a fresh snapshot and writes it as one SSE event.
// Returns false when the board is gone or the caller lost membership.
func (h *StreamHandler) writeBoard(c *gin.Context, projectID, userID uint64) bool {
	board, err := h.projectService.GetBoard(projectID, userID)
	if err != nil {
		return false
	}

	payload, err := json.Marshal(dto.ToBoardDTO(*board))
	if err != nil {
		logging.Logger.WithError(err).Error("Failed to encode board event")
		return false
	}

	if _, err := c.Writer.WriteString("event: board\ndata: " + string(payload) + "\n\n"); err != nil {
		return false
	}
	return true
}
