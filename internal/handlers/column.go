package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/treysonbrown/planner-api/internal/dto"
	apierrors "github.com/treysonbrown/planner-api/internal/errors"
	"github.com/treysonbrown/planner-api/internal/events"
	"github.com/treysonbrown/planner-api/internal/services"
)

// ColumnHandler coordinates column HTTP handlers.
type ColumnHandler struct {
	columnService *services.ColumnService
	userService   *services.UserService
	publisher     events.Publisher
}

// NewColumnHandler creates a new ColumnHandler.
func NewColumnHandler(columnService *services.ColumnService, userService *services.UserService, publisher events.Publisher) *ColumnHandler {
	return &ColumnHandler{
		columnService: columnService,
		userService:   userService,
		publisher:     publisher,
	}
}

// CreateColumn appends a column to the project.
func (h *ColumnHandler) CreateColumn(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CreateColumnRequest struct {
		Title string `json:"title"`
	}

	var req CreateColumnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	column, err := h.columnService.Create(projectID, caller.ID, req.Title)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publisher.ProjectUpdated(c.Request.Context(), projectID)

	c.JSON(http.StatusCreated, dto.ToColumnDTO(*column))
}

// ReorderColumns rewrites the project's column order from a full
// permutation of its column ids.
func (h *ColumnHandler) ReorderColumns(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type ReorderRequest struct {
		OrderedColumnIDs []uint64 `json:"ordered_column_ids" binding:"required"`
	}

	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.columnService.Reorder(projectID, caller.ID, req.OrderedColumnIDs); err != nil {
		respondServiceError(c, err)
		return
	}

	h.publisher.ProjectUpdated(c.Request.Context(), projectID)

	c.JSON(http.StatusOK, gin.H{"message": "Columns reordered"})
}
