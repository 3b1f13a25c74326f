package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/treysonbrown/planner-api/internal/dto"
	apierrors "github.com/treysonbrown/planner-api/internal/errors"
	"github.com/treysonbrown/planner-api/internal/events"
	"github.com/treysonbrown/planner-api/internal/services"
)

// ProjectHandler coordinates project lifecycle and membership handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
	userService    *services.UserService
	publisher      events.Publisher
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService, userService *services.UserService, publisher events.Publisher) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		userService:    userService,
		publisher:      publisher,
	}
}

// CreateProject creates a project with default columns and an owner
// membership for the caller.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	type CreateProjectRequest struct {
		Name string `json:"name"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.Create(caller.ID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the caller's projects annotated with their role.
// Anonymous and uninitialized callers get an empty list.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	caller, ok := resolveCallerOptional(c, h.userService)
	if !ok {
		return
	}
	if caller == nil {
		c.JSON(http.StatusOK, gin.H{"projects": []dto.ProjectWithRoleDTO{}})
		return
	}

	memberships, err := h.projectService.ListForUser(caller.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	projects := make([]dto.ProjectWithRoleDTO, len(memberships))
	for i, m := range memberships {
		projects[i] = dto.ToProjectWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

// DeleteProject destroys a project after an exact confirmation-name match.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type DeleteProjectRequest struct {
		ConfirmName string `json:"confirm_name"`
	}

	var req DeleteProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.projectService.Delete(projectID, caller.ID, req.ConfirmName); err != nil {
		respondServiceError(c, err)
		return
	}

	h.publisher.ProjectUpdated(c.Request.Context(), projectID)

	c.JSON(http.StatusOK, gin.H{"message": "Project deleted"})
}

// GetBoard returns the aggregate board view, or null for anonymous and
// uninitialized callers.
func (h *ProjectHandler) GetBoard(c *gin.Context) {
	caller, ok := resolveCallerOptional(c, h.userService)
	if !ok {
		return
	}
	if caller == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.projectService.GetBoard(projectID, caller.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBoardDTO(*board))
}

// InviteByUsername adds a user to the project by handle. Re-inviting an
// existing member is idempotent.
func (h *ProjectHandler) InviteByUsername(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type InviteRequest struct {
		Username string `json:"username" binding:"required"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.projectService.InviteByUsername(projectID, caller.ID, req.Username)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publisher.ProjectUpdated(c.Request.Context(), projectID)

	c.JSON(http.StatusOK, dto.ToMembershipDTO(*member))
}
