package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/treysonbrown/planner-api/internal/dto"
	apierrors "github.com/treysonbrown/planner-api/internal/errors"
	"github.com/treysonbrown/planner-api/internal/events"
	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/services"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
	userService *services.UserService
	publisher   events.Publisher
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService, userService *services.UserService, publisher events.Publisher) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		userService: userService,
		publisher:   publisher,
	}
}

// CreateTask appends a task to a column of the project.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type CreateTaskRequest struct {
		ColumnID uint64 `json:"column_id" binding:"required"`
		Title    string `json:"title"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.Create(projectID, req.ColumnID, caller.ID, req.Title)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publisher.ProjectUpdated(c.Request.Context(), projectID)

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask applies a partial update. The raw body is inspected so an
// explicit `"due_date": null` (clear) can be told apart from an omitted
// due_date (keep).
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput

	if title, provided := rawReq["title"]; provided {
		titleStr, ok := title.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid title")
			return
		}
		input.Title = &titleStr
	}
	if description, provided := rawReq["description"]; provided {
		descStr, ok := description.(string)
		if !ok {
			apierrors.BadRequest(c, "Invalid description")
			return
		}
		input.Description = &descStr
	}
	if dueDate, provided := rawReq["due_date"]; provided {
		if dueDate == nil {
			input.ClearDueDate = true
		} else {
			dueDateStr, ok := dueDate.(string)
			if !ok {
				apierrors.BadRequest(c, "Invalid due_date")
				return
			}
			parsed, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date")
				return
			}
			input.DueDate = &parsed
		}
	}
	if priority, provided := rawReq["priority"]; provided {
		priorityStr, ok := priority.(string)
		if !ok || !validPriority(priorityStr) {
			apierrors.BadRequest(c, "Invalid priority")
			return
		}
		p := models.TaskPriority(priorityStr)
		input.Priority = &p
	}

	task, err := h.taskService.Update(taskID, caller.ID, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publisher.ProjectUpdated(c.Request.Context(), task.ProjectID)

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask hard-deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	projectID, err := h.taskService.Delete(taskID, caller.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publisher.ProjectUpdated(c.Request.Context(), projectID)

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted"})
}

// MoveTask appends the task to the end of the destination column.
func (h *TaskHandler) MoveTask(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type MoveTaskRequest struct {
		ToColumnID uint64 `json:"to_column_id" binding:"required"`
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.MoveToColumn(taskID, req.ToColumnID, caller.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publisher.ProjectUpdated(c.Request.Context(), task.ProjectID)

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// SetAssignees replaces the task's assignee list.
func (h *TaskHandler) SetAssignees(c *gin.Context) {
	caller, ok := resolveCaller(c, h.userService)
	if !ok {
		return
	}

	taskID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type SetAssigneesRequest struct {
		AssigneeIDs []uint64 `json:"assignee_ids"`
	}

	var req SetAssigneesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.SetAssignees(taskID, caller.ID, req.AssigneeIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	h.publisher.ProjectUpdated(c.Request.Context(), task.ProjectID)

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

func validPriority(p string) bool {
	switch models.TaskPriority(p) {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
		return true
	}
	return false
}
