package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/treysonbrown/planner-api/internal/constants"
	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound        = errors.New("task not found")
	ErrColumnNotFound      = errors.New("column not found")
	ErrDestinationNotFound = errors.New("destination column not found")
	ErrAssigneeNotMember   = errors.New("assignee is not a project member")
)

// TaskService handles task business logic.
type TaskService struct {
	taskRepo    repository.TaskRepository
	columnRepo  repository.ColumnRepository
	projectRepo repository.ProjectRepository
}

// NewTaskService creates a new TaskService.
func NewTaskService(
	taskRepo repository.TaskRepository,
	columnRepo repository.ColumnRepository,
	projectRepo repository.ProjectRepository,
) *TaskService {
	return &TaskService{
		taskRepo:    taskRepo,
		columnRepo:  columnRepo,
		projectRepo: projectRepo,
	}
}

// Create appends a task to a column of the project.
func (s *TaskService) Create(projectID, columnID, actorID uint64, title string) (*models.Task, error) {
	if _, err := ensureProjectMember(s.projectRepo, projectID, actorID); err != nil {
		return nil, err
	}

	column, err := s.columnRepo.FindByID(columnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrColumnNotFound
		}
		return nil, fmt.Errorf("failed to find column: %w", err)
	}
	if column.ProjectID != projectID {
		return nil, ErrColumnNotFound
	}

	order, err := s.taskRepo.NextSortOrder(columnID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute task order: %w", err)
	}

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		trimmed = constants.DefaultTaskTitle
	}

	task := &models.Task{
		ProjectID:       projectID,
		ColumnID:        columnID,
		Title:           trimmed,
		Priority:        models.PriorityMedium,
		SortOrder:       order,
		CreatedByUserID: actorID,
	}
	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTaskInput carries partial-update fields. Nil pointers leave the
// stored value unchanged; ClearDueDate distinguishes an explicit null due
// date from an omitted one.
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	DueDate      *time.Time
	ClearDueDate bool
	Priority     *models.TaskPriority
}

// Update applies a partial update to a task.
func (s *TaskService) Update(taskID, actorID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if _, err := ensureProjectMember(s.projectRepo, task.ProjectID, actorID); err != nil {
		return nil, err
	}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			trimmed = constants.DefaultTaskTitle
		}
		task.Title = trimmed
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// Delete hard-deletes a task and its assignments, returning the project id
// of the deleted task.
func (s *TaskService) Delete(taskID, actorID uint64) (uint64, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return 0, err
	}

	if _, err := ensureProjectMember(s.projectRepo, task.ProjectID, actorID); err != nil {
		return 0, err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return 0, fmt.Errorf("failed to delete task: %w", err)
	}

	return task.ProjectID, nil
}

// MoveToColumn reassigns a task to another column of the same project,
// always appending at the end of the destination.
func (s *TaskService) MoveToColumn(taskID, toColumnID, actorID uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if _, err := ensureProjectMember(s.projectRepo, task.ProjectID, actorID); err != nil {
		return nil, err
	}

	toColumn, err := s.columnRepo.FindByID(toColumnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDestinationNotFound
		}
		return nil, fmt.Errorf("failed to find destination column: %w", err)
	}
	if toColumn.ProjectID != task.ProjectID {
		return nil, ErrDestinationNotFound
	}

	order, err := s.taskRepo.NextSortOrder(toColumnID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute task order: %w", err)
	}

	task.ColumnID = toColumnID
	task.SortOrder = order
	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}

	return task, nil
}

// SetAssignees replaces the task's assignee list. Input is de-duplicated
// preserving first occurrence, and every assignee must be a member of the
// task's project.
func (s *TaskService) SetAssignees(taskID, actorID uint64, assigneeIDs []uint64) (*models.Task, error) {
	task, err := s.findTask(taskID)
	if err != nil {
		return nil, err
	}

	if _, err := ensureProjectMember(s.projectRepo, task.ProjectID, actorID); err != nil {
		return nil, err
	}

	unique := uniqueUint64(assigneeIDs)
	for _, userID := range unique {
		if _, err := s.projectRepo.FindMember(task.ProjectID, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrAssigneeNotMember
			}
			return nil, fmt.Errorf("failed to verify assignee membership: %w", err)
		}
	}

	if err := s.taskRepo.ReplaceAssignments(taskID, unique); err != nil {
		return nil, fmt.Errorf("failed to set assignees: %w", err)
	}

	return s.taskRepo.FindByID(taskID, "Assignments", "Assignments.User")
}

func (s *TaskService) findTask(taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

// uniqueUint64 removes duplicate values from a slice, keeping first
// occurrences in order.
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
