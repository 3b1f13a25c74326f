package dto

import (
	"time"

	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/services"
)

// ColumnDTO represents a column in API responses
type ColumnDTO struct {
	ID        uint64    `json:"id"`
	ProjectID uint64    `json:"project_id"`
	Title     string    `json:"title"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID              uint64              `json:"id"`
	ProjectID       uint64              `json:"project_id"`
	ColumnID        uint64              `json:"column_id"`
	Title           string              `json:"title"`
	Description     string              `json:"description,omitempty"`
	DueDate         *time.Time          `json:"due_date"`
	Priority        models.TaskPriority `json:"priority"`
	SortOrder       int                 `json:"sort_order"`
	AssigneeIDs     []uint64            `json:"assignee_ids"`
	CreatedByUserID uint64              `json:"created_by_user_id"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// BoardDTO is the aggregate board view consumed by the UI in one call
type BoardDTO struct {
	Project ProjectDTO  `json:"project"`
	Columns []ColumnDTO `json:"columns"`
	Tasks   []TaskDTO   `json:"tasks"`
	Members []MemberDTO `json:"members"`
}

// ToColumnDTO converts a Column model to ColumnDTO
func ToColumnDTO(column models.Column) ColumnDTO {
	return ColumnDTO{
		ID:        column.ID,
		ProjectID: column.ProjectID,
		Title:     column.Title,
		SortOrder: column.SortOrder,
		CreatedAt: column.CreatedAt,
		UpdatedAt: column.UpdatedAt,
	}
}

// ToTaskDTO converts a Task model to TaskDTO; assignee ids follow the
// preloaded assignment order
func ToTaskDTO(task models.Task) TaskDTO {
	assigneeIDs := make([]uint64, len(task.Assignments))
	for i, assignment := range task.Assignments {
		assigneeIDs[i] = assignment.UserID
	}

	return TaskDTO{
		ID:              task.ID,
		ProjectID:       task.ProjectID,
		ColumnID:        task.ColumnID,
		Title:           task.Title,
		Description:     task.Description,
		DueDate:         task.DueDate,
		Priority:        task.Priority,
		SortOrder:       task.SortOrder,
		AssigneeIDs:     assigneeIDs,
		CreatedByUserID: task.CreatedByUserID,
		CreatedAt:       task.CreatedAt,
		UpdatedAt:       task.UpdatedAt,
	}
}

// ToBoardDTO converts the board read model to its response shape
func ToBoardDTO(board services.Board) BoardDTO {
	columns := make([]ColumnDTO, len(board.Columns))
	for i, column := range board.Columns {
		columns[i] = ToColumnDTO(column)
	}

	tasks := make([]TaskDTO, len(board.Tasks))
	for i, task := range board.Tasks {
		tasks[i] = ToTaskDTO(task)
	}

	members := make([]MemberDTO, len(board.Members))
	for i, member := range board.Members {
		members[i] = ToMemberDTO(member)
	}

	return BoardDTO{
		Project: ToProjectDTO(board.Project),
		Columns: columns,
		Tasks:   tasks,
		Members: members,
	}
}
