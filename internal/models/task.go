package models

import "time"

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

type Task struct {
	ID              uint64       `gorm:"primarykey" json:"id"`
	ProjectID       uint64       `gorm:"not null;index:idx_tasks_project_order" json:"project_id"`
	ColumnID        uint64       `gorm:"not null;index:idx_tasks_column_order" json:"column_id"`
	Title           string       `gorm:"not null" json:"title"`
	Description     string       `gorm:"type:text" json:"description,omitempty"`
	DueDate         *time.Time   `json:"due_date"`
	Priority        TaskPriority `gorm:"type:varchar(10);not null;default:'medium'" json:"priority"`
	SortOrder       int          `gorm:"not null;index:idx_tasks_project_order;index:idx_tasks_column_order" json:"sort_order"`
	CreatedByUserID uint64       `gorm:"not null" json:"created_by_user_id"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	// Relations
	Project     Project          `gorm:"foreignKey:ProjectID" json:"-"`
	Column      Column           `gorm:"foreignKey:ColumnID" json:"-"`
	CreatedBy   User             `gorm:"foreignKey:CreatedByUserID" json:"-"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}
