package models

import "time"

// TaskAssignment rows are replaced wholesale by setTaskAssignees. The
// autoincrement id doubles as insertion order, which is how the de-duplicated
// first-occurrence ordering of the assignee list survives a round trip.
type TaskAssignment struct {
	ID        uint64    `gorm:"primarykey" json:"-"`
	TaskID    uint64    `gorm:"not null;uniqueIndex:idx_task_user;index" json:"task_id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_task_user;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Task Task `gorm:"foreignKey:TaskID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
