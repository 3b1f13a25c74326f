package models

import "time"

// Project rows are hard-deleted; deleteProject cascades to columns, tasks
// and memberships, so there is no DeletedAt on any planner model.
type Project struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	OwnerUserID uint64    `gorm:"not null;index" json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Owner   User            `gorm:"foreignKey:OwnerUserID" json:"-"`
	Members []ProjectMember `gorm:"foreignKey:ProjectID" json:"members,omitempty"`
	Columns []Column        `gorm:"foreignKey:ProjectID" json:"columns,omitempty"`
	Tasks   []Task          `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
