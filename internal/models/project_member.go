package models

import "time"

type ProjectRole string

const (
	RoleOwner  ProjectRole = "owner"
	RoleMember ProjectRole = "member"
)

// ProjectMember carries its own primary key in addition to the unique
// (project, user) pair: inviteByUsername returns the membership id, and the
// idempotent re-invite must hand back the same one.
type ProjectMember struct {
	ID        uint64      `gorm:"primarykey" json:"id"`
	ProjectID uint64      `gorm:"not null;uniqueIndex:idx_project_user;index" json:"project_id"`
	UserID    uint64      `gorm:"not null;uniqueIndex:idx_project_user;index" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time   `json:"created_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	User    User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
