package models

import "time"

type User struct {
	ID         uint64    `gorm:"primarykey" json:"id"`
	ExternalID string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"-"`
	Username   string    `gorm:"type:varchar(24);uniqueIndex;not null" json:"username"`
	Name       string    `gorm:"type:varchar(255)" json:"name,omitempty"`
	AvatarURL  string    `gorm:"type:varchar(512)" json:"avatar_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relations
	Memberships  []ProjectMember `gorm:"foreignKey:UserID" json:"-"`
	CreatedTasks []Task          `gorm:"foreignKey:CreatedByUserID" json:"-"`
}
