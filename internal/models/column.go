package models

import "time"

// Column sort orders are unique within a project but not contiguous: appends
// take max+step, explicit reorders rewrite the whole sequence.
type Column struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	ProjectID uint64    `gorm:"not null;index:idx_columns_project_order" json:"project_id"`
	Title     string    `gorm:"type:varchar(255);not null" json:"title"`
	SortOrder int       `gorm:"not null;index:idx_columns_project_order" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
	Tasks   []Task  `gorm:"foreignKey:ColumnID" json:"tasks,omitempty"`
}
