package repository

import (
	"github.com/treysonbrown/planner-api/internal/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// Update persists changes to an existing user
	Update(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByExternalID finds a user by the identity provider's stable key
	FindByExternalID(externalID string) (*models.User, error)

	// FindByUsername finds a user by normalized handle
	FindByUsername(username string) (*models.User, error)
}

// ProjectRepository defines the interface for project and membership data access
type ProjectRepository interface {
	// CreateWithDefaults creates a project, its owner membership and its
	// default columns within a single transaction
	CreateWithDefaults(project *models.Project, owner *models.ProjectMember, columns []*models.Column) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// DeleteCascade removes a project and all of its tasks, task
	// assignments, columns and memberships in a single transaction
	DeleteCascade(id uint64) error

	// AddMember adds a member to a project
	AddMember(member *models.ProjectMember) error

	// FindMember finds a specific project membership
	FindMember(projectID, userID uint64) (*models.ProjectMember, error)

	// ListMembershipsByUser lists all memberships of a user with projects preloaded
	ListMembershipsByUser(userID uint64) ([]models.ProjectMember, error)

	// ListMembers lists all members of a project with users preloaded
	ListMembers(projectID uint64) ([]models.ProjectMember, error)
}

// ColumnOrder pairs a column id with its new sort order for reorders.
type ColumnOrder struct {
	ColumnID  uint64
	SortOrder int
}

// ColumnRepository defines the interface for column data access
type ColumnRepository interface {
	// Create creates a new column
	Create(column *models.Column) error

	// FindByID finds a column by ID
	FindByID(id uint64) (*models.Column, error)

	// ListByProject lists a project's columns sorted ascending
	ListByProject(projectID uint64) ([]models.Column, error)

	// NextSortOrder returns the append position for a new column
	NextSortOrder(projectID uint64) (int, error)

	// UpdateSortOrders rewrites column sort orders in a single transaction
	UpdateSortOrders(orders []ColumnOrder) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// ListByProject lists a project's tasks sorted ascending
	ListByProject(projectID uint64) ([]models.Task, error)

	// NextSortOrder returns the append position for a task in a column
	NextSortOrder(columnID uint64) (int, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete removes a task and its assignments
	Delete(id uint64) error

	// ReplaceAssignments swaps a task's assignee set for the given users,
	// preserving slice order as insertion order
	ReplaceAssignments(taskID uint64, userIDs []uint64) error
}
