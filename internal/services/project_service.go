package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/treysonbrown/planner-api/internal/constants"
	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrOwnerRequired        = errors.New("only project owners can delete projects")
	ErrConfirmationMismatch = errors.New("confirmation name does not match project name")
)

// ProjectService handles project lifecycle, membership and the board read
// model.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	columnRepo  repository.ColumnRepository
	taskRepo    repository.TaskRepository
	userRepo    repository.UserRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(
	projectRepo repository.ProjectRepository,
	columnRepo repository.ColumnRepository,
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		columnRepo:  columnRepo,
		taskRepo:    taskRepo,
		userRepo:    userRepo,
	}
}

// Create creates a project with an owner membership and the two default
// columns, all in one transaction.
func (s *ProjectService) Create(ownerID uint64, name string) (*models.Project, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		trimmed = constants.DefaultProjectName
	}

	project := &models.Project{
		Name:        trimmed,
		OwnerUserID: ownerID,
	}

	owner := &models.ProjectMember{
		UserID: ownerID,
		Role:   models.RoleOwner,
	}

	columns := []*models.Column{
		{Title: "To-do", SortOrder: constants.OrderStep},
		{Title: "Done", SortOrder: constants.OrderStep * 2},
	}

	if err := s.projectRepo.CreateWithDefaults(project, owner, columns); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// Delete removes a project and everything under it. Only owners may delete,
// and the confirmation name must match the stored name exactly.
func (s *ProjectService) Delete(projectID, actorID uint64, confirmName string) error {
	role, err := ensureProjectMember(s.projectRepo, projectID, actorID)
	if err != nil {
		return err
	}
	if role != models.RoleOwner {
		return ErrOwnerRequired
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if strings.TrimSpace(confirmName) != project.Name {
		return ErrConfirmationMismatch
	}

	if err := s.projectRepo.DeleteCascade(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// ListForUser returns the caller's memberships with projects preloaded. The
// caller annotates each project with its own role; no server-side ordering
// is part of the contract.
func (s *ProjectService) ListForUser(userID uint64) ([]models.ProjectMember, error) {
	memberships, err := s.projectRepo.ListMembershipsByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return memberships, nil
}

// MemberRole returns the caller's role in a project, gating stream access.
func (s *ProjectService) MemberRole(projectID, userID uint64) (models.ProjectRole, error) {
	return ensureProjectMember(s.projectRepo, projectID, userID)
}

// Board is the aggregate read model consumed by the UI in one call.
type Board struct {
	Project models.Project
	Columns []models.Column
	Tasks   []models.Task
	Members []models.ProjectMember
}

// GetBoard assembles project, ordered columns, ordered tasks and the member
// list for a project the caller belongs to.
func (s *ProjectService) GetBoard(projectID, userID uint64) (*Board, error) {
	if _, err := ensureProjectMember(s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		// Membership can outlive the project row for the duration of a
		// concurrent delete; surface that as not-found.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	columns, err := s.columnRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns: %w", err)
	}

	tasks, err := s.taskRepo.ListByProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	members, err := s.projectRepo.ListMembers(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}

	return &Board{
		Project: *project,
		Columns: columns,
		Tasks:   tasks,
		Members: members,
	}, nil
}

// InviteByUsername adds the named user as a member. Re-inviting an existing
// member returns the existing membership unchanged.
func (s *ProjectService) InviteByUsername(projectID, actorID uint64, username string) (*models.ProjectMember, error) {
	if _, err := ensureProjectMember(s.projectRepo, projectID, actorID); err != nil {
		return nil, err
	}

	normalized := strings.ToLower(strings.TrimSpace(username))
	user, err := s.userRepo.FindByUsername(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	existing, err := s.projectRepo.FindMember(projectID, user.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}

	member := &models.ProjectMember{
		ProjectID: projectID,
		UserID:    user.ID,
		Role:      models.RoleMember,
	}
	if err := s.projectRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}
