package services

import (
	"errors"
	"fmt"

	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotProjectMember = errors.New("not authorized: caller is not a project member")
	ErrProjectNotFound  = errors.New("project not found")
)

// ensureProjectMember verifies that a user belongs to a project and returns
// the role for role-gated operations.
func ensureProjectMember(projectRepo repository.ProjectRepository, projectID, userID uint64) (models.ProjectRole, error) {
	member, err := projectRepo.FindMember(projectID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotProjectMember
		}
		return "", fmt.Errorf("failed to verify project membership: %w", err)
	}
	return member.Role, nil
}
