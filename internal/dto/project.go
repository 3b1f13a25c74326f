package dto

import (
	"time"

	"github.com/treysonbrown/planner-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID uint64    `json:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectWithRoleDTO annotates a project with the caller's role
type ProjectWithRoleDTO struct {
	ProjectDTO
	Role models.ProjectRole `json:"role"`
}

// MemberDTO represents a project member with profile fields flattened in
type MemberDTO struct {
	UserID    uint64             `json:"user_id"`
	Username  string             `json:"username"`
	Name      string             `json:"name,omitempty"`
	AvatarURL string             `json:"avatar_url,omitempty"`
	Role      models.ProjectRole `json:"role"`
}

// MembershipDTO represents a membership row, returned by invitations
type MembershipDTO struct {
	ID        uint64             `json:"id"`
	ProjectID uint64             `json:"project_id"`
	UserID    uint64             `json:"user_id"`
	Role      models.ProjectRole `json:"role"`
	CreatedAt time.Time          `json:"created_at"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		OwnerUserID: project.OwnerUserID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectWithRoleDTO converts a membership (with project preloaded) to a
// project annotated with the caller's role
func ToProjectWithRoleDTO(member models.ProjectMember) ProjectWithRoleDTO {
	return ProjectWithRoleDTO{
		ProjectDTO: ToProjectDTO(member.Project),
		Role:       member.Role,
	}
}

// ToMemberDTO converts a membership (with user preloaded) to MemberDTO
func ToMemberDTO(member models.ProjectMember) MemberDTO {
	return MemberDTO{
		UserID:    member.UserID,
		Username:  member.User.Username,
		Name:      member.User.Name,
		AvatarURL: member.User.AvatarURL,
		Role:      member.Role,
	}
}

// ToMembershipDTO converts a membership row to MembershipDTO
func ToMembershipDTO(member models.ProjectMember) MembershipDTO {
	return MembershipDTO{
		ID:        member.ID,
		ProjectID: member.ProjectID,
		UserID:    member.UserID,
		Role:      member.Role,
		CreatedAt: member.CreatedAt,
	}
}
