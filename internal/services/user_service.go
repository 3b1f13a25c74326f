package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/treysonbrown/planner-api/internal/constants"
	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/repository"
	"github.com/treysonbrown/planner-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrUserRecordMissing = errors.New("user record missing, complete profile setup first")
	ErrUserNotFound      = errors.New("user not found")
	ErrUsernameTooShort  = errors.New("username must be at least 3 characters")
	ErrUsernameTaken     = errors.New("username is already taken")
)

// UserService handles profile bootstrap and handle management.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// IdentityInput carries the verified claims of the calling identity.
type IdentityInput struct {
	ExternalID string
	Name       string
	Nickname   string
	Email      string
	AvatarURL  string
}

// ResolveCaller maps a verified external identity to the internal user
// record. Authenticated callers that never ran the profile upsert get
// ErrUserRecordMissing.
func (s *UserService) ResolveCaller(externalID string) (*models.User, error) {
	user, err := s.userRepo.FindByExternalID(externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserRecordMissing
		}
		return nil, fmt.Errorf("failed to resolve caller: %w", err)
	}
	return user, nil
}

// ResolveCallerOptional is ResolveCaller for read-only queries that degrade
// gracefully: a missing record returns (nil, nil) instead of an error.
func (s *UserService) ResolveCallerOptional(externalID string) (*models.User, error) {
	user, err := s.userRepo.FindByExternalID(externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve caller: %w", err)
	}
	return user, nil
}

// UpsertMe bootstraps the caller's profile. Existing users get their name
// and avatar refreshed from the identity claims (non-empty values only);
// first-time callers get a user row with a derived, unique handle.
func (s *UserService) UpsertMe(input IdentityInput) (*models.User, error) {
	existing, err := s.userRepo.FindByExternalID(input.ExternalID)
	if err == nil {
		displayName := input.Name
		if displayName == "" {
			displayName = input.Nickname
		}
		if displayName != "" {
			existing.Name = displayName
		}
		if input.AvatarURL != "" {
			existing.AvatarURL = input.AvatarURL
		}
		if err := s.userRepo.Update(existing); err != nil {
			return nil, fmt.Errorf("failed to refresh profile: %w", err)
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up profile: %w", err)
	}

	username, err := s.pickUsername(utils.DeriveUsername(input.Nickname, input.Name, input.Email))
	if err != nil {
		return nil, err
	}

	displayName := input.Name
	if displayName == "" {
		displayName = input.Nickname
	}

	user := &models.User{
		ExternalID: input.ExternalID,
		Username:   username,
		Name:       displayName,
		AvatarURL:  input.AvatarURL,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return user, nil
}

// pickUsername tries the base handle and then numeric-suffixed candidates.
// If every candidate is taken the last one is kept and the unique index has
// the final word on the insert.
func (s *UserService) pickUsername(base string) (string, error) {
	candidate := base
	for i := 0; i < constants.MaxUsernameAttempts; i++ {
		if i > 0 {
			candidate = base + strconv.Itoa(i)
		}
		_, err := s.userRepo.FindByUsername(candidate)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
	}
	return candidate, nil
}

// SetUsername changes the caller's handle after normalization and
// uniqueness checks, and returns the stored value.
func (s *UserService) SetUsername(externalID, username string) (string, error) {
	me, err := s.userRepo.FindByExternalID(externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrUserRecordMissing
		}
		return "", fmt.Errorf("failed to resolve caller: %w", err)
	}

	normalized := utils.NormalizeUsername(username)
	if len(normalized) < constants.MinUsernameLength {
		return "", ErrUsernameTooShort
	}

	taken, err := s.userRepo.FindByUsername(normalized)
	if err == nil && taken.ID != me.ID {
		return "", ErrUsernameTaken
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("failed to check username: %w", err)
	}

	me.Username = normalized
	if err := s.userRepo.Update(me); err != nil {
		return "", fmt.Errorf("failed to update username: %w", err)
	}

	return normalized, nil
}

// FindByUsername looks up a user by normalized handle, used by invitations.
func (s *UserService) FindByUsername(username string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	user, err := s.userRepo.FindByUsername(normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
