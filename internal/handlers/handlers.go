package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/treysonbrown/planner-api/internal/errors"
	"github.com/treysonbrown/planner-api/internal/logging"
	"github.com/treysonbrown/planner-api/internal/middleware"
	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/services"
)

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// resolveCaller maps the verified identity on the context to the internal
// user record, writing the error response itself on failure.
func resolveCaller(c *gin.Context, users *services.UserService) (*models.User, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return nil, false
	}

	user, err := users.ResolveCaller(identity.ExternalID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return user, true
}

// resolveCallerOptional returns (nil, true) for anonymous or uninitialized
// callers so read-only queries can degrade gracefully.
func resolveCallerOptional(c *gin.Context, users *services.UserService) (*models.User, bool) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		return nil, true
	}

	user, err := users.ResolveCallerOptional(identity.ExternalID)
	if err != nil {
		respondServiceError(c, err)
		return nil, false
	}
	return user, true
}

// respondServiceError maps service sentinels onto the API error taxonomy.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserRecordMissing),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrProjectNotFound),
		errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrColumnNotFound),
		errors.Is(err, services.ErrDestinationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotProjectMember),
		errors.Is(err, services.ErrOwnerRequired):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrInvalidOrderPayload),
		errors.Is(err, services.ErrConfirmationMismatch),
		errors.Is(err, services.ErrUsernameTooShort),
		errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	default:
		logging.Logger.Errorf("unhandled service error: %v", err)
		apierrors.InternalError(c, "")
	}
}
