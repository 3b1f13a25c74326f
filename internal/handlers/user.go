package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/treysonbrown/planner-api/internal/dto"
	apierrors "github.com/treysonbrown/planner-api/internal/errors"
	"github.com/treysonbrown/planner-api/internal/middleware"
	"github.com/treysonbrown/planner-api/internal/services"
)

// UserHandler coordinates profile HTTP handlers.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// UpsertMe bootstraps or refreshes the caller's profile from identity claims.
func (h *UserHandler) UpsertMe(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return
	}

	user, err := h.userService.UpsertMe(services.IdentityInput{
		ExternalID: identity.ExternalID,
		Name:       identity.Name,
		Nickname:   identity.Nickname,
		Email:      identity.Email,
		AvatarURL:  identity.AvatarURL,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Me returns the caller's profile, or null for anonymous or uninitialized
// callers.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := resolveCallerOptional(c, h.userService)
	if !ok {
		return
	}
	if user == nil {
		c.JSON(http.StatusOK, nil)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// SetUsername changes the caller's handle.
func (h *UserHandler) SetUsername(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		apierrors.Unauthenticated(c, "")
		return
	}

	type SetUsernameRequest struct {
		Username string `json:"username" binding:"required"`
	}

	var req SetUsernameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	username, err := h.userService.SetUsername(identity.ExternalID, req.Username)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": username})
}
