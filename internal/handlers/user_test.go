package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/treysonbrown/planner-api/internal/constants"
	"github.com/treysonbrown/planner-api/internal/database"
	"github.com/treysonbrown/planner-api/internal/dto"
	apierrors "github.com/treysonbrown/planner-api/internal/errors"
	"github.com/treysonbrown/planner-api/internal/middleware"
	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/repository"
	"github.com/treysonbrown/planner-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type userTestEnv struct {
	db          *gorm.DB
	handler     *UserHandler
	userService *services.UserService
}

func setupUserTestEnv(t *testing.T) userTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Column{},
		&models.Task{},
		&models.TaskAssignment{},
	)
	require.NoError(t, err)

	database.SetDB(db)
	gin.SetMode(gin.TestMode)

	userService := services.NewUserService(repository.NewUserRepository(db))
	handler := NewUserHandler(userService)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return userTestEnv{
		db:          db,
		handler:     handler,
		userService: userService,
	}
}

func userTestContext(method, url string, body []byte, identity *middleware.Identity) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	if identity != nil {
		c.Set(constants.ContextKeyIdentity, identity)
	}

	return c, w
}

func TestUserHandler_UpsertMe_CreatesProfile(t *testing.T) {
	env := setupUserTestEnv(t)

	identity := &middleware.Identity{
		ExternalID: "idp|alice",
		Name:       "Alice Chen",
		Email:      "alice@example.com",
		AvatarURL:  "https://img.example.com/alice.png",
	}

	c, w := userTestContext(http.MethodPost, "/api/users/me", []byte("{}"), identity)
	env.handler.UpsertMe(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "alice_chen", response.Username)
	require.Equal(t, "Alice Chen", response.Name)
	require.Equal(t, identity.AvatarURL, response.AvatarURL)
}

func TestUserHandler_UpsertMe_PrefersNicknameForHandle(t *testing.T) {
	env := setupUserTestEnv(t)

	identity := &middleware.Identity{
		ExternalID: "idp|bob",
		Name:       "Robert Martin",
		Nickname:   "Bob",
		Email:      "bob@example.com",
	}

	c, w := userTestContext(http.MethodPost, "/api/users/me", []byte("{}"), identity)
	env.handler.UpsertMe(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "bob", response.Username)
	require.Equal(t, "Robert Martin", response.Name)
}

func TestUserHandler_UpsertMe_SuffixesTakenHandle(t *testing.T) {
	env := setupUserTestEnv(t)

	require.NoError(t, env.db.Create(&models.User{
		ExternalID: "idp|first",
		Username:   "alice",
	}).Error)

	identity := &middleware.Identity{
		ExternalID: "idp|second",
		Nickname:   "Alice",
	}

	c, w := userTestContext(http.MethodPost, "/api/users/me", []byte("{}"), identity)
	env.handler.UpsertMe(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "alice1", response.Username)
}

func TestUserHandler_UpsertMe_RefreshesExistingProfile(t *testing.T) {
	env := setupUserTestEnv(t)

	first, err := env.userService.UpsertMe(services.IdentityInput{
		ExternalID: "idp|carol",
		Name:       "Carol",
	})
	require.NoError(t, err)

	identity := &middleware.Identity{
		ExternalID: "idp|carol",
		Name:       "Carol Nguyen",
		AvatarURL:  "https://img.example.com/carol.png",
	}

	c, w := userTestContext(http.MethodPost, "/api/users/me", []byte("{}"), identity)
	env.handler.UpsertMe(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, first.ID, response.ID)
	// The handle survives claim changes; only name and avatar refresh.
	require.Equal(t, first.Username, response.Username)
	require.Equal(t, "Carol Nguyen", response.Name)
	require.Equal(t, identity.AvatarURL, response.AvatarURL)
}

func TestUserHandler_Me_AnonymousIsNull(t *testing.T) {
	env := setupUserTestEnv(t)

	c, w := userTestContext(http.MethodGet, "/api/users/me", nil, nil)
	env.handler.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "null", w.Body.String())
}

func TestUserHandler_Me_UninitializedIsNull(t *testing.T) {
	env := setupUserTestEnv(t)

	identity := &middleware.Identity{ExternalID: "idp|ghost"}
	c, w := userTestContext(http.MethodGet, "/api/users/me", nil, identity)
	env.handler.Me(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "null", w.Body.String())
}

func TestUserHandler_Me_ReturnsProfile(t *testing.T) {
	env := setupUserTestEnv(t)

	user, err := env.userService.UpsertMe(services.IdentityInput{
		ExternalID: "idp|dave",
		Name:       "Dave",
	})
	require.NoError(t, err)

	identity := &middleware.Identity{ExternalID: "idp|dave"}
	c, w := userTestContext(http.MethodGet, "/api/users/me", nil, identity)
	env.handler.Me(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, user.ID, response.ID)
	require.Equal(t, user.Username, response.Username)
}

func TestUserHandler_SetUsername_NormalizesAndStores(t *testing.T) {
	env := setupUserTestEnv(t)

	_, err := env.userService.UpsertMe(services.IdentityInput{
		ExternalID: "idp|erin",
		Name:       "Erin",
	})
	require.NoError(t, err)

	body, err := json.Marshal(map[string]string{"username": "  Erin The Great!  "})
	require.NoError(t, err)

	identity := &middleware.Identity{ExternalID: "idp|erin"}
	c, w := userTestContext(http.MethodPut, "/api/users/me/username", body, identity)
	env.handler.SetUsername(c)

	require.Equal(t, http.StatusOK, w.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "erin_the_great", response["username"])

	var stored models.User
	require.NoError(t, env.db.Where("external_id = ?", "idp|erin").First(&stored).Error)
	require.Equal(t, "erin_the_great", stored.Username)
}

func TestUserHandler_SetUsername_TooShort(t *testing.T) {
	env := setupUserTestEnv(t)

	_, err := env.userService.UpsertMe(services.IdentityInput{
		ExternalID: "idp|frank",
		Name:       "Frank",
	})
	require.NoError(t, err)

	// Normalization strips the punctuation, leaving two characters.
	body, err := json.Marshal(map[string]string{"username": "a!b"})
	require.NoError(t, err)

	identity := &middleware.Identity{ExternalID: "idp|frank"}
	c, w := userTestContext(http.MethodPut, "/api/users/me/username", body, identity)
	env.handler.SetUsername(c)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var response apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, apierrors.ErrCodeInvalidInput, response.Code)
}

func TestUserHandler_SetUsername_Taken(t *testing.T) {
	env := setupUserTestEnv(t)

	require.NoError(t, env.db.Create(&models.User{
		ExternalID: "idp|holder",
		Username:   "grace",
	}).Error)

	_, err := env.userService.UpsertMe(services.IdentityInput{
		ExternalID: "idp|henry",
		Name:       "Henry",
	})
	require.NoError(t, err)

	body, err := json.Marshal(map[string]string{"username": "grace"})
	require.NoError(t, err)

	identity := &middleware.Identity{ExternalID: "idp|henry"}
	c, w := userTestContext(http.MethodPut, "/api/users/me/username", body, identity)
	env.handler.SetUsername(c)

	require.Equal(t, http.StatusConflict, w.Code)

	var response apierrors.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, apierrors.ErrCodeConflict, response.Code)
}

func TestUserHandler_SetUsername_KeepingOwnHandleIsFine(t *testing.T) {
	env := setupUserTestEnv(t)

	user, err := env.userService.UpsertMe(services.IdentityInput{
		ExternalID: "idp|iris",
		Nickname:   "Iris",
	})
	require.NoError(t, err)

	body, err := json.Marshal(map[string]string{"username": user.Username})
	require.NoError(t, err)

	identity := &middleware.Identity{ExternalID: "idp|iris"}
	c, w := userTestContext(http.MethodPut, "/api/users/me/username", body, identity)
	env.handler.SetUsername(c)

	require.Equal(t, http.StatusOK, w.Code)
}
