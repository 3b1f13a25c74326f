package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/treysonbrown/planner-api/internal/constants"
	"github.com/treysonbrown/planner-api/internal/database"
	"github.com/treysonbrown/planner-api/internal/dto"
	"github.com/treysonbrown/planner-api/internal/middleware"
	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/repository"
	"github.com/treysonbrown/planner-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db             *gorm.DB
	handler        *TaskHandler
	projectService *services.ProjectService
	taskService    *services.TaskService
	publisher      *recordingPublisher
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.ProjectMember{},
		&models.Column{},
		&models.Task{},
		&models.TaskAssignment{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	userRepo := repository.NewUserRepository(suite.db)
	projectRepo := repository.NewProjectRepository(suite.db)
	columnRepo := repository.NewColumnRepository(suite.db)
	taskRepo := repository.NewTaskRepository(suite.db)

	userService := services.NewUserService(userRepo)
	suite.projectService = services.NewProjectService(projectRepo, columnRepo, taskRepo, userRepo)
	suite.taskService = services.NewTaskService(taskRepo, columnRepo, projectRepo)

	suite.publisher = &recordingPublisher{}
	suite.handler = NewTaskHandler(suite.taskService, userService, suite.publisher)

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestUser(externalID, username string) *models.User {
	user := &models.User{
		ExternalID: externalID,
		Username:   username,
	}
	suite.db.Create(user)
	return user
}

func (suite *TaskHandlerTestSuite) createTestProject(owner *models.User, name string) (*models.Project, []models.Column) {
	project, err := suite.projectService.Create(owner.ID, name)
	suite.Require().NoError(err)

	var columns []models.Column
	suite.Require().NoError(suite.db.Where("project_id = ?", project.ID).
		Order("sort_order ASC").Find(&columns).Error)
	return project, columns
}

// Helper function to create an authenticated context with an id param
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, user *models.User, id uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyIdentity, &middleware.Identity{ExternalID: user.ExternalID})
	c.Params = gin.Params{{Key: "id", Value: strconv.FormatUint(id, 10)}}

	return c, w
}

// TestCreateTask_Success tests task creation at the end of a column
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	payload := map[string]interface{}{
		"column_id": columns[0].ID,
		"title":     "Write docs",
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/projects/1/tasks", body, owner, project.ID)
	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Write docs", response.Title)
	assert.Equal(suite.T(), columns[0].ID, response.ColumnID)
	assert.Equal(suite.T(), 1000, response.SortOrder)
	assert.Equal(suite.T(), models.PriorityMedium, response.Priority)
	assert.Equal(suite.T(), owner.ID, response.CreatedByUserID)
	assert.Equal(suite.T(), []uint64{project.ID}, suite.publisher.projectIDs)
}

// TestCreateTask_AppendsAfterExisting tests that new tasks land after the
// current column maximum
func (suite *TaskHandlerTestSuite) TestCreateTask_AppendsAfterExisting() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	_, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "First")
	suite.Require().NoError(err)

	payload := map[string]interface{}{"column_id": columns[0].ID, "title": "Second"}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/projects/1/tasks", body, owner, project.ID)
	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), 2000, response.SortOrder)
}

// TestCreateTask_BlankTitle tests the default title
func (suite *TaskHandlerTestSuite) TestCreateTask_BlankTitle() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	payload := map[string]interface{}{"column_id": columns[0].ID, "title": "   "}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/projects/1/tasks", body, owner, project.ID)
	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Untitled task", response.Title)
}

// TestCreateTask_ColumnFromAnotherProject tests the cross-project guard
func (suite *TaskHandlerTestSuite) TestCreateTask_ColumnFromAnotherProject() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, _ := suite.createTestProject(owner, "Board")
	_, otherColumns := suite.createTestProject(owner, "Other")

	payload := map[string]interface{}{"column_id": otherColumns[0].ID, "title": "Stray"}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/projects/1/tasks", body, owner, project.ID)
	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestUpdateTask_PartialFields tests that omitted fields survive the update
func (suite *TaskHandlerTestSuite) TestUpdateTask_PartialFields() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Original")
	suite.Require().NoError(err)

	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	_, err = suite.taskService.Update(task.ID, owner.ID, services.UpdateTaskInput{DueDate: &due})
	suite.Require().NoError(err)

	payload := map[string]interface{}{"description": "Now with details"}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, owner, task.ID)
	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Original", response.Title)
	assert.Equal(suite.T(), "Now with details", response.Description)
	suite.Require().NotNil(response.DueDate)
	assert.True(suite.T(), due.Equal(*response.DueDate))
}

// TestUpdateTask_ExplicitNullClearsDueDate tests the null-vs-omitted split
func (suite *TaskHandlerTestSuite) TestUpdateTask_ExplicitNullClearsDueDate() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Due soon")
	suite.Require().NoError(err)

	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	_, err = suite.taskService.Update(task.ID, owner.ID, services.UpdateTaskInput{DueDate: &due})
	suite.Require().NoError(err)

	body := []byte(`{"due_date": null}`)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, owner, task.ID)
	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Nil(suite.T(), response.DueDate)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	assert.Nil(suite.T(), stored.DueDate)
}

// TestUpdateTask_BlankTitleGetsDefault tests the title fallback on update
func (suite *TaskHandlerTestSuite) TestUpdateTask_BlankTitleGetsDefault() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Named")
	suite.Require().NoError(err)

	payload := map[string]interface{}{"title": "  "}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, owner, task.ID)
	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Untitled task", response.Title)
}

// TestUpdateTask_InvalidPriority tests priority validation
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidPriority() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Task")
	suite.Require().NoError(err)

	payload := map[string]interface{}{"priority": "urgent"}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, owner, task.ID)
	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_NonMemberForbidden tests the membership gate
func (suite *TaskHandlerTestSuite) TestUpdateTask_NonMemberForbidden() {
	owner := suite.createTestUser("idp|owner", "owner")
	outsider := suite.createTestUser("idp|outsider", "outsider")
	project, columns := suite.createTestProject(owner, "Board")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Private")
	suite.Require().NoError(err)

	payload := map[string]interface{}{"title": "Hijacked"}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("PATCH", "/api/tasks/1", body, outsider, task.ID)
	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusForbidden, w.Code)
}

// TestDeleteTask_Success tests deletion with assignment cleanup
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Short-lived")
	suite.Require().NoError(err)
	_, err = suite.taskService.SetAssignees(task.ID, owner.ID, []uint64{owner.ID})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, owner, task.ID)
	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var taskCount, assignmentCount int64
	suite.db.Model(&models.Task{}).Count(&taskCount)
	suite.db.Model(&models.TaskAssignment{}).Count(&assignmentCount)
	assert.Zero(suite.T(), taskCount)
	assert.Zero(suite.T(), assignmentCount)
	assert.Equal(suite.T(), []uint64{project.ID}, suite.publisher.projectIDs)
}

// TestDeleteTask_NotFound tests deleting a missing task
func (suite *TaskHandlerTestSuite) TestDeleteTask_NotFound() {
	owner := suite.createTestUser("idp|owner", "owner")

	c, w := suite.createAuthContext("DELETE", "/api/tasks/999", nil, owner, 999)
	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestMoveTask_AppendsAtDestination tests that a move always appends
func (suite *TaskHandlerTestSuite) TestMoveTask_AppendsAtDestination() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	_, err := suite.taskService.Create(project.ID, columns[1].ID, owner.ID, "Settled")
	suite.Require().NoError(err)
	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Mover")
	suite.Require().NoError(err)

	payload := map[string]interface{}{"to_column_id": columns[1].ID}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/move", body, owner, task.ID)
	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), columns[1].ID, response.ColumnID)
	assert.Equal(suite.T(), 2000, response.SortOrder)
}

// TestMoveTask_MoveWithinColumnStillAppends tests a same-column move
func (suite *TaskHandlerTestSuite) TestMoveTask_MoveWithinColumnStillAppends() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "First")
	suite.Require().NoError(err)
	_, err = suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Second")
	suite.Require().NoError(err)

	payload := map[string]interface{}{"to_column_id": columns[0].ID}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/move", body, owner, task.ID)
	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	// The task re-enters at the end, after the 2000 already there.
	assert.Equal(suite.T(), 3000, response.SortOrder)
}

// TestMoveTask_DestinationInAnotherProject tests the destination guard
func (suite *TaskHandlerTestSuite) TestMoveTask_DestinationInAnotherProject() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")
	_, otherColumns := suite.createTestProject(owner, "Other")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Stuck")
	suite.Require().NoError(err)

	payload := map[string]interface{}{"to_column_id": otherColumns[0].ID}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("POST", "/api/tasks/1/move", body, owner, task.ID)
	suite.handler.MoveTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestSetAssignees_DeduplicatesPreservingOrder tests the assignee replace
func (suite *TaskHandlerTestSuite) TestSetAssignees_DeduplicatesPreservingOrder() {
	owner := suite.createTestUser("idp|owner", "owner")
	helper := suite.createTestUser("idp|helper", "helper")
	project, columns := suite.createTestProject(owner, "Board")

	_, err := suite.projectService.InviteByUsername(project.ID, owner.ID, helper.Username)
	suite.Require().NoError(err)

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Shared work")
	suite.Require().NoError(err)

	payload := map[string]interface{}{
		"assignee_ids": []uint64{helper.ID, owner.ID, helper.ID},
	}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1/assignees", body, owner, task.ID)
	suite.handler.SetAssignees(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), []uint64{helper.ID, owner.ID}, response.AssigneeIDs)
}

// TestSetAssignees_EmptyListClears tests clearing assignees
func (suite *TaskHandlerTestSuite) TestSetAssignees_EmptyListClears() {
	owner := suite.createTestUser("idp|owner", "owner")
	project, columns := suite.createTestProject(owner, "Board")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Unloved")
	suite.Require().NoError(err)
	_, err = suite.taskService.SetAssignees(task.ID, owner.ID, []uint64{owner.ID})
	suite.Require().NoError(err)

	body := []byte(`{"assignee_ids": []}`)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1/assignees", body, owner, task.ID)
	suite.handler.SetAssignees(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response dto.TaskDTO
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(suite.T(), response.AssigneeIDs)
}

// TestSetAssignees_RejectsNonMember tests the assignee membership check
func (suite *TaskHandlerTestSuite) TestSetAssignees_RejectsNonMember() {
	owner := suite.createTestUser("idp|owner", "owner")
	outsider := suite.createTestUser("idp|outsider", "outsider")
	project, columns := suite.createTestProject(owner, "Board")

	task, err := suite.taskService.Create(project.ID, columns[0].ID, owner.ID, "Guarded")
	suite.Require().NoError(err)

	payload := map[string]interface{}{"assignee_ids": []uint64{outsider.ID}}
	body, _ := json.Marshal(payload)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1/assignees", body, owner, task.ID)
	suite.handler.SetAssignees(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var count int64
	suite.db.Model(&models.TaskAssignment{}).Count(&count)
	assert.Zero(suite.T(), count)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
