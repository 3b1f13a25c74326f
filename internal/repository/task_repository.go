package repository

import (
	"errors"

	"github.com/treysonbrown/planner-api/internal/constants"
	"github.com/treysonbrown/planner-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db

	for _, p := range preload {
		if p == "Assignments" {
			query = query.Preload("Assignments", func(db *gorm.DB) *gorm.DB {
				return db.Order("task_assignments.id ASC")
			})
			continue
		}
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// ListByProject lists a project's tasks sorted ascending. Assignments come
// back ordered by insertion so the assignee list keeps its stored order.
func (r *GormTaskRepository) ListByProject(projectID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.Where("project_id = ?", projectID).
		Order("sort_order ASC").
		Preload("Assignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("task_assignments.id ASC")
		}).
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// NextSortOrder returns the append position for a task in a column: one step
// past the highest existing order, or a single step for an empty column.
func (r *GormTaskRepository) NextSortOrder(columnID uint64) (int, error) {
	var last models.Task
	err := r.db.Where("column_id = ?", columnID).
		Order("sort_order DESC").
		First(&last).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return constants.OrderStep, nil
	}
	if err != nil {
		return 0, err
	}
	return last.SortOrder + constants.OrderStep, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Save(task).Error
}

// Delete removes a task and its assignments
func (r *GormTaskRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Task{}, id).Error
	})
}

// ReplaceAssignments swaps a task's assignee set. Rows are inserted one at a
// time so autoincrement ids preserve the caller's ordering.
func (r *GormTaskRepository) ReplaceAssignments(taskID uint64, userIDs []uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).Delete(&models.TaskAssignment{}).Error; err != nil {
			return err
		}

		for _, userID := range userIDs {
			assignment := models.TaskAssignment{
				TaskID: taskID,
				UserID: userID,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}

		return nil
	})
}
