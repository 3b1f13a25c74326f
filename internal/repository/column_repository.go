package repository

import (
	"errors"

	"github.com/treysonbrown/planner-api/internal/constants"
	"github.com/treysonbrown/planner-api/internal/models"
	"gorm.io/gorm"
)

// GormColumnRepository is a GORM implementation of ColumnRepository
type GormColumnRepository struct {
	db *gorm.DB
}

// NewColumnRepository creates a new ColumnRepository
func NewColumnRepository(db *gorm.DB) ColumnRepository {
	return &GormColumnRepository{db: db}
}

// Create creates a new column
func (r *GormColumnRepository) Create(column *models.Column) error {
	return r.db.Create(column).Error
}

// FindByID finds a column by ID
func (r *GormColumnRepository) FindByID(id uint64) (*models.Column, error) {
	var column models.Column
	if err := r.db.First(&column, id).Error; err != nil {
		return nil, err
	}
	return &column, nil
}

// ListByProject lists a project's columns sorted ascending
func (r *GormColumnRepository) ListByProject(projectID uint64) ([]models.Column, error) {
	var columns []models.Column
	if err := r.db.Where("project_id = ?", projectID).
		Order("sort_order ASC").
		Find(&columns).Error; err != nil {
		return nil, err
	}
	return columns, nil
}

// NextSortOrder returns the append position for a new column: one step past
// the highest existing order, or a single step for an empty project.
func (r *GormColumnRepository) NextSortOrder(projectID uint64) (int, error) {
	var last models.Column
	err := r.db.Where("project_id = ?", projectID).
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

// UpdateSortOrders rewrites column sort orders in a single transaction
func (r *GormColumnRepository) UpdateSortOrders(orders []ColumnOrder) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, o := range orders {
			if err := tx.Model(&models.Column{}).
				Where("id = ?", o.ColumnID).
				Update("sort_order", o.SortOrder).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
