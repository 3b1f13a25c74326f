package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/treysonbrown/planner-api/internal/constants"
	"github.com/treysonbrown/planner-api/internal/models"
	"github.com/treysonbrown/planner-api/internal/repository"
)

var ErrInvalidOrderPayload = errors.New("invalid column order payload")

// ColumnService handles column creation and reordering.
type ColumnService struct {
	columnRepo  repository.ColumnRepository
	projectRepo repository.ProjectRepository
}

// NewColumnService creates a new ColumnService.
func NewColumnService(columnRepo repository.ColumnRepository, projectRepo repository.ProjectRepository) *ColumnService {
	return &ColumnService{
		columnRepo:  columnRepo,
		projectRepo: projectRepo,
	}
}

// Create appends a column to the project.
func (s *ColumnService) Create(projectID, actorID uint64, title string) (*models.Column, error) {
	if _, err := ensureProjectMember(s.projectRepo, projectID, actorID); err != nil {
		return nil, err
	}

	order, err := s.columnRepo.NextSortOrder(projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute column order: %w", err)
	}

	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		trimmed = constants.DefaultColumnTitle
	}

	column := &models.Column{
		ProjectID: projectID,
		Title:     trimmed,
		SortOrder: order,
	}
	if err := s.columnRepo.Create(column); err != nil {
		return nil, fmt.Errorf("failed to create column: %w", err)
	}

	return column, nil
}

// Reorder rewrites the project's column orders to match the supplied
// sequence. The payload must be an exact permutation of the project's
// current column ids; anything else leaves existing orders untouched.
func (s *ColumnService) Reorder(projectID, actorID uint64, orderedColumnIDs []uint64) error {
	if _, err := ensureProjectMember(s.projectRepo, projectID, actorID); err != nil {
		return err
	}

	existing, err := s.columnRepo.ListByProject(projectID)
	if err != nil {
		return fmt.Errorf("failed to list columns: %w", err)
	}

	if len(existing) != len(orderedColumnIDs) {
		return ErrInvalidOrderPayload
	}

	incoming := make(map[uint64]struct{}, len(orderedColumnIDs))
	for _, id := range orderedColumnIDs {
		incoming[id] = struct{}{}
	}
	if len(incoming) != len(orderedColumnIDs) {
		return ErrInvalidOrderPayload
	}
	for _, column := range existing {
		if _, ok := incoming[column.ID]; !ok {
			return ErrInvalidOrderPayload
		}
	}

	orders := make([]repository.ColumnOrder, len(orderedColumnIDs))
	for i, id := range orderedColumnIDs {
		orders[i] = repository.ColumnOrder{
			ColumnID:  id,
			SortOrder: (i + 1) * constants.OrderStep,
		}
	}

	if err := s.columnRepo.UpdateSortOrders(orders); err != nil {
		return fmt.Errorf("failed to reorder columns: %w", err)
	}

	return nil
}
