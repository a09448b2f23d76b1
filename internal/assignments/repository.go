package assignments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// Repository provides assignment persistence over GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, row *models.Assignment) (*models.Assignment, error) {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

// Delete removes the grant for one (user, kind, resource) triple.
func (r *Repository) Delete(ctx context.Context, userID uuid.UUID, kind enums.AssignmentKind, resourceID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND resource_id = ?", userID, kind, resourceID).
		Delete(&models.Assignment{})
	return result.RowsAffected, result.Error
}

// ListForUser returns every grant a user holds, oldest first.
func (r *Repository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Assignment, error) {
	var rows []models.Assignment
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Exists reports whether the triple is already granted.
func (r *Repository) Exists(ctx context.Context, userID uuid.UUID, kind enums.AssignmentKind, resourceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("user_id = ? AND kind = ? AND resource_id = ?", userID, kind, resourceID).
		Count(&count).Error
	return count > 0, err
}
