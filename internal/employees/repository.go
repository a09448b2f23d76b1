package employees

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

// EmployeeRow is the joined identity/profile projection used by the
// roster read paths.
type EmployeeRow struct {
	ID          uuid.UUID
	Name        string
	Email       string
	Role        string
	Phone       *string
	IsActive    bool
	LastLoginAt *time.Time
	CreatedAt   time.Time
}

// Repository provides identity and profile persistence over GORM. The
// auth service shares it for credential lookups.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindIdentityByEmail loads the credential row for a login attempt.
func (r *Repository) FindIdentityByEmail(ctx context.Context, email string) (*models.Identity, error) {
	var row models.Identity
	if err := r.db.WithContext(ctx).First(&row, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// GetProfile loads the profile attached to an identity.
func (r *Repository) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var row models.Profile
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// UpdateLastLogin stamps a successful authentication.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Identity{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// List pages through the joined roster ordered by identity creation.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]EmployeeRow, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Table("identities").
		Select(`identities.id, profiles.name, identities.email, profiles.role,
profiles.phone, identities.is_active, identities.last_login_at, identities.created_at`).
		Joins("JOIN profiles ON profiles.id = identities.id").
		Order("identities.created_at ASC, identities.id ASC").
		Limit(pagination.LimitWithBuffer(params.Limit))

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(identities.created_at > ?) OR (identities.created_at = ? AND identities.id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []EmployeeRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

// Get loads one roster entry.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*EmployeeRow, error) {
	var row EmployeeRow
	err := r.db.WithContext(ctx).
		Table("identities").
		Select(`identities.id, profiles.name, identities.email, profiles.role,
profiles.phone, identities.is_active, identities.last_login_at, identities.created_at`).
		Joins("JOIN profiles ON profiles.id = identities.id").
		Where("identities.id = ?", id).
		Take(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
