package properties

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/terra-cloud/terra-backend/pkg/db/models"
	"github.com/terra-cloud/terra-backend/pkg/pagination"
)

func setupPropertiesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS properties (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  address_line1 TEXT NOT NULL DEFAULT '',
  address_line2 TEXT,
  city TEXT NOT NULL DEFAULT '',
  state TEXT NOT NULL DEFAULT '',
  postal_code TEXT NOT NULL DEFAULT '',
  lat REAL NOT NULL DEFAULT 0,
  lng REAL NOT NULL DEFAULT 0,
  acreage TEXT NOT NULL DEFAULT '0',
  notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(`DELETE FROM properties`).Error)
	return db
}

func seedProperty(t *testing.T, db *gorm.DB, name string, createdAt time.Time) *models.Property {
	t.Helper()
	row := &models.Property{
		ID:        uuid.New(),
		Name:      name,
		City:      "Boise",
		State:     "ID",
		Acreage:   decimal.NewFromFloat(2.5),
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	require.NoError(t, db.Create(row).Error)
	return row
}

func TestRepositoryListPaginates(t *testing.T) {
	db := setupPropertiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var seeded []*models.Property
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedProperty(t, db, fmt.Sprintf("Site %d", i), base.Add(time.Duration(i)*time.Minute)))
	}

	first, next, err := repo.List(ctx, nil, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first, 3)
	require.NotNil(t, next)
	assert.Equal(t, seeded[0].ID, first[0].ID)

	second, last, err := repo.List(ctx, nil, pagination.Params{
		Limit:  3,
		Cursor: pagination.EncodeCursor(*next),
	})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Nil(t, last)
	assert.Equal(t, seeded[3].ID, second[0].ID)
	assert.Equal(t, seeded[4].ID, second[1].ID)
}

func TestRepositoryListHonorsIDFilter(t *testing.T) {
	db := setupPropertiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	visible := seedProperty(t, db, "Visible", base)
	seedProperty(t, db, "Hidden", base.Add(time.Minute))

	rows, _, err := repo.List(ctx, []uuid.UUID{visible.ID}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, visible.ID, rows[0].ID)

	empty, _, err := repo.List(ctx, []uuid.UUID{}, pagination.Params{})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRepositoryCRUDRoundTrip(t *testing.T) {
	db := setupPropertiesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	row := seedProperty(t, db, "Roundtrip", time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC))

	loaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Roundtrip", loaded.Name)
	assert.True(t, loaded.Acreage.Equal(decimal.NewFromFloat(2.5)))

	loaded.Name = "Renamed"
	_, err = repo.Update(ctx, loaded)
	require.NoError(t, err)

	reloaded, err := repo.FindByID(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", reloaded.Name)

	require.NoError(t, repo.Delete(ctx, row.ID))
	_, err = repo.FindByID(ctx, row.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
