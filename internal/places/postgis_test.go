package places

import (
	"context"
	"net/url"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/angelmondragon/placeshare-backend/pkg/db/models"
	"github.com/angelmondragon/placeshare-backend/pkg/enums"
	"github.com/angelmondragon/placeshare-backend/pkg/migrate"
	"github.com/angelmondragon/placeshare-backend/pkg/pagination"
	"github.com/angelmondragon/placeshare-backend/pkg/types"
)

// openPostGIS returns a transaction on a migrated database; it is rolled
// back when the test ends.
func openPostGIS(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("PLACESHARE_DB_DSN")
	if dsn == "" {
		t.Skip("PLACESHARE_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrate.Run(context.Background(), sqlDB, "../../pkg/migrate/migrations", "up"))

	tx := conn.Begin()
	require.NoError(t, tx.Error)
	t.Cleanup(func() { tx.Rollback() })
	return tx
}

func insertPlace(t *testing.T, tx *gorm.DB, author uuid.UUID, name string, lat, lng float64) *models.Place {
	t.Helper()
	place := &models.Place{
		ID:          uuid.New(),
		AuthorID:    author,
		Name:        name,
		Description: name + " description",
		Tags:        pq.StringArray{"waterfront"},
		Category:    enums.PlaceCategoryViewpoint,
		Address:     name + " street",
		Location:    types.GeographyPoint{Lat: lat, Lng: lng},
		IsPublic:    true,
		Status:      enums.PlaceStatusPublished,
	}
	require.NoError(t, NewRepository(tx).Create(context.Background(), place))
	return place
}

func TestPostGISRadiusScenario(t *testing.T) {
	tx := openPostGIS(t)
	ctx := context.Background()
	repo := NewRepository(tx)

	author := &models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", PasswordHash: "x", FirstName: "Ana", LastName: "Lee"}
	require.NoError(t, tx.Create(author).Error)

	pier := insertPlace(t, tx, author.ID, "Pier", 40.7128, -74.0060)
	// roughly 5km north of the pier
	far := insertPlace(t, tx, author.ID, "Uptown", 40.7578, -74.0060)

	q := ParseListQuery(url.Values{"lat": {"40.7128"}, "lng": {"-74.0060"}, "radius": {"1"}, "sortBy": {"name"}}, nil, 10)
	rows, total, err := repo.List(ctx, q)
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, pier.ID, rows[0].ID)
	require.NotNil(t, rows[0].DistanceMeters)
	assert.InDelta(t, 0, *rows[0].DistanceMeters, 0.001)
	assert.Equal(t, "Ana", rows[0].AuthorFirstName)
	assert.Equal(t, pier.Location.Coordinates(), rows[0].Location.Coordinates())
	for _, row := range rows {
		assert.NotEqual(t, far.ID, row.ID)
	}
	assert.EqualValues(t, len(rows), total)

	q = ParseListQuery(url.Values{"lat": {"40.7578"}, "lng": {"-74.0060"}, "radius": {"0.001"}}, nil, 10)
	rows, _, err = repo.List(ctx, q)
	require.NoError(t, err)
	for _, row := range rows {
		assert.NotEqual(t, pier.ID, row.ID)
	}
}

func TestPostGISRadiusBoundaryIsInclusive(t *testing.T) {
	tx := openPostGIS(t)
	ctx := context.Background()
	repo := NewRepository(tx)

	author := &models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", PasswordHash: "x", FirstName: "Ana", LastName: "Lee"}
	require.NoError(t, tx.Create(author).Error)
	target := insertPlace(t, tx, author.ID, "Boundary", 10.0100, 20.0000)

	var meters float64
	require.NoError(t, tx.Raw(
		"SELECT ST_Distance(location, ST_SetSRID(ST_MakePoint(?, ?), 4326)::geography) FROM places WHERE id = ?",
		20.0, 10.0, target.ID,
	).Scan(&meters).Error)

	contains := func(radiusMeters float64) bool {
		q := ListQuery{
			Page:        pagination.Params{Page: 1, Limit: 100},
			Geo:         &GeoFilter{Lat: 10.0, Lng: 20.0, RadiusKm: radiusMeters / 1000},
			VisibleOnly: true,
		}
		rows, _, err := repo.List(ctx, q)
		require.NoError(t, err)
		for _, row := range rows {
			if row.ID == target.ID {
				return true
			}
		}
		return false
	}

	assert.True(t, contains(meters+1e-6), "a place at the radius is included")
	assert.False(t, contains(meters-0.01), "a place just past the radius is excluded")
}

func TestPostGISSearchAndTagFilters(t *testing.T) {
	tx := openPostGIS(t)
	ctx := context.Background()
	repo := NewRepository(tx)

	author := &models.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", PasswordHash: "x", FirstName: "Ana", LastName: "Lee"}
	require.NoError(t, tx.Create(author).Error)
	match := insertPlace(t, tx, author.ID, "Lighthouse "+uuid.NewString()[:8], 1, 1)
	hidden := insertPlace(t, tx, author.ID, "Lighthouse hidden", 1, 1)
	require.NoError(t, repo.UpdateFields(ctx, hidden.ID, map[string]any{"is_public": false}))

	q := ParseListQuery(url.Values{"search": {match.Name}, "tag": {"WATERFRONT"}, "author": {author.ID.String()}}, nil, 10)
	rows, total, err := repo.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, match.ID, rows[0].ID)
	assert.EqualValues(t, 1, total)
	assert.Nil(t, rows[0].DistanceMeters)
}
