package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	projectdomain "github.com/ratewatchlabs/ratewatch/internal/project/domain"
	ratingdomain "github.com/ratewatchlabs/ratewatch/internal/rating/domain"
	resourcedomain "github.com/ratewatchlabs/ratewatch/internal/resource/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&projectdomain.Project{},
		&resourcedomain.Resource{},
		&ratingdomain.Rating{},
	))
	return db
}

func window(hour int) (time.Time, time.Time) {
	begin := time.Date(2025, 1, 1, hour, 0, 0, 0, time.UTC)
	return begin, begin.Add(time.Hour)
}

func TestInsert_DuplicateTupleIsNotAnError(t *testing.T) {
	db := newTestDB(t, "rating_repo_dup")
	repo := Provide()
	ctx := context.Background()

	begin, end := window(0)

	inserted, err := repo.Insert(ctx, db, &ratingdomain.Rating{
		ID: 1, ResourceID: 100, Rating: 10, Volume: 1, BeginAt: begin, EndAt: end, Service: "compute",
	})
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same dedup tuple, different surrogate id: the unique index rejects
	// it and the repository reports a clean dedup.
	inserted, err = repo.Insert(ctx, db, &ratingdomain.Rating{
		ID: 2, ResourceID: 100, Rating: 10, Volume: 1, BeginAt: begin, EndAt: end, Service: "compute",
	})
	require.NoError(t, err)
	assert.False(t, inserted)

	var count int64
	require.NoError(t, db.Model(&ratingdomain.Rating{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestInsert_TupleComponentsAreDiscriminating(t *testing.T) {
	db := newTestDB(t, "rating_repo_tuple")
	repo := Provide()
	ctx := context.Background()

	begin, end := window(0)
	base := ratingdomain.Rating{ResourceID: 100, Rating: 10, Volume: 1, BeginAt: begin, EndAt: end, Service: "compute"}

	variants := []ratingdomain.Rating{base, base, base}
	variants[0].Service = "storage"
	variants[1].ResourceID = 200
	variants[2].BeginAt, variants[2].EndAt = window(1)

	first := base
	first.ID = 1
	inserted, err := repo.Insert(ctx, db, &first)
	require.NoError(t, err)
	require.True(t, inserted)

	for i := range variants {
		variants[i].ID = snowflake.ID(10 + i)
		inserted, err := repo.Insert(ctx, db, &variants[i])
		require.NoError(t, err)
		assert.True(t, inserted)
	}
}

func TestExists(t *testing.T) {
	db := newTestDB(t, "rating_repo_exists")
	repo := Provide()
	ctx := context.Background()

	begin, end := window(0)

	exists, err := repo.Exists(ctx, db, begin, end, "compute", 100)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Insert(ctx, db, &ratingdomain.Rating{
		ID: 1, ResourceID: 100, Rating: 10, Volume: 1, BeginAt: begin, EndAt: end, Service: "compute",
	})
	require.NoError(t, err)

	exists, err = repo.Exists(ctx, db, begin, end, "compute", 100)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, db, begin, end, "storage", 100)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSumByDay(t *testing.T) {
	db := newTestDB(t, "rating_repo_sum")
	repo := Provide()
	ctx := context.Background()

	// One cloud with one project and one resource, plus a second cloud
	// whose rows must not leak into the report.
	require.NoError(t, db.Exec(
		`INSERT INTO projects (id, cloud_id, name, project_identifier, project_identifier_hash, created_at, updated_at)
		 VALUES (1, 42, 'proj-1', 'x', 'h1', ?, ?), (2, 43, 'proj-2', 'y', 'h2', ?, ?)`,
		time.Now(), time.Now(), time.Now(), time.Now(),
	).Error)
	require.NoError(t, db.Exec(
		`INSERT INTO resources (id, project_id, name, resource_identifier, resource_identifier_hash, created_at, updated_at)
		 VALUES (10, 1, 'res-1', 'x', 'rh1', ?, ?), (20, 2, 'res-2', 'y', 'rh2', ?, ?)`,
		time.Now(), time.Now(), time.Now(), time.Now(),
	).Error)

	day1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	rows := []ratingdomain.Rating{
		{ID: 1, ResourceID: 10, Rating: 10, Volume: 1, BeginAt: day1, EndAt: day1.Add(time.Hour), Service: "compute"},
		{ID: 2, ResourceID: 10, Rating: 5, Volume: 1, BeginAt: day1.Add(time.Hour), EndAt: day1.Add(2 * time.Hour), Service: "compute"},
		{ID: 3, ResourceID: 10, Rating: 7, Volume: 1, BeginAt: day2, EndAt: day2.Add(time.Hour), Service: "compute"},
		// Other cloud.
		{ID: 4, ResourceID: 20, Rating: 99, Volume: 1, BeginAt: day1, EndAt: day1.Add(time.Hour), Service: "compute"},
	}
	for i := range rows {
		inserted, err := repo.Insert(ctx, db, &rows[i])
		require.NoError(t, err)
		require.True(t, inserted)
	}

	costs, err := repo.SumByDay(ctx, db, 42)
	require.NoError(t, err)

	require.Len(t, costs, 2)
	assert.True(t, costs[0].Day.Before(costs[1].Day))
	assert.Equal(t, 15.0, costs[0].Rating)
	assert.Equal(t, 7.0, costs[1].Rating)
}
