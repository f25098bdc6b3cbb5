package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	ratingdomain "github.com/ratewatchlabs/ratewatch/internal/rating/domain"
	"github.com/ratewatchlabs/ratewatch/pkg/db/pagination"
	"github.com/ratewatchlabs/ratewatch/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ratingRepoFake struct {
	daily []ratingdomain.DailyCost
}

func (f *ratingRepoFake) Exists(context.Context, *gorm.DB, time.Time, time.Time, string, snowflake.ID) (bool, error) {
	return false, nil
}

func (f *ratingRepoFake) Insert(context.Context, *gorm.DB, *ratingdomain.Rating) (bool, error) {
	return true, nil
}

func (f *ratingRepoFake) SumByDay(context.Context, *gorm.DB, snowflake.ID) ([]ratingdomain.DailyCost, error) {
	return f.daily, nil
}

func TestCostByDay_AppliesConversionAndTax(t *testing.T) {
	day1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	svc := NewService(ServiceParam{
		Log:    zap.NewNop(),
		Config: config.Config{ConvertDivisor: 55.5, TaxMultiplier: 1.20},
		RatingRepo: &ratingRepoFake{daily: []ratingdomain.DailyCost{
			{Day: day1, Rating: 111.0},
			{Day: day2, Rating: 55.5},
		}},
	})

	costs, err := svc.CostByDay(context.Background(), 42)
	require.NoError(t, err)

	require.Len(t, costs, 2)
	assert.Equal(t, "2025-01-01", costs[0].Date)
	assert.InDelta(t, 2.4, costs[0].Total, 1e-9)
	assert.Equal(t, "2025-01-02", costs[1].Date)
	assert.InDelta(t, 1.2, costs[1].Total, 1e-9)
}

func TestListByResource_Pagination(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:rating_service_list?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&ratingdomain.Rating{}))

	begin := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, db.Create(&ratingdomain.Rating{
			ID:         snowflake.ID(i + 1),
			ResourceID: 10,
			Rating:     float64(i),
			Volume:     1,
			BeginAt:    begin.Add(time.Duration(i) * time.Hour),
			EndAt:      begin.Add(time.Duration(i+1) * time.Hour),
			Service:    "compute",
		}).Error)
	}
	// A row for another resource must never appear in the page.
	require.NoError(t, db.Create(&ratingdomain.Rating{
		ID: 6, ResourceID: 20, Rating: 1, Volume: 1,
		BeginAt: begin, EndAt: begin.Add(time.Hour), Service: "compute",
	}).Error)

	svc := NewService(ServiceParam{
		DB:         db,
		Log:        zap.NewNop(),
		Config:     config.Config{ConvertDivisor: 55.5, TaxMultiplier: 1.20},
		RatingRepo: &ratingRepoFake{},
		Store:      repository.ProvideStore[ratingdomain.Rating](db),
	})

	first, info, err := svc.ListByResource(context.Background(), 10, pagination.Pagination{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.EqualValues(t, 1, first[0].ID)
	assert.EqualValues(t, 2, first[1].ID)
	require.NotNil(t, info)
	assert.True(t, info.HasMore)
	require.NotEmpty(t, info.NextPageToken)

	second, info, err := svc.ListByResource(context.Background(), 10, pagination.Pagination{PageSize: 2, PageToken: info.NextPageToken})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.EqualValues(t, 3, second[0].ID)
	assert.EqualValues(t, 4, second[1].ID)
	assert.True(t, info.HasMore)

	last, info, err := svc.ListByResource(context.Background(), 10, pagination.Pagination{PageSize: 2, PageToken: info.NextPageToken})
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.EqualValues(t, 5, last[0].ID)
	assert.False(t, info.HasMore)
}

func TestListByResource_BadPageToken(t *testing.T) {
	svc := NewService(ServiceParam{
		Log:        zap.NewNop(),
		Config:     config.Config{ConvertDivisor: 55.5, TaxMultiplier: 1.20},
		RatingRepo: &ratingRepoFake{},
	})

	_, _, err := svc.ListByResource(context.Background(), 10, pagination.Pagination{PageToken: "not a cursor"})
	require.Error(t, err)
}

func TestCostByDay_EmptyStore(t *testing.T) {
	svc := NewService(ServiceParam{
		Log:        zap.NewNop(),
		Config:     config.Config{ConvertDivisor: 55.5, TaxMultiplier: 1.20},
		RatingRepo: &ratingRepoFake{},
	})

	costs, err := svc.CostByDay(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, costs)
}
