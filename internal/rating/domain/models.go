// Package domain contains the rating fact model. A rating is one priced
// usage window for one resource, and it is immutable once stored.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/ratewatchlabs/ratewatch/pkg/db/pagination"
	"gorm.io/gorm"
)

type Rating struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	ResourceID snowflake.ID `gorm:"not null;uniqueIndex:idx_ratings_dedup,priority:4" json:"resource_id"`

	Rating float64 `gorm:"not null" json:"rating"`
	Volume float64 `gorm:"not null" json:"volume"`

	BeginAt time.Time `gorm:"not null;uniqueIndex:idx_ratings_dedup,priority:1" json:"begin_at"`
	EndAt   time.Time `gorm:"not null;uniqueIndex:idx_ratings_dedup,priority:2;index" json:"end_at"`
	Service string    `gorm:"type:text;not null;uniqueIndex:idx_ratings_dedup,priority:3" json:"service"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Rating) TableName() string { return "ratings" }

// DailyCost is one calendar day's raw rating total for a cloud, before
// any currency conversion.
type DailyCost struct {
	Day    time.Time
	Rating float64
}

type Repository interface {
	// Exists reports whether a rating with the same dedup tuple is
	// already stored.
	Exists(ctx context.Context, db *gorm.DB, beginAt, endAt time.Time, service string, resourceID snowflake.ID) (bool, error)

	// Insert stores the rating. A duplicate-key collision is not an
	// error: it returns inserted=false and the row already present wins.
	Insert(ctx context.Context, db *gorm.DB, rating *Rating) (inserted bool, err error)

	// SumByDay totals ratings per calendar day of the window end, for
	// every resource belonging to the given cloud, in ascending day order.
	SumByDay(ctx context.Context, db *gorm.DB, cloudID snowflake.ID) ([]DailyCost, error)
}

// DayCost is one priced calendar day as served to API consumers.
type DayCost struct {
	Date  string  `json:"date"`
	Total float64 `json:"total"`
}

type Service interface {
	// CostByDay returns the converted, tax-inclusive cost per calendar
	// day for one cloud, oldest day first.
	CostByDay(ctx context.Context, cloudID snowflake.ID) ([]DayCost, error)

	// ListByResource pages through a resource's raw rating rows in id
	// order, newest last.
	ListByResource(ctx context.Context, resourceID snowflake.ID, page pagination.Pagination) ([]*Rating, *pagination.PageInfo, error)
}
