package repository

import (
	"context"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	ratingdomain "github.com/ratewatchlabs/ratewatch/internal/rating/domain"
	"github.com/ratewatchlabs/ratewatch/pkg/db"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ratingdomain.Repository {
	return &repo{}
}

func (r *repo) Exists(ctx context.Context, conn *gorm.DB, beginAt, endAt time.Time, service string, resourceID snowflake.ID) (bool, error) {
	var count int64
	err := conn.WithContext(ctx).
		Model(&ratingdomain.Rating{}).
		Where("begin_at = ? AND end_at = ? AND service = ? AND resource_id = ?", beginAt, endAt, service, resourceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) Insert(ctx context.Context, conn *gorm.DB, rating *ratingdomain.Rating) (bool, error) {
	if rating.CreatedAt.IsZero() {
		rating.CreatedAt = time.Now().UTC()
	}
	err := conn.WithContext(ctx).Create(rating).Error
	if err != nil {
		// Another worker stored the same window first; the existing
		// row is the same fact, so this is a clean dedup.
		if db.IsDuplicateKeyErr(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *repo) SumByDay(ctx context.Context, conn *gorm.DB, cloudID snowflake.ID) ([]ratingdomain.DailyCost, error) {
	rows, err := conn.WithContext(ctx).Raw(
		`SELECT r.end_at, r.rating
		 FROM ratings r
		 JOIN resources res ON res.id = r.resource_id
		 JOIN projects p ON p.id = res.project_id
		 WHERE p.cloud_id = ?`,
		cloudID,
	).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// Day bucketing stays in Go so the query is identical across
	// dialects. A window counts toward the day it ended.
	totals := make(map[time.Time]float64)
	for rows.Next() {
		var (
			endAt  time.Time
			rating float64
		)
		if err := rows.Scan(&endAt, &rating); err != nil {
			return nil, err
		}
		day := endAt.UTC().Truncate(24 * time.Hour)
		totals[day] += rating
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	costs := make([]ratingdomain.DailyCost, 0, len(totals))
	for day, total := range totals {
		costs = append(costs, ratingdomain.DailyCost{Day: day, Rating: total})
	}
	sort.Slice(costs, func(i, j int) bool { return costs[i].Day.Before(costs[j].Day) })
	return costs, nil
}
