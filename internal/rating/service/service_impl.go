package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	ratingdomain "github.com/ratewatchlabs/ratewatch/internal/rating/domain"
	"github.com/ratewatchlabs/ratewatch/pkg/db/option"
	"github.com/ratewatchlabs/ratewatch/pkg/db/pagination"
	"github.com/ratewatchlabs/ratewatch/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Config     config.Config
	RatingRepo ratingdomain.Repository
	Store      repository.Repository[ratingdomain.Rating]
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	convertDivisor float64
	taxMultiplier  float64
	ratingrepo     ratingdomain.Repository
	store          repository.Repository[ratingdomain.Rating]
}

func NewService(p ServiceParam) ratingdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("rating.service"),

		convertDivisor: p.Config.ConvertDivisor,
		taxMultiplier:  p.Config.TaxMultiplier,
		ratingrepo:     p.RatingRepo,
		store:          p.Store,
	}
}

func (s *Service) CostByDay(ctx context.Context, cloudID snowflake.ID) ([]ratingdomain.DayCost, error) {
	daily, err := s.ratingrepo.SumByDay(ctx, s.db, cloudID)
	if err != nil {
		return nil, err
	}

	costs := make([]ratingdomain.DayCost, 0, len(daily))
	for _, d := range daily {
		costs = append(costs, ratingdomain.DayCost{
			Date:  d.Day.Format("2006-01-02"),
			Total: d.Rating / s.convertDivisor * s.taxMultiplier,
		})
	}
	return costs, nil
}

func (s *Service) ListByResource(ctx context.Context, resourceID snowflake.ID, page pagination.Pagination) ([]*ratingdomain.Rating, *pagination.PageInfo, error) {
	limit := page.PageSize
	if limit <= 0 {
		limit = 50
	}

	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, nil, err
		}
		if _, err := snowflake.ParseString(cursor.ID); err != nil {
			return nil, nil, err
		}
	}

	// The cursor filter and window ride on the query itself.
	window, err := s.store.Find(ctx, &ratingdomain.Rating{ResourceID: resourceID},
		option.ApplyPagination(pagination.Pagination{
			PageToken: page.PageToken,
			PageSize:  limit,
		}),
	)
	if err != nil {
		return nil, nil, err
	}

	info := pagination.BuildCursorPageInfo(window, limit, func(r *ratingdomain.Rating) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{ID: r.ID.String()})
		if err != nil {
			return ""
		}
		return token
	})

	if len(window) > limit {
		window = window[:limit]
	}
	return window, info, nil
}
