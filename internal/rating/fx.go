package rating

import (
	ratingdomain "github.com/ratewatchlabs/ratewatch/internal/rating/domain"
	"github.com/ratewatchlabs/ratewatch/internal/rating/repository"
	"github.com/ratewatchlabs/ratewatch/internal/rating/service"
	sharedrepo "github.com/ratewatchlabs/ratewatch/pkg/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("rating.service",
	fx.Provide(repository.Provide),
	fx.Provide(sharedrepo.ProvideStore[ratingdomain.Rating]),
	fx.Provide(service.NewService),
)
