package repository

import (
	"context"

	"github.com/ratewatchlabs/ratewatch/pkg/db/option"
)

// Repository is a generic gorm-backed store for simple entity access.
type Repository[T any] interface {
	Find(ctx context.Context, query *T, opts ...option.QueryOption) ([]*T, error)
	FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error)
	Create(ctx context.Context, resource *T) error
	Delete(ctx context.Context, resourceID string) error
	Count(ctx context.Context, query *T) (int64, error)
}
