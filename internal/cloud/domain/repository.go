package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, cloud *Cloud) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Cloud, error)
	FindByAccount(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]Cloud, error)
	List(ctx context.Context, db *gorm.DB) ([]Cloud, error)

	// UpdateTokenState persists token, expiry and the resolved rating
	// endpoint in a single atomic update. Concurrent refreshers race; the
	// last writer wins and all tokens are interchangeable until expiry.
	UpdateTokenState(ctx context.Context, db *gorm.DB, id snowflake.ID, token string, expiresAt time.Time, endpoint string) error
}
