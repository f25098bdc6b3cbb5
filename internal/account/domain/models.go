// Package domain contains the operator account model the collector resolves
// clouds against.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Account struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Email     string       `gorm:"type:text;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }

type Repository interface {
	List(ctx context.Context, db *gorm.DB) ([]Account, error)

	// FindByRef resolves an account by numeric id, email, or name.
	FindByRef(ctx context.Context, db *gorm.DB, ref string) ([]Account, error)
}

var ErrAccountNotFound = errors.New("account_not_found")
