// Package domain contains the billable resource model. Resources are
// append-only: name, flavor and state are fixed at first sight.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Resource struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	ProjectID snowflake.ID `gorm:"not null;index" json:"project_id"`

	Name        string `gorm:"type:text;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// ResourceIdentifier is the immutable external object id, plaintext in
	// memory and sealed at rest; the keyed hash carries the unique index.
	ResourceIdentifier     string `gorm:"type:text;not null" json:"resource_identifier"`
	ResourceIdentifierHash string `gorm:"type:text;not null;uniqueIndex" json:"-"`

	FlavorName string            `gorm:"type:text" json:"flavor_name,omitempty"`
	State      string            `gorm:"type:text" json:"state,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Resource) TableName() string { return "resources" }

type Repository interface {
	// GetOrCreate looks the resource up by its external identifier and
	// creates it with the given defaults only when absent.
	GetOrCreate(ctx context.Context, db *gorm.DB, identifier string, defaults Resource) (*Resource, error)
}
