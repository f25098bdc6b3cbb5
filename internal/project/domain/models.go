// Package domain contains the OpenStack project model. Projects are
// append-only: created at first sight, never updated afterwards.
package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Project struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	CloudID snowflake.ID `gorm:"not null;index" json:"cloud_id"`

	Name        string `gorm:"type:text;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`

	// ProjectIdentifier is the immutable external tenant id, plaintext in
	// memory and sealed at rest. The keyed hash column carries the unique
	// index so get-or-create can look the row up deterministically.
	ProjectIdentifier     string `gorm:"type:text;not null" json:"project_identifier"`
	ProjectIdentifierHash string `gorm:"type:text;not null;uniqueIndex" json:"-"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Project) TableName() string { return "projects" }

type Repository interface {
	// GetOrCreate looks the project up by its external identifier and
	// creates it with the given defaults only when absent. Losing a create
	// race resolves to the winner's row.
	GetOrCreate(ctx context.Context, db *gorm.DB, identifier string, defaults Project) (*Project, error)
}
