package repository

import (
	"context"
	"errors"
	"time"

	resourcedomain "github.com/ratewatchlabs/ratewatch/internal/resource/domain"
	"github.com/ratewatchlabs/ratewatch/internal/secrets"
	"github.com/ratewatchlabs/ratewatch/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	box *secrets.Box
}

func Provide(box *secrets.Box) resourcedomain.Repository {
	return &repo{box: box}
}

func (r *repo) GetOrCreate(ctx context.Context, conn *gorm.DB, identifier string, defaults resourcedomain.Resource) (*resourcedomain.Resource, error) {
	hash := r.box.Digest(identifier)

	existing, err := r.findByHash(ctx, conn, hash)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.ResourceIdentifier = identifier
		return existing, nil
	}

	sealed, err := r.box.Seal(identifier)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	insertErr := conn.WithContext(ctx).Exec(
		`INSERT INTO resources (id, project_id, name, description, resource_identifier, resource_identifier_hash, flavor_name, state, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		defaults.ID,
		defaults.ProjectID,
		defaults.Name,
		defaults.Description,
		sealed,
		hash,
		defaults.FlavorName,
		defaults.State,
		defaults.Metadata,
		now,
		now,
	).Error
	if insertErr != nil {
		if db.IsDuplicateKeyErr(insertErr) {
			winner, err := r.findByHash(ctx, conn, hash)
			if err != nil {
				return nil, err
			}
			if winner == nil {
				return nil, insertErr
			}
			winner.ResourceIdentifier = identifier
			return winner, nil
		}
		return nil, insertErr
	}

	created := defaults
	created.ResourceIdentifier = identifier
	created.ResourceIdentifierHash = hash
	created.CreatedAt = now
	created.UpdatedAt = now
	return &created, nil
}

func (r *repo) findByHash(ctx context.Context, conn *gorm.DB, hash string) (*resourcedomain.Resource, error) {
	var resource resourcedomain.Resource
	err := conn.WithContext(ctx).
		Where("resource_identifier_hash = ?", hash).
		First(&resource).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &resource, nil
}
