package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"github.com/ratewatchlabs/ratewatch/internal/secrets"
	"gorm.io/gorm"
)

type repo struct {
	box *secrets.Box
}

func Provide(box *secrets.Box) clouddomain.Repository {
	return &repo{box: box}
}

const cloudColumns = `id, account_id, name, region_name, interface, identity_api_version,
	 auth_url, auth_username, auth_password, auth_project_id, auth_project_name,
	 auth_user_domain_name, access_token, access_token_expires_at, rating_endpoint,
	 created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, cloud *clouddomain.Cloud) error {
	sealed, err := r.seal(cloud)
	if err != nil {
		return err
	}

	var expiresAt any
	if cloud.AccessTokenExpiresAt != nil {
		expiresAt = *cloud.AccessTokenExpiresAt
	}

	return db.WithContext(ctx).Exec(
		`INSERT INTO clouds (`+cloudColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cloud.ID,
		cloud.AccountID,
		cloud.Name,
		cloud.RegionName,
		cloud.Interface,
		cloud.IdentityAPIVersion,
		cloud.AuthURL,
		sealed.AuthUsername,
		sealed.AuthPassword,
		sealed.AuthProjectID,
		cloud.AuthProjectName,
		cloud.AuthUserDomainName,
		sealed.AccessToken,
		expiresAt,
		cloud.RatingEndpoint,
		cloud.CreatedAt,
		cloud.UpdatedAt,
	).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Exec(`DELETE FROM clouds WHERE id = ?`, id).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*clouddomain.Cloud, error) {
	var cloud clouddomain.Cloud
	err := db.WithContext(ctx).Raw(
		`SELECT `+cloudColumns+` FROM clouds WHERE id = ?`, id,
	).Scan(&cloud).Error
	if err != nil {
		return nil, err
	}
	if cloud.ID == 0 {
		return nil, nil
	}
	if err := r.open(&cloud); err != nil {
		return nil, err
	}
	return &cloud, nil
}

func (r *repo) FindByAccount(ctx context.Context, db *gorm.DB, accountID snowflake.ID) ([]clouddomain.Cloud, error) {
	var clouds []clouddomain.Cloud
	err := db.WithContext(ctx).Raw(
		`SELECT `+cloudColumns+` FROM clouds WHERE account_id = ? ORDER BY created_at ASC`, accountID,
	).Scan(&clouds).Error
	if err != nil {
		return nil, err
	}
	for i := range clouds {
		if err := r.open(&clouds[i]); err != nil {
			return nil, err
		}
	}
	return clouds, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB) ([]clouddomain.Cloud, error) {
	var clouds []clouddomain.Cloud
	err := db.WithContext(ctx).Raw(
		`SELECT ` + cloudColumns + ` FROM clouds ORDER BY created_at ASC`,
	).Scan(&clouds).Error
	if err != nil {
		return nil, err
	}
	for i := range clouds {
		if err := r.open(&clouds[i]); err != nil {
			return nil, err
		}
	}
	return clouds, nil
}

func (r *repo) UpdateTokenState(ctx context.Context, db *gorm.DB, id snowflake.ID, token string, expiresAt time.Time, endpoint string) error {
	sealedToken, err := r.box.Seal(token)
	if err != nil {
		return err
	}

	return db.WithContext(ctx).Exec(
		`UPDATE clouds
		 SET access_token = ?, access_token_expires_at = ?, rating_endpoint = ?, updated_at = ?
		 WHERE id = ?`,
		sealedToken,
		expiresAt,
		endpoint,
		time.Now().UTC(),
		id,
	).Error
}

type sealedFields struct {
	AuthUsername  string
	AuthPassword  string
	AuthProjectID string
	AccessToken   string
}

func (r *repo) seal(cloud *clouddomain.Cloud) (sealedFields, error) {
	var out sealedFields
	var err error

	if out.AuthUsername, err = r.box.Seal(cloud.AuthUsername); err != nil {
		return out, err
	}
	if out.AuthPassword, err = r.box.Seal(cloud.AuthPassword); err != nil {
		return out, err
	}
	if out.AuthProjectID, err = r.box.Seal(cloud.AuthProjectID); err != nil {
		return out, err
	}
	if cloud.AccessToken != "" {
		if out.AccessToken, err = r.box.Seal(cloud.AccessToken); err != nil {
			return out, err
		}
	}
	return out, nil
}

func (r *repo) open(cloud *clouddomain.Cloud) error {
	var err error

	if cloud.AuthUsername, err = r.box.Open(cloud.AuthUsername); err != nil {
		return err
	}
	if cloud.AuthPassword, err = r.box.Open(cloud.AuthPassword); err != nil {
		return err
	}
	if cloud.AuthProjectID, err = r.box.Open(cloud.AuthProjectID); err != nil {
		return err
	}
	if cloud.AccessToken != "" {
		if cloud.AccessToken, err = r.box.Open(cloud.AccessToken); err != nil {
			return err
		}
	}
	return nil
}
