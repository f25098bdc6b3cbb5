// Package domain contains the cloud account configuration model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Cloud is one authenticated OpenStack account. Credential and token fields
// are plaintext in memory; the repository seals them at the storage boundary.
type Cloud struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	AccountID snowflake.ID `gorm:"not null;index" json:"account_id"`

	Name               string `gorm:"type:text;not null;uniqueIndex" json:"name"`
	RegionName         string `gorm:"type:text;not null;index" json:"region_name"`
	Interface          string `gorm:"type:text;not null;default:public" json:"interface"`
	IdentityAPIVersion string `gorm:"column:identity_api_version;type:text;not null;default:3" json:"identity_api_version"`

	AuthURL            string `gorm:"column:auth_url;type:text;not null" json:"auth_url"`
	AuthUsername       string `gorm:"type:text;not null" json:"-"`
	AuthPassword       string `gorm:"type:text;not null" json:"-"`
	AuthProjectID      string `gorm:"column:auth_project_id;type:text;not null" json:"-"`
	AuthProjectName    string `gorm:"type:text" json:"auth_project_name,omitempty"`
	AuthUserDomainName string `gorm:"type:text;not null;default:Default" json:"auth_user_domain_name"`

	AccessToken          string     `gorm:"type:text" json:"-"`
	AccessTokenExpiresAt *time.Time `json:"-"`
	RatingEndpoint       string     `gorm:"type:text" json:"rating_endpoint,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Cloud) TableName() string { return "clouds" }

// HasValidToken reports whether the cached token can be reused: present, with
// an expiry strictly in the future. A token at or past its recorded expiry is
// treated as absent.
func (c *Cloud) HasValidToken(now time.Time) bool {
	return c.AccessToken != "" &&
		c.AccessTokenExpiresAt != nil &&
		c.AccessTokenExpiresAt.After(now)
}
