package domain

import (
	"context"
	"errors"
)

type CreateCloudRequest struct {
	AccountID          string `json:"account_id"`
	Name               string `json:"name"`
	RegionName         string `json:"region_name"`
	Interface          string `json:"interface"`
	IdentityAPIVersion string `json:"identity_api_version"`
	AuthURL            string `json:"auth_url"`
	AuthUsername       string `json:"auth_username"`
	AuthPassword       string `json:"auth_password"`
	AuthProjectID      string `json:"auth_project_id"`
	AuthProjectName    string `json:"auth_project_name"`
	AuthUserDomainName string `json:"auth_user_domain_name"`
}

type Service interface {
	Create(ctx context.Context, req CreateCloudRequest) (*Cloud, error)
	List(ctx context.Context) ([]Cloud, error)
	Get(ctx context.Context, id string) (*Cloud, error)
	Delete(ctx context.Context, id string) error

	// TestAuth forces an identity round-trip for the cloud and reports the
	// failure, if any.
	TestAuth(ctx context.Context, id string) error
}

var (
	ErrInvalidCloud    = errors.New("invalid_cloud")
	ErrCloudNotFound   = errors.New("cloud_not_found")
	ErrInvalidName     = errors.New("invalid_name")
	ErrInvalidRegion   = errors.New("invalid_region")
	ErrInvalidAuthURL  = errors.New("invalid_auth_url")
	ErrInvalidAccount  = errors.New("invalid_account")
	ErrMissingCredents = errors.New("missing_credentials")
)
