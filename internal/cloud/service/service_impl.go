package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	CloudRepo clouddomain.Repository
	Tokens    clouddomain.TokenSource
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID     *snowflake.Node
	cloudrepo clouddomain.Repository
	tokens    clouddomain.TokenSource
}

func NewService(p ServiceParam) clouddomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("cloud.service"),

		genID:     p.GenID,
		cloudrepo: p.CloudRepo,
		tokens:    p.Tokens,
	}
}

func (s *Service) Create(ctx context.Context, req clouddomain.CreateCloudRequest) (*clouddomain.Cloud, error) {
	accountID, err := snowflake.ParseString(strings.TrimSpace(req.AccountID))
	if err != nil || accountID == 0 {
		return nil, clouddomain.ErrInvalidAccount
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, clouddomain.ErrInvalidName
	}
	if strings.TrimSpace(req.RegionName) == "" {
		return nil, clouddomain.ErrInvalidRegion
	}
	if !strings.HasPrefix(req.AuthURL, "http://") && !strings.HasPrefix(req.AuthURL, "https://") {
		return nil, clouddomain.ErrInvalidAuthURL
	}
	if req.AuthUsername == "" || req.AuthPassword == "" || req.AuthProjectID == "" {
		return nil, clouddomain.ErrMissingCredents
	}

	now := time.Now().UTC()
	cloud := &clouddomain.Cloud{
		ID:                 s.genID.Generate(),
		AccountID:          accountID,
		Name:               strings.TrimSpace(req.Name),
		RegionName:         strings.TrimSpace(req.RegionName),
		Interface:          defaultString(req.Interface, "public"),
		IdentityAPIVersion: defaultString(req.IdentityAPIVersion, "3"),
		AuthURL:            strings.TrimRight(strings.TrimSpace(req.AuthURL), "/"),
		AuthUsername:       req.AuthUsername,
		AuthPassword:       req.AuthPassword,
		AuthProjectID:      req.AuthProjectID,
		AuthProjectName:    strings.TrimSpace(req.AuthProjectName),
		AuthUserDomainName: defaultString(req.AuthUserDomainName, "Default"),
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.cloudrepo.Insert(ctx, s.db, cloud); err != nil {
		return nil, err
	}

	s.log.Info("cloud registered",
		zap.String("cloud_id", cloud.ID.String()),
		zap.String("region", cloud.RegionName),
	)
	return cloud, nil
}

func (s *Service) List(ctx context.Context) ([]clouddomain.Cloud, error) {
	return s.cloudrepo.List(ctx, s.db)
}

func (s *Service) Get(ctx context.Context, id string) (*clouddomain.Cloud, error) {
	cloud, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return cloud, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	cloud, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.cloudrepo.Delete(ctx, s.db, cloud.ID)
}

func (s *Service) TestAuth(ctx context.Context, id string) error {
	cloud, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	// Force a round-trip regardless of cached state.
	cloud.AccessToken = ""
	cloud.AccessTokenExpiresAt = nil

	_, err = s.tokens.AccessToken(ctx, cloud)
	return err
}

func (s *Service) find(ctx context.Context, id string) (*clouddomain.Cloud, error) {
	cloudID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || cloudID == 0 {
		return nil, clouddomain.ErrInvalidCloud
	}
	cloud, err := s.cloudrepo.FindByID(ctx, s.db, cloudID)
	if err != nil {
		return nil, err
	}
	if cloud == nil {
		return nil, clouddomain.ErrCloudNotFound
	}
	return cloud, nil
}

func defaultString(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}
