// Package keystone manages bearer tokens against the OpenStack identity
// service and resolves the rating endpoint from its catalog.
package keystone

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"github.com/ratewatchlabs/ratewatch/internal/clock"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	obsmetrics "github.com/ratewatchlabs/ratewatch/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const subjectTokenHeader = "X-Subject-Token"

type ServiceParam struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	Clock     clock.Clock
	CloudRepo clouddomain.Repository
	Metrics   *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	client    *http.Client
	clock     clock.Clock
	cloudrepo clouddomain.Repository
	metrics   *obsmetrics.Metrics
}

func NewService(p ServiceParam) *Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("keystone.service"),

		client:    &http.Client{Timeout: p.Cfg.IdentityTimeout},
		clock:     p.Clock,
		cloudrepo: p.CloudRepo,
		metrics:   p.Metrics,
	}
}

// AccessToken returns a valid bearer token for the cloud. A cached token with
// an expiry strictly in the future is returned without any network call;
// otherwise one password-grant authentication is issued and the new token,
// expiry, and resolved rating endpoint are persisted in a single update.
//
// Concurrent refreshers for the same cloud are not serialized: both requests
// succeed upstream and the last persisted write wins.
func (s *Service) AccessToken(ctx context.Context, cloud *clouddomain.Cloud) (string, error) {
	if cloud.HasValidToken(s.clock.Now()) {
		return cloud.AccessToken, nil
	}

	token, expiresAt, catalog, err := s.authenticate(ctx, cloud)
	if err != nil {
		if s.metrics != nil {
			s.metrics.AuthFailures.WithLabelValues(cloud.ID.String()).Inc()
		}
		return "", err
	}

	endpoint, err := ResolveRatingEndpoint(cloud, catalog)
	if err != nil {
		return "", err
	}

	if err := s.cloudrepo.UpdateTokenState(ctx, s.db, cloud.ID, token, expiresAt, endpoint); err != nil {
		return "", err
	}

	cloud.AccessToken = token
	cloud.AccessTokenExpiresAt = &expiresAt
	cloud.RatingEndpoint = endpoint

	if s.metrics != nil {
		s.metrics.TokenRefreshes.WithLabelValues(cloud.ID.String()).Inc()
	}
	s.log.Info("token refreshed",
		zap.String("cloud_id", cloud.ID.String()),
		zap.Time("expires_at", expiresAt),
	)

	return token, nil
}

type authRequest struct {
	Auth struct {
		Identity struct {
			Methods  []string `json:"methods"`
			Password struct {
				User struct {
					Domain struct {
						Name string `json:"name"`
					} `json:"domain"`
					Name     string `json:"name"`
					Password string `json:"password"`
				} `json:"user"`
			} `json:"password"`
		} `json:"identity"`
		Scope struct {
			Project struct {
				ID string `json:"id"`
			} `json:"project"`
		} `json:"scope"`
	} `json:"auth"`
}

type authResponse struct {
	Token struct {
		ExpiresAt time.Time      `json:"expires_at"`
		Catalog   []CatalogEntry `json:"catalog"`
	} `json:"token"`
}

func (s *Service) authenticate(ctx context.Context, cloud *clouddomain.Cloud) (string, time.Time, []CatalogEntry, error) {
	var payload authRequest
	payload.Auth.Identity.Methods = []string{"password"}
	payload.Auth.Identity.Password.User.Domain.Name = cloud.AuthUserDomainName
	payload.Auth.Identity.Password.User.Name = cloud.AuthUsername
	payload.Auth.Identity.Password.User.Password = cloud.AuthPassword
	payload.Auth.Scope.Project.ID = cloud.AuthProjectID

	body, err := json.Marshal(payload)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cloud.AuthURL+"/v3/auth/tokens", bytes.NewReader(body))
	if err != nil {
		return "", time.Time{}, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", time.Time{}, nil, &AuthError{Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, nil, &AuthError{StatusCode: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", time.Time{}, nil, &AuthError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	token := resp.Header.Get(subjectTokenHeader)
	if token == "" {
		return "", time.Time{}, nil, &AuthError{StatusCode: resp.StatusCode, Body: "missing " + subjectTokenHeader + " header"}
	}

	var parsed authResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", time.Time{}, nil, &AuthError{StatusCode: resp.StatusCode, Body: "malformed token response: " + err.Error()}
	}

	return token, parsed.Token.ExpiresAt.UTC(), parsed.Token.Catalog, nil
}
