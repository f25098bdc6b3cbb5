package keystone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"github.com/ratewatchlabs/ratewatch/internal/clock"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type tokenStateWrite struct {
	ID        snowflake.ID
	Token     string
	ExpiresAt time.Time
	Endpoint  string
}

type cloudRepoFake struct {
	writes []tokenStateWrite
}

func (f *cloudRepoFake) Insert(context.Context, *gorm.DB, *clouddomain.Cloud) error { return nil }
func (f *cloudRepoFake) Delete(context.Context, *gorm.DB, snowflake.ID) error       { return nil }
func (f *cloudRepoFake) FindByID(context.Context, *gorm.DB, snowflake.ID) (*clouddomain.Cloud, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *cloudRepoFake) FindByAccount(context.Context, *gorm.DB, snowflake.ID) ([]clouddomain.Cloud, error) {
	return nil, nil
}
func (f *cloudRepoFake) List(context.Context, *gorm.DB) ([]clouddomain.Cloud, error) {
	return nil, nil
}
func (f *cloudRepoFake) UpdateTokenState(_ context.Context, _ *gorm.DB, id snowflake.ID, token string, expiresAt time.Time, endpoint string) error {
	f.writes = append(f.writes, tokenStateWrite{ID: id, Token: token, ExpiresAt: expiresAt, Endpoint: endpoint})
	return nil
}

func newTestService(repo clouddomain.Repository, clk clock.Clock) *Service {
	return NewService(ServiceParam{
		Log:       zap.NewNop(),
		Cfg:       config.Config{IdentityTimeout: 5 * time.Second},
		Clock:     clk,
		CloudRepo: repo,
	})
}

func identityServer(t *testing.T, calls *int, expiresAt time.Time, ratingURL string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v3/auth/tokens", r.URL.Path)

		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Contains(t, payload, "auth")

		w.Header().Set("X-Subject-Token", "fresh-token")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": map[string]any{
				"expires_at": expiresAt.Format(time.RFC3339),
				"catalog": []map[string]any{
					{
						"type": "rating",
						"endpoints": []map[string]any{
							{"interface": "public", "region": "RegionOne", "url": ratingURL},
						},
					},
				},
			},
		})
	}))
}

func TestAccessToken_ReusesCachedToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expiry := now.Add(time.Hour)

	calls := 0
	srv := identityServer(t, &calls, now.Add(2*time.Hour), "https://rating.example/")
	defer srv.Close()

	repo := &cloudRepoFake{}
	svc := newTestService(repo, clock.NewFakeClock(now))

	cloud := &clouddomain.Cloud{
		ID:                   1,
		AuthURL:              srv.URL,
		Interface:            "public",
		RegionName:           "RegionOne",
		AccessToken:          "cached-token",
		AccessTokenExpiresAt: &expiry,
	}

	token, err := svc.AccessToken(context.Background(), cloud)
	require.NoError(t, err)
	assert.Equal(t, "cached-token", token)
	assert.Equal(t, 0, calls)
	assert.Empty(t, repo.writes)
}

func TestAccessToken_RefreshesExpiredToken(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	staleExpiry := now.Add(-time.Minute)
	newExpiry := now.Add(2 * time.Hour)

	calls := 0
	srv := identityServer(t, &calls, newExpiry, "https://rating.example/")
	defer srv.Close()

	repo := &cloudRepoFake{}
	svc := newTestService(repo, clock.NewFakeClock(now))

	cloud := &clouddomain.Cloud{
		ID:                   7,
		AuthURL:              srv.URL,
		Interface:            "public",
		RegionName:           "RegionOne",
		AuthUsername:         "admin",
		AuthPassword:         "secret",
		AuthProjectID:        "proj",
		AuthUserDomainName:   "Default",
		AccessToken:          "stale-token",
		AccessTokenExpiresAt: &staleExpiry,
	}

	token, err := svc.AccessToken(context.Background(), cloud)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, 1, calls)

	require.Len(t, repo.writes, 1)
	write := repo.writes[0]
	assert.Equal(t, snowflake.ID(7), write.ID)
	assert.Equal(t, "fresh-token", write.Token)
	assert.True(t, write.ExpiresAt.Equal(newExpiry))
	assert.Equal(t, "https://rating.example/", write.Endpoint)

	// The in-memory cloud carries the new state so callers can use it
	// without a reload.
	assert.Equal(t, "fresh-token", cloud.AccessToken)
	assert.Equal(t, "https://rating.example/", cloud.RatingEndpoint)
}

func TestAccessToken_TokenAtExactExpiryRefreshes(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expiry := now // not strictly in the future

	calls := 0
	srv := identityServer(t, &calls, now.Add(time.Hour), "https://rating.example/")
	defer srv.Close()

	svc := newTestService(&cloudRepoFake{}, clock.NewFakeClock(now))

	cloud := &clouddomain.Cloud{
		ID:                   3,
		AuthURL:              srv.URL,
		Interface:            "public",
		RegionName:           "RegionOne",
		AccessToken:          "boundary-token",
		AccessTokenExpiresAt: &expiry,
	}

	token, err := svc.AccessToken(context.Background(), cloud)
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", token)
	assert.Equal(t, 1, calls)
}

func TestAccessToken_AuthFailureLeavesStateUntouched(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid credentials"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	repo := &cloudRepoFake{}
	svc := newTestService(repo, clock.NewFakeClock(now))

	cloud := &clouddomain.Cloud{
		ID:         5,
		AuthURL:    srv.URL,
		Interface:  "public",
		RegionName: "RegionOne",
	}

	_, err := svc.AccessToken(context.Background(), cloud)
	require.Error(t, err)

	authErr, ok := err.(*AuthError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)

	// Nothing persisted, nothing cached: the next call retries cleanly.
	assert.Empty(t, repo.writes)
	assert.Empty(t, cloud.AccessToken)
}

func TestAccessToken_CatalogFailureNotPersisted(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Subject-Token", "fresh-token")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"token": map[string]any{
				"expires_at": now.Add(time.Hour).Format(time.RFC3339),
				"catalog":    []map[string]any{},
			},
		})
	}))
	defer srv.Close()

	repo := &cloudRepoFake{}
	svc := newTestService(repo, clock.NewFakeClock(now))

	cloud := &clouddomain.Cloud{
		ID:         9,
		AuthURL:    srv.URL,
		Interface:  "public",
		RegionName: "RegionOne",
	}

	_, err := svc.AccessToken(context.Background(), cloud)
	require.Error(t, err)

	catalogErr, ok := err.(*CatalogError)
	require.True(t, ok)
	assert.Equal(t, CatalogNoRatingService, catalogErr.Reason)
	assert.Empty(t, repo.writes)
}
