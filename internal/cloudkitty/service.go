package cloudkitty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"github.com/ratewatchlabs/ratewatch/internal/clock"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	obsmetrics "github.com/ratewatchlabs/ratewatch/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// FetchError reports a failed dataframe request. The token is still
// considered valid unless TokenRejected is set.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("rating service unreachable: %s", e.Body)
	}
	return fmt.Sprintf("rating service returned status %d: %s", e.StatusCode, e.Body)
}

// TokenRejected reports whether the caller should force a token refresh on
// the next attempt.
func (e *FetchError) TokenRejected() bool {
	return e.StatusCode == http.StatusUnauthorized
}

var ErrNoRatingEndpoint = errors.New("no_rating_endpoint")

// Service queries the dataframe storage endpoint for a time window.
type Service interface {
	Dataframes(ctx context.Context, cloud *clouddomain.Cloud, begin, end time.Time) ([]Dataframe, error)
}

type ServiceParam struct {
	fx.In

	Log     *zap.Logger
	Cfg     config.Config
	Clock   clock.Clock
	Tokens  clouddomain.TokenSource
	Metrics *obsmetrics.Metrics `optional:"true"`
}

type service struct {
	log *zap.Logger

	client  *http.Client
	clock   clock.Clock
	tokens  clouddomain.TokenSource
	metrics *obsmetrics.Metrics
}

func NewService(p ServiceParam) Service {
	return &service{
		log: p.Log.Named("cloudkitty.service"),

		client:  &http.Client{Timeout: p.Cfg.FetchTimeout},
		clock:   p.Clock,
		tokens:  p.Tokens,
		metrics: p.Metrics,
	}
}

// Dataframes fetches the dataframes for [begin, end). Zero values default to
// the beginning of the current calendar month and the start of the last
// fully-elapsed hour. The response list is returned verbatim; no
// transformation happens at this layer.
func (s *service) Dataframes(ctx context.Context, cloud *clouddomain.Cloud, begin, end time.Time) ([]Dataframe, error) {
	token, err := s.tokens.AccessToken(ctx, cloud)
	if err != nil {
		return nil, err
	}
	if cloud.RatingEndpoint == "" {
		return nil, ErrNoRatingEndpoint
	}

	now := s.clock.Now()
	if begin.IsZero() {
		begin = startOfMonth(now)
	}
	if end.IsZero() {
		end = now.Truncate(time.Hour).Add(-time.Hour)
	}

	query := url.Values{}
	query.Set("begin", begin.Format(time.RFC3339))
	query.Set("end", end.Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		cloud.RatingEndpoint+"v1/storage/dataframes?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Auth-Token", token)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.countFailure(cloud)
		return nil, &FetchError{Body: err.Error()}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		s.countFailure(cloud)
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.countFailure(cloud)
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed dataframesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		s.countFailure(cloud)
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: "malformed dataframes response: " + err.Error()}
	}

	if s.metrics != nil {
		s.metrics.DataframesFetched.WithLabelValues(cloud.ID.String()).Add(float64(len(parsed.Dataframes)))
	}
	s.log.Debug("dataframes fetched",
		zap.String("cloud_id", cloud.ID.String()),
		zap.Int("count", len(parsed.Dataframes)),
	)

	return parsed.Dataframes, nil
}

func (s *service) countFailure(cloud *clouddomain.Cloud) {
	if s.metrics != nil {
		s.metrics.FetchFailures.WithLabelValues(cloud.ID.String()).Inc()
	}
}

func startOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
