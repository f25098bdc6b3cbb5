// Package collector runs the ingestion batch: resolve accounts, fetch each
// account's dataframes and hand them to the reconcile queue.
package collector

import (
	"context"
	"errors"
	"time"

	accountdomain "github.com/ratewatchlabs/ratewatch/internal/account/domain"
	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"github.com/ratewatchlabs/ratewatch/internal/cloudkitty"
	"github.com/ratewatchlabs/ratewatch/internal/dispatch"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoCloudConfigured means the account exists but has no cloud to gather
// from. It is a configuration problem, not a transient one.
var ErrNoCloudConfigured = errors.New("no_cloud_configured")

// AccountResult is the per-account outcome of one batch run.
type AccountResult struct {
	AccountID string `json:"account_id"`
	CloudID   string `json:"cloud_id,omitempty"`
	Fetched   int    `json:"dataframes_fetched"`
	Chunks    int    `json:"chunks_enqueued"`
	Error     string `json:"error,omitempty"`
}

type Service interface {
	// GatherAccount ingests one account: first configured cloud, fetch,
	// dispatch. Zero begin/end select the fetcher's default window.
	GatherAccount(ctx context.Context, ref string, begin, end time.Time) (*AccountResult, error)

	// GatherAll runs GatherAccount over every account. One account
	// failing does not stop the run; each outcome is reported.
	GatherAll(ctx context.Context, begin, end time.Time) ([]AccountResult, error)
}

type ServiceParam struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	AccountRepo accountdomain.Repository
	CloudRepo   clouddomain.Repository
	Fetcher     cloudkitty.Service
	Dispatcher  dispatch.Dispatcher
}

type service struct {
	db  *gorm.DB
	log *zap.Logger

	accountrepo accountdomain.Repository
	cloudrepo   clouddomain.Repository
	fetcher     cloudkitty.Service
	dispatcher  dispatch.Dispatcher
}

func NewService(p ServiceParam) Service {
	return &service{
		db:  p.DB,
		log: p.Log.Named("collector.service"),

		accountrepo: p.AccountRepo,
		cloudrepo:   p.CloudRepo,
		fetcher:     p.Fetcher,
		dispatcher:  p.Dispatcher,
	}
}

func (s *service) GatherAccount(ctx context.Context, ref string, begin, end time.Time) (*AccountResult, error) {
	accounts, err := s.accountrepo.FindByRef(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, accountdomain.ErrAccountNotFound
	}

	result, gatherErr := s.gather(ctx, accounts[0], begin, end)
	return &result, gatherErr
}

func (s *service) GatherAll(ctx context.Context, begin, end time.Time) ([]AccountResult, error) {
	accounts, err := s.accountrepo.List(ctx, s.db)
	if err != nil {
		return nil, err
	}

	results := make([]AccountResult, 0, len(accounts))
	for _, account := range accounts {
		result, _ := s.gather(ctx, account, begin, end)
		if result.Error != "" {
			// Report and move on: one broken account must not starve
			// the rest of the run.
			s.log.Warn("account ingestion failed",
				zap.String("account_id", result.AccountID),
				zap.String("error", result.Error),
			)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *service) gather(ctx context.Context, account accountdomain.Account, begin, end time.Time) (AccountResult, error) {
	result := AccountResult{AccountID: account.ID.String()}

	clouds, err := s.cloudrepo.FindByAccount(ctx, s.db, account.ID)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	if len(clouds) == 0 {
		result.Error = ErrNoCloudConfigured.Error()
		return result, ErrNoCloudConfigured
	}

	cloud := clouds[0]
	result.CloudID = cloud.ID.String()

	dataframes, err := s.fetcher.Dataframes(ctx, &cloud, begin, end)
	if err != nil {
		result.Error = err.Error()
		return result, err
	}
	result.Fetched = len(dataframes)

	chunks, err := s.dispatcher.Dispatch(ctx, cloud.ID, dataframes)
	result.Chunks = chunks
	if err != nil {
		result.Error = err.Error()
		return result, err
	}

	s.log.Info("account ingestion enqueued",
		zap.String("account_id", result.AccountID),
		zap.String("cloud_id", result.CloudID),
		zap.Int("dataframes", result.Fetched),
		zap.Int("chunks", result.Chunks),
	)
	return result, nil
}

var Module = fx.Module("collector.service",
	fx.Provide(NewService),
)
