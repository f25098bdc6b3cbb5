// Package reconcile turns fetched CloudKitty dataframes into stored rating
// facts. Reconciliation is idempotent: overlapping, duplicated or reordered
// input never produces a second row for the same usage window.
package reconcile

import (
	"context"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/ratewatchlabs/ratewatch/internal/cloudkitty"
	"github.com/ratewatchlabs/ratewatch/internal/observability/metrics"
	projectdomain "github.com/ratewatchlabs/ratewatch/internal/project/domain"
	ratingdomain "github.com/ratewatchlabs/ratewatch/internal/rating/domain"
	resourcedomain "github.com/ratewatchlabs/ratewatch/internal/resource/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service interface {
	// Reconcile stores every well-formed resource entry of the given
	// dataframes for one cloud. Malformed entries are skipped; storage
	// errors abort the batch.
	Reconcile(ctx context.Context, cloudID snowflake.ID, dataframes []cloudkitty.Dataframe) error
}

type ServiceParam struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	ProjectRepo  projectdomain.Repository
	ResourceRepo resourcedomain.Repository
	RatingRepo   ratingdomain.Repository
	Metrics      *metrics.Metrics
}

type service struct {
	db  *gorm.DB
	log *zap.Logger

	genID        *snowflake.Node
	projectrepo  projectdomain.Repository
	resourcerepo resourcedomain.Repository
	ratingrepo   ratingdomain.Repository
	metrics      *metrics.Metrics
}

func NewService(p ServiceParam) Service {
	return &service{
		db:  p.DB,
		log: p.Log.Named("reconcile.service"),

		genID:        p.GenID,
		projectrepo:  p.ProjectRepo,
		resourcerepo: p.ResourceRepo,
		ratingrepo:   p.RatingRepo,
		metrics:      p.Metrics,
	}
}

func (s *service) Reconcile(ctx context.Context, cloudID snowflake.ID, dataframes []cloudkitty.Dataframe) error {
	cloud := cloudID.String()

	for _, frame := range dataframes {
		for _, entry := range frame.Resources {
			rating, volume, ok := s.parseEntry(cloud, frame, entry)
			if !ok {
				continue
			}

			project, err := s.projectrepo.GetOrCreate(ctx, s.db, entry.Desc.ProjectID, projectdomain.Project{
				ID:      s.genID.Generate(),
				CloudID: cloudID,
				Name:    entry.Desc.ProjectID,
			})
			if err != nil {
				return err
			}

			resource, err := s.resourcerepo.GetOrCreate(ctx, s.db, entry.Desc.ID, resourcedomain.Resource{
				ID:         s.genID.Generate(),
				ProjectID:  project.ID,
				Name:       resourceName(entry),
				FlavorName: entry.Desc.FlavorName,
				State:      entry.Desc.State,
				Metadata:   resourceMetadata(entry.Desc),
			})
			if err != nil {
				return err
			}

			// Fast path: the unique index on the 4-tuple remains the
			// authoritative guard when two workers race past this check.
			exists, err := s.ratingrepo.Exists(ctx, s.db, frame.Begin.Time, frame.End.Time, entry.Service, resource.ID)
			if err != nil {
				return err
			}
			if exists {
				s.metrics.RatingsDeduplicated.WithLabelValues(cloud).Inc()
				continue
			}

			inserted, err := s.ratingrepo.Insert(ctx, s.db, &ratingdomain.Rating{
				ID:         s.genID.Generate(),
				ResourceID: resource.ID,
				Rating:     rating,
				Volume:     volume,
				BeginAt:    frame.Begin.Time,
				EndAt:      frame.End.Time,
				Service:    entry.Service,
			})
			if err != nil {
				return err
			}
			if inserted {
				s.metrics.RatingsInserted.WithLabelValues(cloud).Inc()
			} else {
				s.metrics.RatingsDeduplicated.WithLabelValues(cloud).Inc()
			}
		}
	}
	return nil
}

// parseEntry validates one resource entry. A malformed entry is logged,
// counted and skipped without failing the batch.
func (s *service) parseEntry(cloud string, frame cloudkitty.Dataframe, entry cloudkitty.ResourceEntry) (rating, volume float64, ok bool) {
	reason := ""
	switch {
	case entry.Desc.ProjectID == "":
		reason = "missing project_id"
	case entry.Desc.ID == "":
		reason = "missing resource id"
	case entry.Service == "":
		reason = "missing service"
	case frame.Begin.IsZero() || frame.End.IsZero():
		reason = "missing window bounds"
	}

	var err error
	if reason == "" {
		if rating, err = strconv.ParseFloat(entry.Rating, 64); err != nil {
			reason = "unparseable rating"
		} else if volume, err = strconv.ParseFloat(entry.Volume, 64); err != nil {
			reason = "unparseable volume"
		}
	}

	if reason != "" {
		s.metrics.MalformedEntries.WithLabelValues(cloud).Inc()
		s.log.Warn("skipping malformed resource entry",
			zap.String("cloud_id", cloud),
			zap.String("reason", reason),
			zap.String("service", entry.Service),
			zap.String("resource_id", entry.Desc.ID),
		)
		return 0, 0, false
	}
	return rating, volume, true
}

// resourceName falls back to the service name when the entry carries no
// flavor, matching how compute and non-compute entries are labeled.
func resourceName(entry cloudkitty.ResourceEntry) string {
	if entry.Desc.FlavorName != "" {
		return entry.Desc.FlavorName
	}
	return entry.Service
}

// resourceMetadata retains the raw CloudKitty descriptor alongside the typed
// columns, fixed at first sight like the rest of the resource row.
func resourceMetadata(desc cloudkitty.ResourceDesc) datatypes.JSONMap {
	m := datatypes.JSONMap{
		"id":         desc.ID,
		"project_id": desc.ProjectID,
	}
	if desc.FlavorName != "" {
		m["flavor_name"] = desc.FlavorName
	}
	if desc.State != "" {
		m["state"] = desc.State
	}
	return m
}

var Module = fx.Module("reconcile.service",
	fx.Provide(NewService),
)
