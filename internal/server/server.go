// Package server exposes the operator-facing HTTP API: cloud configuration,
// cost reporting and the manual gather trigger.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	clouddomain "github.com/ratewatchlabs/ratewatch/internal/cloud/domain"
	"github.com/ratewatchlabs/ratewatch/internal/collector"
	"github.com/ratewatchlabs/ratewatch/internal/config"
	ratingdomain "github.com/ratewatchlabs/ratewatch/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func NewEngine(registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	db     *gorm.DB
	log    *zap.Logger

	cloudSvc     clouddomain.Service
	ratingSvc    ratingdomain.Service
	collectorSvc collector.Service
}

type ServerParams struct {
	fx.In

	Gin *gin.Engine
	Cfg config.Config
	DB  *gorm.DB
	Log *zap.Logger

	CloudSvc     clouddomain.Service
	RatingSvc    ratingdomain.Service
	CollectorSvc collector.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine: p.Gin,
		cfg:    p.Cfg,
		db:     p.DB,
		log:    p.Log.Named("http.server"),

		cloudSvc:     p.CloudSvc,
		ratingSvc:    p.RatingSvc,
		collectorSvc: p.CollectorSvc,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	v1.POST("/clouds", s.CreateCloud)
	v1.GET("/clouds", s.ListClouds)
	v1.GET("/clouds/:id", s.GetCloud)
	v1.DELETE("/clouds/:id", s.DeleteCloud)
	v1.POST("/clouds/:id/test-auth", s.TestCloudAuth)

	v1.GET("/costs/daily", s.DailyCosts)
	v1.GET("/ratings", s.ListRatings)
	v1.POST("/gather", s.Gather)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)
