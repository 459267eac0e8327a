// Package server exposes the billing core over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	billingdomain "github.com/cogentahq/timebill/internal/billing/domain"
	clientdomain "github.com/cogentahq/timebill/internal/client/domain"
	"github.com/cogentahq/timebill/internal/clock"
	"github.com/cogentahq/timebill/internal/config"
	reportdomain "github.com/cogentahq/timebill/internal/report/domain"
	sequencedomain "github.com/cogentahq/timebill/internal/sequence/domain"
	timeentrydomain "github.com/cogentahq/timebill/internal/timeentry/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	log         *zap.Logger
	cfg         *config.Config
	db          *gorm.DB
	clk         clock.Clock
	engine      *gin.Engine
	billingSvc  billingdomain.Service
	reportSvc   reportdomain.Service
	sequenceSvc sequencedomain.Service
	clientRepo  clientdomain.Repository
	entryLoader timeentrydomain.Loader
	entryRepo   timeentrydomain.Repository
}

type ServerParam struct {
	fx.In

	Log         *zap.Logger
	Cfg         *config.Config
	DB          *gorm.DB
	Clock       clock.Clock
	Engine      *gin.Engine
	BillingSvc  billingdomain.Service
	ReportSvc   reportdomain.Service
	SequenceSvc sequencedomain.Service
	ClientRepo  clientdomain.Repository
	EntryLoader timeentrydomain.Loader
	EntryRepo   timeentrydomain.Repository
}

func NewEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.HTTP.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	return engine
}

func NewServer(param ServerParam) *Server {
	return &Server{
		log:         param.Log.Named("server"),
		cfg:         param.Cfg,
		db:          param.DB,
		clk:         param.Clock,
		engine:      param.Engine,
		billingSvc:  param.BillingSvc,
		reportSvc:   param.ReportSvc,
		sequenceSvc: param.SequenceSvc,
		clientRepo:  param.ClientRepo,
		entryLoader: param.EntryLoader,
		entryRepo:   param.EntryRepo,
	}
}

func (s *Server) RegisterRoutes() {
	s.engine.Use(s.requestLogger())
	s.engine.Use(s.metricsMiddleware())

	s.engine.GET("/healthz", s.Healthz)
	s.engine.GET("/readyz", s.Readyz)
	s.engine.GET("/metrics", s.Metrics())

	v1 := s.engine.Group("/api/v1")
	{
		v1.GET("/clients", s.ListClients)
		v1.GET("/clients/:id", s.GetClient)
		v1.GET("/time-entries", s.ListTimeEntries)
		v1.GET("/reports", s.GetReport)
		v1.GET("/reports/export", s.ExportReport)
		v1.POST("/invoices/generate", s.GenerateInvoice)
		v1.POST("/invoices/generate/pdf", s.GenerateInvoicePDF)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:    s.cfg.HTTP.Addr,
		Handler: s.engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			s.log.Info("http server shutting down")
			return srv.Shutdown(ctx)
		},
	})
}
