// Package server exposes the billing core over HTTP: profile CRUD, the
// manual generation trigger, payment recording and dashboard reads.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	profiledomain "github.com/Behzodbek19981230/lms-sub004/internal/billingprofile/domain"
	"github.com/Behzodbek19981230/lms-sub004/internal/clock"
	"github.com/Behzodbek19981230/lms-sub004/internal/config"
	"github.com/Behzodbek19981230/lms-sub004/internal/generator"
	ledgerdomain "github.com/Behzodbek19981230/lms-sub004/internal/ledger/domain"
	"github.com/Behzodbek19981230/lms-sub004/internal/observability/logger"
	"github.com/Behzodbek19981230/lms-sub004/internal/observability/tracing"
	overviewdomain "github.com/Behzodbek19981230/lms-sub004/internal/overview/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Cfg         config.Config
	ProfileSvc  profiledomain.Service
	LedgerSvc   ledgerdomain.Service
	OverviewSvc overviewdomain.Service
	Generator   *generator.Generator
	Clock       clock.Clock
}

type Server struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         config.Config
	profileSvc  profiledomain.Service
	ledgerSvc   ledgerdomain.Service
	overviewSvc overviewdomain.Service
	generator   *generator.Generator
	clock       clock.Clock
}

// NewEngine builds the gin engine with logging and tracing middleware.
func NewEngine(cfg config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware())
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz"},
	}))
	return engine
}

func NewServer(p Params) *Server {
	return &Server{
		db:          p.DB,
		log:         p.Log.Named("server"),
		cfg:         p.Cfg,
		profileSvc:  p.ProfileSvc,
		ledgerSvc:   p.LedgerSvc,
		overviewSvc: p.OverviewSvc,
		generator:   p.Generator,
		clock:       p.Clock,
	}
}

// RegisterRoutes attaches every billing endpoint to the engine.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Health)

	api := engine.Group("/api")
	{
		api.POST("/billing/profiles", s.CreateProfile)
		api.GET("/billing/profiles", s.ListProfiles)
		api.GET("/billing/profiles/:id", s.GetProfile)
		api.PATCH("/billing/profiles/:id", s.UpdateProfile)
		api.POST("/billing/profiles/:id/close", s.CloseProfile)

		api.POST("/billing/runs", s.TriggerRun)

		api.GET("/billing/payments", s.ListPayments)
		api.GET("/billing/payments/:id", s.GetPayment)
		api.POST("/billing/payments/:id/record", s.RecordPayment)
		api.POST("/billing/payments/:id/cancel", s.CancelPayment)

		api.GET("/billing/overview", s.Overview)
		api.GET("/billing/debtors", s.ListDebtors)
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

// Module wires the HTTP surface.
var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server, engine *gin.Engine) {
		s.RegisterRoutes(engine)
	}),
	fx.Invoke(RunHTTP),
)
