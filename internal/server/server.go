package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/roomledger/internal/auth"
	"github.com/smallbiznis/roomledger/internal/auth/token"
	"github.com/smallbiznis/roomledger/internal/config"
	"github.com/smallbiznis/roomledger/internal/electricity"
	electricitydomain "github.com/smallbiznis/roomledger/internal/electricity/domain"
	"github.com/smallbiznis/roomledger/internal/landlord"
	landlorddomain "github.com/smallbiznis/roomledger/internal/landlord/domain"
	"github.com/smallbiznis/roomledger/internal/observability"
	obsmiddleware "github.com/smallbiznis/roomledger/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/roomledger/internal/observability/metrics"
	obstracing "github.com/smallbiznis/roomledger/internal/observability/tracing"
	"github.com/smallbiznis/roomledger/internal/payment"
	paymentdomain "github.com/smallbiznis/roomledger/internal/payment/domain"
	"github.com/smallbiznis/roomledger/internal/property"
	propertydomain "github.com/smallbiznis/roomledger/internal/property/domain"
	"github.com/smallbiznis/roomledger/internal/ratelimit"
	"github.com/smallbiznis/roomledger/internal/report"
	reportdomain "github.com/smallbiznis/roomledger/internal/report/domain"
	"github.com/smallbiznis/roomledger/internal/room"
	roomdomain "github.com/smallbiznis/roomledger/internal/room/domain"
	"github.com/smallbiznis/roomledger/internal/storage"
	"github.com/smallbiznis/roomledger/internal/tenant"
	tenantdomain "github.com/smallbiznis/roomledger/internal/tenant/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	auth.Module,
	storage.Module,
	ratelimit.Module,
	landlord.Module,
	property.Module,
	room.Module,
	tenant.Module,
	payment.Module,
	electricity.Module,
	report.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	Cfg         config.Config
	ObsCfg      observability.Config
	Log         *zap.Logger
	HTTPMetrics *obsmetrics.HTTPMetrics `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	registerValidator()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(corsConfig(p.Cfg.CORSAllowedOrigins)))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Logger:          p.Log,
		Debug:           p.ObsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	if p.HTTPMetrics != nil {
		r.Use(obsmetrics.GinMiddleware(p.HTTPMetrics))
	}
	r.Use(ErrorHandlingMiddleware())

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to the " + p.Cfg.AppName + " API"})
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", obsmiddleware.RequestIDHeader},
		ExposeHeaders:    []string{obsmiddleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}

func registerGin(p EngineParams) *gin.Engine {
	return NewEngine(p)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
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

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	tokens       *token.Manager
	loginLimiter *ratelimit.LoginLimiter
	documents    *storage.Local
	obsMetrics   *obsmetrics.Metrics

	landlordSvc    landlorddomain.Service
	propertySvc    propertydomain.Service
	roomSvc        roomdomain.Service
	tenantSvc      tenantdomain.Service
	paymentSvc     paymentdomain.Service
	electricitySvc electricitydomain.Service
	reportSvc      reportdomain.Service
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Tokens       *token.Manager
	LoginLimiter *ratelimit.LoginLimiter `optional:"true"`
	Documents    *storage.Local          `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`

	LandlordSvc    landlorddomain.Service
	PropertySvc    propertydomain.Service
	RoomSvc        roomdomain.Service
	TenantSvc      tenantdomain.Service
	PaymentSvc     paymentdomain.Service
	ElectricitySvc electricitydomain.Service
	ReportSvc      reportdomain.Service
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            log.Named("http.server"),
		tokens:         p.Tokens,
		loginLimiter:   p.LoginLimiter,
		documents:      p.Documents,
		obsMetrics:     p.ObsMetrics,
		landlordSvc:    p.LandlordSvc,
		propertySvc:    p.PropertySvc,
		roomSvc:        p.RoomSvc,
		tenantSvc:      p.TenantSvc,
		paymentSvc:     p.PaymentSvc,
		electricitySvc: p.ElectricitySvc,
		reportSvc:      p.ReportSvc,
	}

	svc.registerLandlordRoutes()
	svc.registerPropertyRoutes()
	svc.registerRoomRoutes()
	svc.registerTenantRoutes()
	svc.registerPaymentRoutes()
	svc.registerElectricityRoutes()
	svc.registerUploads()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerLandlordRoutes() {
	g := s.engine.Group("/landlords")

	g.POST("", s.CreateLandlord)
	g.POST("/login", s.LoginRateLimit(), s.LoginLandlord)
	g.GET("/me", s.LandlordAuthRequired(), s.CurrentLandlord)
	g.GET("", s.ListLandlords)
	g.GET("/:id", s.GetLandlordByID)
	g.PUT("/:id", s.UpdateLandlord)
	g.DELETE("/:id", s.DeleteLandlord)
}

func (s *Server) registerPropertyRoutes() {
	g := s.engine.Group("/properties")

	g.POST("", s.CreateProperty)
	g.GET("", s.ListProperties)
	g.GET("/landlord/:id", s.ListPropertiesByLandlord)
	g.GET("/:id", s.GetPropertyByID)
	g.PUT("/:id", s.UpdateProperty)
	g.DELETE("/:id", s.DeleteProperty)
	g.GET("/:id/:month", s.GetMonthlyDetails)
	g.GET("/:id/:month/statement", s.GetMonthlyStatement)
}

func (s *Server) registerRoomRoutes() {
	g := s.engine.Group("/rooms")

	g.POST("", s.CreateRoom)
	g.GET("", s.ListRooms)
	g.GET("/property/:id", s.ListRoomsByProperty)
	g.GET("/:id", s.GetRoomByID)
	g.PUT("/:id", s.UpdateRoom)
	g.DELETE("/:id", s.DeleteRoom)
}

func (s *Server) registerTenantRoutes() {
	g := s.engine.Group("/tenants")

	g.POST("", s.CreateTenant)
	g.POST("/upload", s.CreateTenantWithDocuments)
	g.GET("", s.ListTenants)
	g.GET("/property/:id", s.ListTenantsByProperty)
	g.GET("/room/:id", s.GetTenantByRoom)
	g.GET("/:id", s.GetTenantByID)
	g.PUT("/:id", s.UpdateTenant)
	g.DELETE("/:id", s.DeleteTenant)
}

func (s *Server) registerPaymentRoutes() {
	g := s.engine.Group("/payments")

	g.POST("", s.CreatePayment)
	g.GET("", s.ListPayments)
	g.GET("/tenant/:id", s.ListPaymentsByTenant)
	g.GET("/room/:id", s.ListPaymentsByRoom)
	g.GET("/:id", s.GetPaymentByID)
	g.PUT("/:id", s.UpdatePayment)
	g.DELETE("/:id", s.DeletePayment)
	g.GET("/:id/:month", s.GetMonthlyPaymentReport)
}

func (s *Server) registerElectricityRoutes() {
	g := s.engine.Group("/electricity")

	g.POST("", s.CreateReading)
	g.POST("/bulk", s.CreateReadingsBulk)
	g.GET("", s.ListReadings)
	g.GET("/room/:id", s.ListReadingsByRoom)
	g.GET("/:id", s.GetReadingByID)
	g.PUT("/:id", s.UpdateReading)
	g.DELETE("/:id", s.DeleteReading)
	g.GET("/:id/:month", s.GetMonthlyElectricityReport)
}

func (s *Server) registerUploads() {
	if s.documents == nil {
		return
	}
	s.engine.Static(storage.PublicPrefix, s.documents.Root())
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
