// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"beedab-service/internal/config"
	"beedab-service/internal/db"
	authHandler "beedab-service/internal/handlers/auth"
	billingHandler "beedab-service/internal/handlers/billing"
	listingHandler "beedab-service/internal/handlers/listing"
	wsHandler "beedab-service/internal/handlers/ws"
	"beedab-service/internal/middleware"
	"beedab-service/internal/pkg/jwt"
	"beedab-service/internal/pkg/session"
	"beedab-service/internal/repository/postgres"
	authService "beedab-service/internal/service/auth"
	billingService "beedab-service/internal/service/billing"
	"beedab-service/internal/service/expiry"
	listingService "beedab-service/internal/service/listing"
	"beedab-service/internal/websocket"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger

	httpServer *http.Server
	sweeper    *expiry.Sweeper
	cancel     context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("database migrations applied")

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       0,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	logger.Info("redis connected", zap.String("addr", s.cfg.RedisAddr))

	// ----- JWT Manager -----
	var jwtManager *jwt.Manager
	if s.cfg.DevEphemeralKeys {
		logger.Warn("using ephemeral JWT keys, tokens will not survive a restart")
		jwtManager, err = jwt.BuildEphemeral(s.cfg.JWT)
	} else {
		jwtManager, err = jwt.LoadAndBuild(s.cfg.JWT)
	}
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	sessionManager := session.NewManager(redisClient)

	// ----- Repositories -----
	userRepo := postgres.NewUserRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	entitlementRepo := postgres.NewEntitlementRepository(pool)
	listingRepo := postgres.NewListingRepository(pool)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services -----
	authSvc := authService.NewService(userRepo, jwtManager, sessionManager, logger)
	planSvc := billingService.NewPlanService(planRepo, logger)
	billingSvc := billingService.NewService(planRepo, paymentRepo, subscriptionRepo, entitlementRepo, hub, s.cfg.Payment, logger)
	listingSvc := listingService.NewService(listingRepo, billingSvc, logger)

	// ----- Super Admin -----
	bootCtx, bootCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := authSvc.EnsureSuperAdminExists(bootCtx); err != nil {
		logger.Error("failed to ensure super admin", zap.Error(err))
	}
	bootCancel()

	// ----- Expiry Sweeper -----
	s.sweeper = expiry.NewSweeper(subscriptionRepo, s.cfg.ExpirySchedule, logger)
	if err := s.sweeper.Start(ctx); err != nil {
		return fmt.Errorf("failed to start expiry sweeper: %w", err)
	}

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(authSvc, logger)
	planHandlerInst := billingHandler.NewPlanHandler(planSvc, logger)
	billingHandlerInst := billingHandler.NewBillingHandler(billingSvc, logger)
	listingHandlerInst := listingHandler.NewListingHandler(listingSvc, logger)
	wsHandlerInst := wsHandler.NewWSHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.RequestID(),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:    authHandlerInst,
		PlanHandler:    planHandlerInst,
		BillingHandler: billingHandlerInst,
		ListingHandler: listingHandlerInst,
		WSHandler:      wsHandlerInst,
		AuthMiddleware: authMiddleware,
	}
	SetupRouter(s.engine, handlers)

	// ----- Start HTTP -----
	s.httpServer = &http.Server{
		Addr:    s.cfg.HTTPAddr,
		Handler: s.engine,
	}

	logger.Info("server running", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server, the sweeper and the hub.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.sweeper != nil {
		s.sweeper.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	if s.logger != nil {
		defer s.logger.Sync()
	}
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
