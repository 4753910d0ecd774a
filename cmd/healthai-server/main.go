package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/92kareeem/healthai/internal/config"
	"github.com/92kareeem/healthai/internal/domain/analytics"
	"github.com/92kareeem/healthai/internal/domain/consultation"
	"github.com/92kareeem/healthai/internal/domain/emergency"
	"github.com/92kareeem/healthai/internal/domain/identity"
	"github.com/92kareeem/healthai/internal/domain/monitoring"
	"github.com/92kareeem/healthai/internal/domain/records"
	"github.com/92kareeem/healthai/internal/domain/triage"
	"github.com/92kareeem/healthai/internal/platform/auth"
	"github.com/92kareeem/healthai/internal/platform/db"
	"github.com/92kareeem/healthai/internal/platform/ipfs"
	"github.com/92kareeem/healthai/internal/platform/middleware"
	"github.com/92kareeem/healthai/internal/platform/notification"
	"github.com/92kareeem/healthai/internal/platform/phi"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "healthai-server",
		Short: "Telemedicine and triage API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func runServer() error {
	// Logger
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	// Config
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	// Database
	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	// PHI encryption (optional in development)
	var encryptor *phi.Encryptor
	if cfg.PHIKey != "" {
		encryptor, err = phi.NewEncryptorFromHex(cfg.PHIKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create PHI encryptor")
		}
		logger.Info().Msg("PHI field-level encryption enabled")
	} else {
		logger.Warn().Msg("PHI_ENCRYPTION_KEY not set; PHI field-level encryption is disabled")
	}

	// Triage reference tables
	ref := triage.DefaultReference()
	if cfg.TriageRefFile != "" {
		ref, err = triage.LoadFile(cfg.TriageRefFile)
		if err != nil {
			logger.Fatal().Err(err).Str("path", cfg.TriageRefFile).Msg("failed to load triage reference file")
		}
		logger.Info().Str("path", cfg.TriageRefFile).Msg("triage reference loaded from file")
	}

	// File storage: Pinata when configured, in-memory otherwise
	var fileStore ipfs.FileStore
	maxUpload := cfg.MaxUploadMB * 1024 * 1024
	if cfg.PinataAPIKey != "" {
		fileStore = ipfs.NewPinataClient(ipfs.PinataConfig{
			APIKey:     cfg.PinataAPIKey,
			SecretKey:  cfg.PinataSecretKey,
			BaseURL:    cfg.PinataBaseURL,
			GatewayURL: cfg.IPFSGatewayURL,
		})
		logger.Info().Msg("IPFS pinning via Pinata enabled")
	} else {
		fileStore = ipfs.NewMemoryStore(maxUpload)
		logger.Warn().Msg("PINATA_API_KEY not set; using in-memory file store")
	}

	// Notifications. The mock senders log instead of delivering; swap in real
	// providers here when credentials are available.
	notifier := notification.NewManager(
		&notification.MockEmailSender{},
		&notification.MockSMSSender{},
		notification.NewTemplateEngine(),
	)

	// Sessions
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.SessionTTLHours)*time.Hour)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(pool))

	// API group with rate limiting; protected subgroup requires a session.
	apiV1 := e.Group("/api/v1")
	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
	}
	apiV1.Use(middleware.RateLimit(rateLimitCfg))

	protected := e.Group("/api/v1")
	protected.Use(middleware.RateLimit(rateLimitCfg))
	protected.Use(auth.Middleware(issuer))

	// -- Register domain handlers --

	// Identity: registration and wallet login are public, the rest requires
	// a session.
	identityRepo := identity.NewRepoPG(pool)
	identitySvc := identity.NewService(identityRepo, issuer, encryptor, logger)
	identityHandler := identity.NewHandler(identitySvc)
	identityHandler.RegisterPublicRoutes(apiV1)
	identityHandler.RegisterRoutes(protected)

	// Triage
	triageRepo := triage.NewRepoPG(pool)
	triageSvc := triage.NewService(triageRepo, ref, logger)
	triage.NewHandler(triageSvc).RegisterRoutes(protected.Group("/triage"))

	// Emergency (depends on identity for doctor broadcast)
	emergencyRepo := emergency.NewRepoPG(pool)
	emergencySvc := emergency.NewService(emergencyRepo, notifier, identitySvc, logger)
	emergency.NewHandler(emergencySvc).RegisterRoutes(protected)

	// Monitoring (escalates emergencies through the emergency service)
	monitoringRepo := monitoring.NewRepoPG(pool)
	monitoringSvc := monitoring.NewService(monitoringRepo, triageSvc, emergencySvc, logger)
	monitoring.NewHandler(monitoringSvc).RegisterRoutes(protected)

	// Consultations
	consultationRepo := consultation.NewRepoPG(pool)
	consultationSvc := consultation.NewService(consultationRepo, notifier, identitySvc, logger)
	consultation.NewHandler(consultationSvc).RegisterRoutes(protected)

	// Medical records
	recordsRepo := records.NewRepoPG(pool)
	recordsSvc := records.NewService(recordsRepo, fileStore, encryptor, maxUpload, logger)
	records.NewHandler(recordsSvc).RegisterRoutes(protected)

	// Analytics
	analyticsRepo := analytics.NewRepoPG(pool)
	analyticsSvc := analytics.NewService(analyticsRepo, logger)
	analytics.NewHandler(analyticsSvc).RegisterRoutes(protected)

	// Start server with graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
