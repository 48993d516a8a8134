package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/nandasafiq/hospital-management/internal"
	"github.com/nandasafiq/hospital-management/internal/audit"
	auditPostgres "github.com/nandasafiq/hospital-management/internal/audit/postgres"
	"github.com/nandasafiq/hospital-management/internal/auth"
	authPostgres "github.com/nandasafiq/hospital-management/internal/auth/postgres"
	"github.com/nandasafiq/hospital-management/internal/core/events"
	"github.com/nandasafiq/hospital-management/internal/core/slidingwindow"
	"github.com/nandasafiq/hospital-management/internal/ratelimit"
	"github.com/nandasafiq/hospital-management/internal/transport/rest"
	"github.com/nandasafiq/hospital-management/internal/user"
	userPostgres "github.com/nandasafiq/hospital-management/internal/user/postgres"
	"github.com/nandasafiq/hospital-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config       *internal.Config
	DB           *sqlx.DB
	GormDB       *gorm.DB
	Router       *chi.Mux
	Logger       *slog.Logger
	Limiter      *ratelimit.Limiter
	Auditor      *audit.Service
	AuthHandler  *auth.Handler
	Resolver     *auth.Resolver
	UserHandler  *user.Handler
	AuditHandler *audit.Handler
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.DB.DB,
		deps.Limiter,
		deps.Auditor,
		deps.AuthHandler,
		deps.Resolver,
		deps.UserHandler,
		deps.AuditHandler,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	// Audit pipeline: events fan out on the bus, the postgres sink appends
	// them to activity_logs.
	bus := events.NewBus(lg)
	auditRepo := auditPostgres.NewRepository(gormDB)
	auditRepo.SubscribeTo(bus)
	auditor := audit.NewService(config.Audit.Enabled, bus, lg)

	// Security core.
	attemptStore := slidingwindow.NewMemoryStore()
	tracker := auth.NewFailedAttemptTracker(config.Security, attemptStore, lg)
	policy := auth.NewPasswordPolicy(config.Security)
	resolver := auth.NewResolver(lg)
	tokens := auth.NewSessionTokenGenerator(config.Security.SessionSecret, config.Security.SessionDuration)

	limiter, err := ratelimit.New(config.RateLimit, slidingwindow.NewMemoryStore())
	if err != nil {
		return nil, fmt.Errorf("failed to build rate limiter: %w", err)
	}

	authRepo := authPostgres.NewRepository(gormDB)
	authService := auth.NewService(authRepo, tracker, policy, tokens, resolver, auditor, config.Security.BCryptCost, lg)
	authHandler := auth.NewHandler(authService)

	userRepo := userPostgres.NewRepository(gormDB)
	userService := user.NewService(userRepo, policy, auditor, config.Security.BCryptCost, lg)
	userHandler := user.NewHandler(userService)

	auditHandler := audit.NewHandler(auditRepo)

	return &Dependencies{
		Config:       config,
		Logger:       lg,
		DB:           db,
		GormDB:       gormDB,
		Router:       chi.NewRouter(),
		Limiter:      limiter,
		Auditor:      auditor,
		AuthHandler:  authHandler,
		Resolver:     resolver,
		UserHandler:  userHandler,
		AuditHandler: auditHandler,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
