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

	"github.com/frahmantamala/hr-attendance/internal"
	"github.com/frahmantamala/hr-attendance/internal/auth"
	"github.com/frahmantamala/hr-attendance/internal/core/events"
	"github.com/frahmantamala/hr-attendance/internal/employee"
	employeePostgres "github.com/frahmantamala/hr-attendance/internal/employee/postgres"
	"github.com/frahmantamala/hr-attendance/internal/identity"
	identityPostgres "github.com/frahmantamala/hr-attendance/internal/identity/postgres"
	"github.com/frahmantamala/hr-attendance/internal/session"
	sessionPostgres "github.com/frahmantamala/hr-attendance/internal/session/postgres"
	"github.com/frahmantamala/hr-attendance/internal/token"
	"github.com/frahmantamala/hr-attendance/internal/transport/rest"
	"github.com/frahmantamala/hr-attendance/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server that fronts the identity and session API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config          *internal.Config
	DB              *sqlx.DB
	GormDB          *gorm.DB
	Router          *chi.Mux
	AuthHandler     *auth.Handler
	EmployeeHandler *employee.Handler
	Sweeper         *session.Sweeper
	Logger          *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.AuthHandler, deps.EmployeeHandler, deps.Config.Server.AllowedOrigins, deps.Logger)

	if err := deps.Sweeper.Start(context.Background()); err != nil {
		slog.Error("Failed to start session sweeper", "error", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
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
		deps.Sweeper.Stop()
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

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	normalizer := identity.NewNormalizer(config.Identity.KeySeparators, config.Identity.KeyPrefixes)
	identityRepo := identityPostgres.NewRepository(gormDB, normalizer, config.Database.QueryTimeout)
	resolver := identity.NewResolver(identityRepo, normalizer, lg)

	issuer := token.NewIssuer(
		config.Security.SessionSecret,
		config.Security.AccessTokenTTL,
		config.Security.RememberMeTokenTTL,
		config.Security.MaxTokenTTL,
	)

	registry := session.NewRegistry(sessionPostgres.NewRepository(gormDB, config.Database.QueryTimeout), lg)
	authService := auth.NewService(resolver, identityRepo, issuer, registry, lg)

	// Deactivation cascade: employee management publishes, session
	// revocation subscribes. Session lifetime never exceeds identity
	// lifetime.
	bus := events.NewEventBus(lg)
	bus.Subscribe(events.EventTypeIdentityDeactivated, func(ctx context.Context, event events.Event) error {
		return authService.RevokeAllForIdentity(ctx, events.CanonicalIDFromEvent(event))
	})

	employeeService := employee.NewService(employeePostgres.NewRepository(gormDB, config.Database.QueryTimeout), bus, lg)

	return &Dependencies{
		Config:          config,
		Logger:          lg,
		DB:              db,
		GormDB:          gormDB,
		Router:          chi.NewRouter(),
		AuthHandler:     auth.NewHandler(authService),
		EmployeeHandler: employee.NewHandler(employeeService),
		Sweeper:         session.NewSweeper(registry, config.Session.SweepSchedule, config.Database.QueryTimeout, lg),
	}, nil
}

// initDB initializes the database connection pool
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

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers the ORM over the existing connection pool so both access
// paths share limits.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
