package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/hr-attendance/internal/session"
	sessionPostgres "github.com/frahmantamala/hr-attendance/internal/session/postgres"
	"github.com/frahmantamala/hr-attendance/pkg/logger"
	"github.com/spf13/cobra"
)

var sweepSchedule string

var sweeperCmd = &cobra.Command{
	Use:   "sweeper",
	Short: "Start the session expiry sweeper",
	Long:  `Start the standalone worker that marks expired sessions inactive on a schedule`,
	Run: func(cmd *cobra.Command, args []string) {
		startSweeper()
	},
}

func init() {
	sweeperCmd.Flags().StringVar(&sweepSchedule, "schedule", "", "Cron schedule for the sweep (overrides config)")
}

func startSweeper() {
	config, err := loadConfig(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.L()

	sqlDB, err := initDB(config.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	gormDB, err := initGorm(sqlDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize ORM: %v\n", err)
		os.Exit(1)
	}

	schedule := getStringFlag(sweepSchedule, config.Session.SweepSchedule)
	registry := session.NewRegistry(sessionPostgres.NewRepository(gormDB, config.Database.QueryTimeout), lg)
	sweeper := session.NewSweeper(registry, schedule, config.Database.QueryTimeout, lg)

	if err := sweeper.Start(context.Background()); err != nil {
		lg.Error("failed to start sweeper", "error", err)
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lg.Info("session sweeper is running. Press Ctrl+C to stop.")

	sig := <-sigChan
	lg.Info("received signal, shutting down sweeper", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	shutdownDone := make(chan struct{})
	go func() {
		sweeper.Stop()
		close(shutdownDone)
	}()

	select {
	case <-shutdownDone:
		lg.Info("sweeper shutdown complete")
	case <-ctx.Done():
		lg.Warn("shutdown timeout reached, forcing exit")
	}
}

func getStringFlag(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return configValue
}
