package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jroneil/MI-Tool/internal/application/services"
	"github.com/jroneil/MI-Tool/internal/config"
	"github.com/jroneil/MI-Tool/internal/domain/ports"
	"github.com/jroneil/MI-Tool/internal/infrastructure/cache"
	"github.com/jroneil/MI-Tool/internal/infrastructure/database"
	"github.com/jroneil/MI-Tool/internal/infrastructure/persistence"
	"github.com/jroneil/MI-Tool/internal/interfaces/rest"
	"github.com/jroneil/MI-Tool/internal/logging"
	"github.com/jroneil/MI-Tool/pkg/auth"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "atlas",
		Short:         "No-code data builder API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(newServeCommand(&envFile), newMigrateCommand(&envFile))
	return root
}

func loadConfig(envFile string) (*config.Config, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Logger.Level, cfg.Logger.Format)
	return cfg, nil
}

func newMigrateCommand(envFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database tables if they do not exist",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			conn, err := database.Open(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := persistence.Migrate(cmd.Context(), conn.DB()); err != nil {
				return err
			}
			logrus.Info("✅ schema is up to date")
			return nil
		},
	}
}

func newServeCommand(envFile *string) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*envFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, migrate)
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", true, "create missing tables on startup")
	return cmd
}

func newSchemaCache(ctx context.Context, cfg *config.Config) (ports.SchemaCache, func()) {
	if cfg.RedisEnabled() {
		rc, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err == nil {
			return cache.NewRedisCache(rc, cfg.SchemaCacheTTL), func() { _ = rc.Close() }
		}
		logrus.WithError(err).Warn("⚠️ redis unavailable, using in-memory schema cache")
	}
	return cache.NewMemoryCache(cfg.SchemaCacheTTL), func() {}
}

func serve(ctx context.Context, cfg *config.Config, migrate bool) error {
	conn, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer conn.Close()

	if migrate {
		if err := persistence.Migrate(ctx, conn.DB()); err != nil {
			return err
		}
	}

	schemaCache, closeCache := newSchemaCache(ctx, cfg)
	defer closeCache()

	db := conn.DB()
	svcMgr := services.NewServiceManager(services.Dependencies{
		Users:            persistence.NewUserRepository(db),
		Workspaces:       persistence.NewWorkspaceRepository(db),
		Models:           persistence.NewModelRepository(db),
		Records:          persistence.NewRecordRepository(db),
		Tx:               persistence.NewTransactionManager(db, cfg.TxMaxRetries),
		Cache:            schemaCache,
		Tokens:           auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL),
		RecordLimit:      cfg.RecordLimit,
		UsageSchedule:    cfg.UsageSchedule,
		UsageWarnPercent: cfg.UsageWarnPercent,
	})
	logrus.Info("🔧 service manager initialized")

	if err := svcMgr.StartBackground(); err != nil {
		return err
	}
	defer svcMgr.StopBackground()

	if logrus.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           rest.NewRouter(rest.APIFromServices(svcMgr), cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("port", cfg.Port).Info("🚀 server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	logrus.Info("🛑 shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
