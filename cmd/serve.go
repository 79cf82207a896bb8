package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cppla/miniblog/auth"
	"github.com/cppla/miniblog/config"
	"github.com/cppla/miniblog/metrics"
	"github.com/cppla/miniblog/migrations"
	"github.com/cppla/miniblog/repositories"
	"github.com/cppla/miniblog/repositories/gormstore"
	"github.com/cppla/miniblog/repositories/postgrest"
	"github.com/cppla/miniblog/routes"
	"github.com/cppla/miniblog/utils"
)

type serveOptions struct {
	migrate bool
}

func newServeCmd() *cobra.Command {
	var opts serveOptions
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "bring the SQL schema up to date before serving")
	return cmd
}

// backend is a storage implementation serving both resources.
type backend interface {
	repositories.PostBackend
	repositories.CommentBackend
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := utils.InitLogger(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = utils.Logger.Sync() }()
	log := utils.Logger

	provider := metrics.Noop()
	if cfg.MetricsEnabled {
		provider = metrics.NewPrometheusProvider()
	}

	store, closeStore, err := openBackend(cfg, opts.migrate, log)
	if err != nil {
		return err
	}
	defer closeStore()

	redisClient := utils.NewRedis(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	r := routes.SetupRouter(cfg, routes.Deps{
		Posts:    repositories.NewPostsRepository(store, utils.NewRedisCache(redisClient), log, provider),
		Comments: repositories.NewCommentsRepository(store, log, provider),
		Verifier: newVerifier(cfg),
		Metrics:  provider,
		Logger:   log,
	})

	log.Info("Starting server",
		zap.String("port", cfg.AppPort),
		zap.String("storage", cfg.StorageDriver),
		zap.String("auth", cfg.AuthProvider))
	return utils.GraceServer(cmd.Context(), ":"+cfg.AppPort, r)
}

func newVerifier(cfg config.AppConfig) auth.TokenVerifier {
	if cfg.AuthProvider == config.AuthProviderJWT {
		return auth.NewJWTVerifier(cfg.JWTSecret)
	}
	return auth.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseKey, nil)
}

// openBackend selects the storage implementation for cfg.StorageDriver. The
// returned func releases its resources.
func openBackend(cfg config.AppConfig, migrate bool, log *zap.Logger) (backend, func(), error) {
	if cfg.StorageDriver == config.DriverPostgREST {
		return postgrest.New(cfg.SupabaseURL, cfg.SupabaseKey, nil), func() {}, nil
	}

	if migrate && cfg.StorageDriver == config.DriverPostgres {
		if err := migrations.Up(cfg.DatabaseURL, log); err != nil {
			return nil, nil, err
		}
	}

	db, err := config.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	if migrate && cfg.StorageDriver != config.DriverPostgres {
		if err := gormstore.AutoMigrate(db); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
	}
	return gormstore.New(db, cfg.StorageRole), closeDB, nil
}
