package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/example/makeup-recommender/internal/auth"
	"github.com/example/makeup-recommender/internal/cache"
	"github.com/example/makeup-recommender/internal/catalog"
	"github.com/example/makeup-recommender/internal/config"
	"github.com/example/makeup-recommender/internal/faceanalysis"
	"github.com/example/makeup-recommender/internal/grpcclient"
	"github.com/example/makeup-recommender/internal/handlers"
	"github.com/example/makeup-recommender/internal/logging"
	"github.com/example/makeup-recommender/internal/repository"
	"github.com/example/makeup-recommender/internal/tone"
	"github.com/example/makeup-recommender/internal/usecase"
)

const startupTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the upload page and JSON API. Face analysis runs through the
configured analyzer backend; Redis and PostgreSQL are used when configured
and replaced by in-process stores otherwise.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	config.RegisterFlags(serveCmd.Flags())
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(cmd.Context(), startupTimeout)
	defer cancel()

	analyzer, closeAnalyzer, err := initAnalyzer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeAnalyzer()

	classifier, err := tone.NewClassifier(analyzer, cfg.Tone.Thresholds(), logger)
	if err != nil {
		return err
	}

	repo, err := initRepository(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	resultCache, err := initCache(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}

	uc := usecase.NewRecommendationUseCase(catalog.Default(), classifier, repo, resultCache, logger)

	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(logger))
	r.MaxMultipartMemory = handlers.MaxUploadSize

	var adminMiddleware gin.HandlerFunc
	if cfg.JWT.Secret != "" {
		adminMiddleware = auth.RequireAdmin(cfg.JWT.Secret, cfg.JWT.Audience)
	} else {
		logger.Info("jwt.secret not set, admin API disabled")
	}
	handlers.RegisterRoutes(r, uc, adminMiddleware)

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("makeup recommender listening",
		zap.String("addr", cfg.HTTP.Addr),
		zap.String("analyzer", cfg.Analyzer.Backend),
	)
	return serveHTTPServer(server, cfg.HTTP.ShutdownTimeout, logger)
}

func initAnalyzer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (faceanalysis.Analyzer, func(), error) {
	switch cfg.Analyzer.Backend {
	case config.BackendOpenAI:
		return faceanalysis.NewOpenAIAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.Model, logger), func() {}, nil
	default:
		analyzer, conn, err := grpcclient.DialFaceAnalyzer(ctx, cfg.Analyzer.Addr, cfg.Analyzer.Timeout, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to face analyzer: %w", err)
		}
		return analyzer, func() { _ = conn.Close() }, nil
	}
}

func initRepository(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (repository.Repository, error) {
	if cfg.DSN == "" {
		logger.Info("database.dsn not set, keeping analysis history in memory")
		return repository.NewMemoryRepository(), nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("access db handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database ping: %w", err)
	}

	repo := repository.NewGormRepository(db, logger)
	if err := repo.AutoMigrate(ctx); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return repo, nil
}

func initCache(ctx context.Context, cfg config.RedisConfig, logger *zap.Logger) (cache.Cache, error) {
	if cfg.Addr == "" {
		logger.Info("redis.addr not set, caching results in memory")
		return cache.NewMemoryCache(), nil
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection: %w", err)
	}
	return cache.NewRedisCache(client), nil
}
