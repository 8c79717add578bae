package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"trendscope/internal/adapter/cache"
	"trendscope/internal/adapter/fetcher"
	"trendscope/internal/adapter/storage"
	"trendscope/internal/config"
	"trendscope/internal/domain/platform"
	"trendscope/internal/domain/trend"
	"trendscope/internal/logging"
	"trendscope/internal/monitoring"
	"trendscope/internal/server"
	"trendscope/internal/service/cluster"
	"trendscope/internal/service/engine"
	"trendscope/internal/service/insight"
	"trendscope/internal/service/normalize"
	"trendscope/internal/service/score"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.NewLoggerWithService("trendscope-api")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to NATS")
	}
	defer natsConn.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	registry := prometheus.NewRegistry()
	metrics := monitoring.NewMetrics(registry)

	runStore := storage.NewRunStore(db)
	runCache := cache.NewRunCache(redisClient, cfg.Redis.TTL)

	orchestrator := engine.NewOrchestrator(engine.Options{
		Fetchers:   buildFetchers(cfg.Fetch, logger),
		Normalizer: normalize.NewNormalizer(cfg.Analysis.TopKeywords),
		Clusterer: cluster.NewClusterer(cluster.Config{
			KeywordThreshold: cfg.Analysis.KeywordThreshold,
			TitleThreshold:   cfg.Analysis.TitleThreshold,
		}),
		Validator: cluster.NewValidator(cfg.Analysis.MinPlatforms),
		Scorer: score.NewEngine(score.Config{
			SearchWeight:      cfg.Analysis.SearchWeight,
			VideoWeight:       cfg.Analysis.VideoWeight,
			ForumWeight:       cfg.Analysis.ForumWeight,
			MicroblogWeight:   cfg.Analysis.MicroblogWeight,
			BreadthWeight:     cfg.Analysis.BreadthWeight,
			EngagementWeight:  cfg.Analysis.EngagementWeight,
			ItemCountWeight:   cfg.Analysis.ItemCountWeight,
			EngagementDivisor: cfg.Analysis.EngagementDivisor,
			ItemCountDivisor:  cfg.Analysis.ItemCountDivisor,
			GrowthCap:         cfg.Analysis.GrowthCap,
		}),
		Gaps:        insight.NewGapAnalyzer(),
		Influencers: insight.NewInfluencerAnalyzer(),
		Store:       runStore,
		Events:      natsConn,
		Metrics:     metrics,
		Logger:      logger,
		DefaultLimits: trend.Limits{
			MaxItemsPerPlatform: cfg.Fetch.MaxItemsPerPlatform,
			PerPlatformTimeout:  cfg.Fetch.PerPlatformTimeout,
			OverallTimeout:      cfg.Fetch.OverallTimeout,
		},
		MinQualityScore: cfg.Analysis.MinQualityScore,
		EventsTopic:     cfg.NATS.EventsTopic,
	})

	httpServer := server.NewServer(cfg.Server, server.Deps{
		Runner:      orchestrator,
		RunStore:    runStore,
		RunCache:    runCache,
		NATS:        natsConn,
		EventsTopic: cfg.NATS.EventsTopic,
		Gatherer:    registry,
		Logger:      logger,
	})

	go func() {
		logger.WithFields(logging.Fields{
			"host": cfg.Server.Host,
			"port": cfg.Server.Port,
		}).Info("Starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	<-shutdown
	logger.Info("Shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown error")
	}

	logger.Info("Shutdown complete")
}

// buildFetchers registers a fetcher per platform. Platforms whose
// credentials are missing are skipped; runs will report them degraded
// instead of failing outright.
func buildFetchers(cfg config.FetchConfig, logger *logrus.Logger) []platform.Fetcher {
	fetchers := []platform.Fetcher{
		fetcher.NewSearchFetcher(cfg.UserAgent),
		fetcher.NewForumFetcher(cfg.UserAgent),
	}

	if cfg.YouTubeAPIKey != "" {
		fetchers = append(fetchers, fetcher.NewVideoFetcher(cfg.YouTubeAPIKey))
	} else {
		logger.Warn("YOUTUBE_API_KEY not set; video platform disabled")
	}

	if cfg.TwitterBearerToken != "" {
		fetchers = append(fetchers, fetcher.NewMicroblogFetcher(cfg.TwitterBearerToken))
	} else {
		logger.Warn("TWITTER_BEARER_TOKEN not set; microblog platform disabled")
	}

	return fetchers
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig, logger *logrus.Logger) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}
