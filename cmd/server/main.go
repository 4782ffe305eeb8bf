package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"mingle/internal/cache"
	"mingle/internal/events"
	"mingle/internal/graph"
	"mingle/internal/httpapi"
	"mingle/internal/relationship"
	"mingle/pkg/config"
	"mingle/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting relationship API server...")

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify Neo4j connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver, logger.Named("graph"))
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Warn("Failed to apply schema constraints (may already exist)", zap.Error(err))
	}

	// Redis backs the suggestion dedup cache
	redisClient, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	store := cache.NewRedisStore(redisClient)

	// NATS is optional: without it follow events are dropped, nothing else
	// changes.
	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = nats.Connect(cfg.NATSURL)
		if err != nil {
			log.Warn("Failed to connect to NATS, follow events disabled", zap.Error(err))
			natsConn = nil
		} else {
			defer natsConn.Drain()
		}
	}
	publisher := events.NewPublisher(natsConn, cfg.FollowEventSubject, logger.Named("events"))

	// Wire up the relationship services
	status := relationship.NewStatusService(repo)
	enricher := relationship.NewEnricher(repo, status, logger.Named("enrich"))
	followSvc := relationship.NewFollowService(repo, status, enricher, publisher, logger.Named("follow"))
	blockSvc := relationship.NewBlockService(repo, status, enricher, logger.Named("block"))
	suggestSvc := relationship.NewSuggestionService(
		repo, store, enricher, logger.Named("suggest"),
		cfg.SuggestionTTL, cfg.InterestSuggestionTTL,
	)
	mutualSvc := relationship.NewMutualService(repo, enricher, logger.Named("mutual"))

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	handler := httpapi.NewHandler(repo, followSvc, blockSvc, suggestSvc, mutualSvc, logger.Named("http"))
	router := httpapi.NewRouter(handler, log)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}
