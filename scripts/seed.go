package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"mingle/internal/graph"
	"mingle/pkg/config"
	"mingle/pkg/logger"
)

// Seeds a small demo graph: a handful of users, a follow topology deep
// enough to produce 2nd and 3rd degree suggestions, and shared interests.
func main() {
	userCount := flag.Int("users", 12, "Number of demo users to create")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting database seeding...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	// Initialize Neo4j driver
	driver, err := neo4j.NewDriverWithContext(
		cfg.Neo4jURI,
		neo4j.BasicAuth(cfg.Neo4jUser, cfg.Neo4jPassword, ""),
	)
	if err != nil {
		log.Fatal("Failed to create Neo4j driver", zap.Error(err))
	}
	defer driver.Close(context.Background())

	// Verify connection
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		log.Fatal("Failed to verify Neo4j connectivity", zap.Error(err))
	}

	repo := graph.NewRepository(driver, logger.Named("graph"))

	log.Info("Applying schema constraints...")
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Warn("Failed to apply some constraints (may already exist)", zap.Error(err))
	}

	interests := []string{"music", "hiking", "chess", "cooking"}

	// Create users
	ids := make([]string, *userCount)
	for i := range ids {
		user := graph.UserNode{
			UserID:      uuid.NewString(),
			Username:    fmt.Sprintf("demo_user_%02d", i),
			DisplayName: fmt.Sprintf("Demo User %02d", i),
			Role:        "user",
		}
		if _, err := repo.UpsertUser(ctx, user); err != nil {
			log.Fatal("Failed to create user", zap.String("username", user.Username), zap.Error(err))
		}
		ids[i] = user.UserID

		if err := repo.AddInterest(ctx, user.UserID, interests[i%len(interests)]); err != nil {
			log.Warn("Failed to add interest", zap.String("user_id", user.UserID), zap.Error(err))
		}
	}
	log.Info("Created users", zap.Int("count", len(ids)))

	// Chain follows plus a few shortcuts so the traversal tiers have
	// something to return for the first users.
	follows := 0
	for i := 0; i+1 < len(ids); i++ {
		if err := repo.CreateFollow(ctx, ids[i], ids[i+1]); err != nil {
			log.Warn("Failed to create follow", zap.Error(err))
			continue
		}
		follows++
	}
	for i := 0; i+3 < len(ids); i += 3 {
		if err := repo.CreateFollow(ctx, ids[i], ids[i+3]); err != nil {
			log.Warn("Failed to create follow", zap.Error(err))
			continue
		}
		follows++
	}
	log.Info("Created follow edges", zap.Int("count", follows))

	log.Info("Seeding complete")
}
