package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// Repository handles all Neo4j database operations
type Repository struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewRepository creates a new graph repository
func NewRepository(driver neo4j.DriverWithContext, log *zap.Logger) *Repository {
	return &Repository{
		driver: driver,
		logger: log,
	}
}

// Close closes the Neo4j driver connection
func (r *Repository) Close() error {
	return r.driver.Close(context.Background())
}

// EnsureSchema creates the uniqueness constraints the repository relies on.
// Constraints double as indexes, so user lookups by id stay O(1).
func (r *Repository) EnsureSchema(ctx context.Context) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	constraints := []string{
		`CREATE CONSTRAINT user_id_unique IF NOT EXISTS FOR (u:User) REQUIRE u.user_id IS UNIQUE`,
		`CREATE CONSTRAINT interest_name_unique IF NOT EXISTS FOR (i:Interest) REQUIRE i.name IS UNIQUE`,
	}

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, query := range constraints {
			if _, err := tx.Run(ctx, query, nil); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}
	return nil
}

// Record parsing helpers

func userFromValue(val any) (*UserNode, bool) {
	node, ok := val.(neo4j.Node)
	if !ok {
		return nil, false
	}
	return userFromProps(node.Props), true
}

func userFromProps(props map[string]any) *UserNode {
	return &UserNode{
		UserID:          getStringProp(props, "user_id"),
		Username:        getStringProp(props, "username"),
		DisplayName:     getStringProp(props, "display_name"),
		Role:            getStringProp(props, "role"),
		AvatarReference: getStringProp(props, "avatar_reference"),
		FollowingNumber: getInt64Prop(props, "following_number"),
		FollowersNumber: getInt64Prop(props, "followers_number"),
	}
}

func getStringProp(props map[string]any, key string) string {
	if val, ok := props[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

func getInt64Prop(props map[string]any, key string) int64 {
	if val, ok := props[key]; ok {
		if n, ok := val.(int64); ok {
			return n
		}
	}
	return 0
}

// collectUsers drains a result stream of records shaped `RETURN <node> AS user`.
func collectUsers(ctx context.Context, res neo4j.ResultWithContext) ([]UserNode, error) {
	var users []UserNode
	for res.Next(ctx) {
		val, ok := res.Record().Get("user")
		if !ok {
			continue
		}
		if user, ok := userFromValue(val); ok {
			users = append(users, *user)
		}
	}
	return users, res.Err()
}
