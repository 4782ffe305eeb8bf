package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Search and Common-Connection Operations
// ============================================================================

// CommonConnection returns users X such that fromID follows X and X follows
// toID. A one-directional common-connection query, not a symmetric
// intersection.
func (r *Repository) CommonConnection(ctx context.Context, fromID, toID string) ([]UserNode, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {user_id: $fromID})-[:FOLLOWING]->(x:User)-[:FOLLOWING]->(b:User {user_id: $toID})
		WITH DISTINCT x
		ORDER BY x.user_id
		RETURN x AS user
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"fromID": fromID,
			"toID":   toID,
		})
		if err != nil {
			return nil, err
		}
		return collectUsers(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query common connections: %w", err)
	}
	return result.([]UserNode), nil
}

// SubstringSearch matches a case-insensitive substring against username or
// display name, restricted to the viewer's own followers (incoming) or
// following (outgoing) list.
func (r *Repository) SubstringSearch(ctx context.Context, userID string, dir Direction, query string, page, limit int) ([]UserNode, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	pattern := `(u:User {user_id: $userID})-[:FOLLOWING]->(n:User)`
	if dir == DirectionIncoming {
		pattern = `(u:User {user_id: $userID})<-[:FOLLOWING]-(n:User)`
	}

	cypher := fmt.Sprintf(`
		MATCH %s
		WHERE toLower(n.username) CONTAINS toLower($query)
		   OR toLower(n.display_name) CONTAINS toLower($query)
		WITH DISTINCT n
		ORDER BY n.user_id
		SKIP $skip LIMIT $limit
		RETURN n AS user
	`, pattern)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, map[string]any{
			"userID": userID,
			"query":  query,
			"skip":   page * limit,
			"limit":  limit,
		})
		if err != nil {
			return nil, err
		}
		return collectUsers(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search neighbors: %w", err)
	}
	return result.([]UserNode), nil
}
