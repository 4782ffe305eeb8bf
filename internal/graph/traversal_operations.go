package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Multi-Degree Traversal Operations
// ============================================================================

// SecondDegreeCount counts distinct users two FOLLOWING hops away from the
// viewer, excluding the viewer and anyone they already follow.
func (r *Repository) SecondDegreeCount(ctx context.Context, userID string) (int64, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (v:User {user_id: $userID})-[:FOLLOWING]->(:User)-[:FOLLOWING]->(s:User)
		WHERE s.user_id <> $userID
		  AND NOT (v)-[:FOLLOWING]->(s)
		RETURN count(DISTINCT s) AS total
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"userID": userID})
		if err != nil {
			return int64(0), err
		}
		if res.Next(ctx) {
			total, _ := res.Record().Get("total")
			if n, ok := total.(int64); ok {
				return n, nil
			}
		}
		return int64(0), res.Err()
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count second-degree users: %w", err)
	}
	return result.(int64), nil
}

// SecondDegree pages through the second-degree candidate pool, same exclusions
// as SecondDegreeCount, ordered by user id for stable pages.
func (r *Repository) SecondDegree(ctx context.Context, userID string, page, limit int) ([]UserNode, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (v:User {user_id: $userID})-[:FOLLOWING]->(:User)-[:FOLLOWING]->(s:User)
		WHERE s.user_id <> $userID
		  AND NOT (v)-[:FOLLOWING]->(s)
		WITH DISTINCT s
		ORDER BY s.user_id
		SKIP $skip LIMIT $limit
		RETURN s AS user
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"userID": userID,
			"skip":   page * limit,
			"limit":  limit,
		})
		if err != nil {
			return nil, err
		}
		return collectUsers(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query second-degree users: %w", err)
	}
	return result.([]UserNode), nil
}

// ThirdDegree pages through users three FOLLOWING hops away, excluding the
// viewer, anyone already followed, and anyone already reachable at second
// degree (which covers the intermediate hop itself).
func (r *Repository) ThirdDegree(ctx context.Context, userID string, page, limit int) ([]UserNode, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (v:User {user_id: $userID})-[:FOLLOWING]->(:User)-[:FOLLOWING]->(:User)-[:FOLLOWING]->(t:User)
		WHERE t.user_id <> $userID
		  AND NOT (v)-[:FOLLOWING]->(t)
		  AND NOT (v)-[:FOLLOWING]->(:User)-[:FOLLOWING]->(t)
		WITH DISTINCT t
		ORDER BY t.user_id
		SKIP $skip LIMIT $limit
		RETURN t AS user
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"userID": userID,
			"skip":   page * limit,
			"limit":  limit,
		})
		if err != nil {
			return nil, err
		}
		return collectUsers(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query third-degree users: %w", err)
	}
	return result.([]UserNode), nil
}

// SharedInterestUsers pages through users sharing at least one interest tag
// with the viewer, viewer excluded.
func (r *Repository) SharedInterestUsers(ctx context.Context, userID string, page, limit int) ([]UserNode, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (v:User {user_id: $userID})-[:INTERESTED_IN]->(:Interest)<-[:INTERESTED_IN]-(o:User)
		WHERE o.user_id <> $userID
		WITH DISTINCT o
		ORDER BY o.user_id
		SKIP $skip LIMIT $limit
		RETURN o AS user
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"userID": userID,
			"skip":   page * limit,
			"limit":  limit,
		})
		if err != nil {
			return nil, err
		}
		return collectUsers(ctx, res)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query shared-interest users: %w", err)
	}
	return result.([]UserNode), nil
}
