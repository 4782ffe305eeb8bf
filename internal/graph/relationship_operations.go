package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// ============================================================================
// Relationship Edge Operations
// ============================================================================

// ErrEdgeNotFound is returned by delete operations when the targeted edge
// does not exist.
type ErrEdgeNotFound struct {
	From, To string
	Type     EdgeType
}

func (e ErrEdgeNotFound) Error() string {
	return fmt.Sprintf("no %s edge from %s to %s", e.Type, e.From, e.To)
}

// RelationshipExists reports whether a directed edge of the given type exists
func (r *Repository) RelationshipExists(ctx context.Context, fromID, toID string, edgeType EdgeType) (bool, error) {
	if !edgeType.Valid() {
		return false, fmt.Errorf("unknown edge type: %s", edgeType)
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := fmt.Sprintf(`
		MATCH (a:User {user_id: $fromID}), (b:User {user_id: $toID})
		RETURN EXISTS((a)-[:%s]->(b)) AS present
	`, edgeType)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"fromID": fromID,
			"toID":   toID,
		})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			present, _ := res.Record().Get("present")
			if b, ok := present.(bool); ok {
				return b, nil
			}
		}
		// No record means one of the nodes does not exist
		return false, res.Err()
	})
	if err != nil {
		return false, fmt.Errorf("failed to check %s edge: %w", edgeType, err)
	}
	return result.(bool), nil
}

// CreateFollow creates a FOLLOWING edge and bumps both counters in the same
// statement, so the counts cannot drift from the edge set under concurrency.
func (r *Repository) CreateFollow(ctx context.Context, fromID, toID string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {user_id: $fromID})
		MATCH (b:User {user_id: $toID})
		MERGE (a)-[r:FOLLOWING]->(b)
		ON CREATE SET
			r.created_at = datetime(),
			a.following_number = coalesce(a.following_number, 0) + 1,
			b.followers_number = coalesce(b.followers_number, 0) + 1
		RETURN r
	`

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"fromID": fromID,
			"toID":   toID,
		})
		if err != nil {
			return nil, err
		}
		// Single fails when either node is missing
		_, err = res.Single(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create follow edge: %w", err)
	}
	return nil
}

// DeleteFollow removes a FOLLOWING edge and decrements both counters in the
// same statement.
func (r *Repository) DeleteFollow(ctx context.Context, fromID, toID string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {user_id: $fromID})-[r:FOLLOWING]->(b:User {user_id: $toID})
		SET a.following_number = coalesce(a.following_number, 1) - 1,
		    b.followers_number = coalesce(b.followers_number, 1) - 1
		DELETE r
		RETURN count(r) AS removed
	`

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"fromID": fromID,
			"toID":   toID,
		})
		if err != nil {
			return int64(0), err
		}
		if res.Next(ctx) {
			removed, _ := res.Record().Get("removed")
			if n, ok := removed.(int64); ok {
				return n, nil
			}
		}
		return int64(0), res.Err()
	})
	if err != nil {
		return fmt.Errorf("failed to delete follow edge: %w", err)
	}
	if result.(int64) == 0 {
		return ErrEdgeNotFound{From: fromID, To: toID, Type: EdgeFollowing}
	}
	return nil
}

// CreateBlock creates a BLOCKED edge. Counters are untouched; blocking does
// not change follow counts by itself.
func (r *Repository) CreateBlock(ctx context.Context, fromID, toID string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {user_id: $fromID})
		MATCH (b:User {user_id: $toID})
		MERGE (a)-[r:BLOCKED]->(b)
		ON CREATE SET r.created_at = datetime()
		RETURN r
	`

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"fromID": fromID,
			"toID":   toID,
		})
		if err != nil {
			return nil, err
		}
		_, err = res.Single(ctx)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create block edge: %w", err)
	}
	return nil
}

// DeleteBlock removes a BLOCKED edge in the stored direction only
func (r *Repository) DeleteBlock(ctx context.Context, fromID, toID string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (a:User {user_id: $fromID})-[r:BLOCKED]->(b:User {user_id: $toID})
		DELETE r
		RETURN count(r) AS removed
	`

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"fromID": fromID,
			"toID":   toID,
		})
		if err != nil {
			return int64(0), err
		}
		if res.Next(ctx) {
			removed, _ := res.Record().Get("removed")
			if n, ok := removed.(int64); ok {
				return n, nil
			}
		}
		return int64(0), res.Err()
	})
	if err != nil {
		return fmt.Errorf("failed to delete block edge: %w", err)
	}
	if result.(int64) == 0 {
		return ErrEdgeNotFound{From: fromID, To: toID, Type: EdgeBlocked}
	}
	return nil
}

// PagedNeighbors lists users adjacent to userID over edges of the given type,
// walking outgoing or incoming edges, ordered by user id for stable pages.
func (r *Repository) PagedNeighbors(ctx context.Context, userID string, edgeType EdgeType, dir Direction, page, limit int) ([]UserNode, error) {
	if !edgeType.Valid() {
		return nil, fmt.Errorf("unknown edge type: %s", edgeType)
	}

	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	pattern := fmt.Sprintf(`(u:User {user_id: $userID})-[:%s]->(n:User)`, edgeType)
	if dir == DirectionIncoming {
		pattern = fmt.Sprintf(`(u:User {user_id: $userID})<-[:%s]-(n:User)`, edgeType)
	}

	query := fmt.Sprintf(`
		MATCH %s
		WITH n ORDER BY n.user_id
		SKIP $skip LIMIT $limit
		RETURN n AS user
	`, pattern)

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
		return nil, fmt.Errorf("failed to list %s neighbors: %w", edgeType, err)
	}
	return result.([]UserNode), nil
}
