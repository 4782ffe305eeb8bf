package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"mingle/pkg/errors"
)

// ============================================================================
// User Operations
// ============================================================================

// UpsertUser creates a user node or refreshes its profile fields. Counters are
// initialized to zero on create and never touched on match; only the follow
// operations move them.
func (r *Repository) UpsertUser(ctx context.Context, user UserNode) (*UserNode, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MERGE (u:User {user_id: $userID})
		ON CREATE SET
			u.username = $username,
			u.display_name = $displayName,
			u.role = $role,
			u.avatar_reference = $avatar,
			u.following_number = 0,
			u.followers_number = 0,
			u.created_at = datetime()
		ON MATCH SET
			u.username = CASE WHEN $username <> '' THEN $username ELSE u.username END,
			u.display_name = CASE WHEN $displayName <> '' THEN $displayName ELSE u.display_name END,
			u.role = CASE WHEN $role <> '' THEN $role ELSE u.role END,
			u.avatar_reference = CASE WHEN $avatar <> '' THEN $avatar ELSE u.avatar_reference END
		RETURN u AS user
	`

	result, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"userID":      user.UserID,
			"username":    user.Username,
			"displayName": user.DisplayName,
			"role":        user.Role,
			"avatar":      user.AvatarReference,
		})
		if err != nil {
			return nil, err
		}
		record, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		val, _ := record.Get("user")
		if node, ok := userFromValue(val); ok {
			return node, nil
		}
		return nil, fmt.Errorf("unexpected record shape for user %s", user.UserID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	r.logger.Info("user upserted", zap.String("user_id", user.UserID))
	return result.(*UserNode), nil
}

// FindNode fetches a single user node by its external identifier
func (r *Repository) FindNode(ctx context.Context, userID string) (*UserNode, error) {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {user_id: $userID})
		RETURN u AS user
	`

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"userID": userID})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			val, _ := res.Record().Get("user")
			if node, ok := userFromValue(val); ok {
				return node, nil
			}
		}
		if err := res.Err(); err != nil {
			return nil, err
		}
		return nil, errors.NewUserNotFound(userID)
	})
	if err != nil {
		if _, ok := err.(*errors.ErrUserNotFound); ok {
			return nil, err
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return result.(*UserNode), nil
}

// AddInterest tags a user with an interest, creating the tag node if needed
func (r *Repository) AddInterest(ctx context.Context, userID, interest string) error {
	session := r.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (u:User {user_id: $userID})
		MERGE (i:Interest {name: $interest})
		MERGE (u)-[r:INTERESTED_IN]->(i)
		ON CREATE SET r.created_at = datetime()
	`

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx, query, map[string]any{
			"userID":   userID,
			"interest": interest,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to add interest: %w", err)
	}
	return nil
}
