// Package relationship implements the social graph core: follow/block state
// transitions, relationship enrichment, mutual followers, follower search,
// and the friend-of-friend suggestion engine with cross-page deduplication.
//
// Components take their collaborators (graph backend, cache store, event
// notifier, logger) as constructor parameters and are assembled once at
// process start. Public operations never propagate errors to the caller;
// every failure is converted to a result envelope at the operation boundary.
package relationship

import (
	"context"
	"net/http"

	"mingle/internal/graph"
)

// GraphBackend is the traversal and mutation surface the core needs from the
// graph store. *graph.Repository satisfies it; tests substitute fakes.
type GraphBackend interface {
	FindNode(ctx context.Context, userID string) (*graph.UserNode, error)
	RelationshipExists(ctx context.Context, fromID, toID string, edgeType graph.EdgeType) (bool, error)
	CreateFollow(ctx context.Context, fromID, toID string) error
	DeleteFollow(ctx context.Context, fromID, toID string) error
	CreateBlock(ctx context.Context, fromID, toID string) error
	DeleteBlock(ctx context.Context, fromID, toID string) error
	PagedNeighbors(ctx context.Context, userID string, edgeType graph.EdgeType, dir graph.Direction, page, limit int) ([]graph.UserNode, error)
	SecondDegree(ctx context.Context, userID string, page, limit int) ([]graph.UserNode, error)
	SecondDegreeCount(ctx context.Context, userID string) (int64, error)
	ThirdDegree(ctx context.Context, userID string, page, limit int) ([]graph.UserNode, error)
	CommonConnection(ctx context.Context, fromID, toID string) ([]graph.UserNode, error)
	SubstringSearch(ctx context.Context, userID string, dir graph.Direction, query string, page, limit int) ([]graph.UserNode, error)
	SharedInterestUsers(ctx context.Context, userID string, page, limit int) ([]graph.UserNode, error)
}

// Notifier emits relationship events. Emission is fire and forget; it is
// never awaited for correctness.
type Notifier interface {
	FollowCreated(followerID, followeeID string)
}

// EnrichedUser is a user node annotated with its relationship to the viewing
// user. Constructed fresh per request, never persisted.
type EnrichedUser struct {
	graph.UserNode
	IsFollowing           bool  `json:"is_following"`
	IsFollower            bool  `json:"is_follower"`
	IsBlocked             bool  `json:"is_blocked"`
	IsBlockedBy           bool  `json:"is_blocked_by"`
	MutualFollowersNumber int64 `json:"mutual_followers_number"`
}

// PageMeta describes a page of results. Total and IsLastPage reflect the raw
// graph query, before dedup and enrichment trim the visible list.
type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	IsLastPage bool  `json:"is_last_page"`
}

// UserPage is the data payload of a paginated response
type UserPage struct {
	Users []EnrichedUser `json:"users"`
	Meta  PageMeta       `json:"meta"`
}

// PagedResult is the envelope for paginated user listings
type PagedResult struct {
	Success    bool      `json:"success"`
	StatusCode int       `json:"statusCode"`
	Message    string    `json:"message"`
	Data       *UserPage `json:"data,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// OpResult is the envelope for state transitions (follow, block, ...)
type OpResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error,omitempty"`
}

// UsersResult is the envelope for non-paginated user lists
type UsersResult struct {
	Success    bool           `json:"success"`
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
	Data       []EnrichedUser `json:"data"`
	Error      string         `json:"error,omitempty"`
}

// Rejection and failure messages. Upstream failures always surface the
// generic internal message; detail stays in the logs.
const (
	msgInternalError      = "internal server error"
	msgCannotFollowSelf   = "cannot follow yourself"
	msgCannotUnfollowSelf = "cannot unfollow yourself"
	msgCannotRemoveSelf   = "cannot remove yourself as a follower"
	msgCannotBlockSelf    = "cannot block yourself"
	msgCannotUnblockSelf  = "cannot unblock yourself"
	msgAlreadyFollowing   = "already following this user"
	msgAlreadyBlocked     = "user is already blocked"
	msgBlockedPair        = "action not allowed between blocked users"
	msgNotFollowing       = "not following this user"
	msgNotFollower        = "this user does not follow you"
	msgNotBlocked         = "user is not blocked"
)

const defaultLimit = 10

func normalizePaging(page, limit int) (int, int) {
	if page < 0 {
		page = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return page, limit
}

func opSuccess(message string) OpResult {
	return OpResult{Success: true, StatusCode: http.StatusOK, Message: message}
}

func opRejection(statusCode int, message string) OpResult {
	return OpResult{Success: false, StatusCode: statusCode, Message: message}
}

func opInternalError() OpResult {
	return OpResult{Success: false, StatusCode: http.StatusInternalServerError, Message: msgInternalError}
}

func pagedSuccess(users []EnrichedUser, meta PageMeta) PagedResult {
	if users == nil {
		users = []EnrichedUser{}
	}
	return PagedResult{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    "success",
		Data:       &UserPage{Users: users, Meta: meta},
	}
}

func pagedNotFound(message string) PagedResult {
	return PagedResult{Success: false, StatusCode: http.StatusNotFound, Message: message}
}

func pagedInternalError() PagedResult {
	return PagedResult{Success: false, StatusCode: http.StatusInternalServerError, Message: msgInternalError}
}
