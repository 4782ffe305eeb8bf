package relationship

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"mingle/internal/graph"
)

// FollowService drives the follow side of the relationship state machine and
// serves the follower/following listings and searches.
type FollowService struct {
	status   *StatusService
	backend  GraphBackend
	enricher *Enricher
	notifier Notifier
	logger   *zap.Logger
}

// NewFollowService creates the follow service
func NewFollowService(backend GraphBackend, status *StatusService, enricher *Enricher, notifier Notifier, log *zap.Logger) *FollowService {
	return &FollowService{
		status:   status,
		backend:  backend,
		enricher: enricher,
		notifier: notifier,
		logger:   log,
	}
}

// Follow creates a FOLLOWING edge from fromID to toID. Rejected when the pair
// is the same user, already following, or blocked in either direction.
func (s *FollowService) Follow(ctx context.Context, fromID, toID string) OpResult {
	if fromID == toID {
		return opRejection(http.StatusBadRequest, msgCannotFollowSelf)
	}

	following, err := s.status.IsFollowing(ctx, fromID, toID)
	if err != nil {
		s.logger.Error("follow precondition check failed", zap.Error(err))
		return opInternalError()
	}
	if following {
		return opRejection(http.StatusConflict, msgAlreadyFollowing)
	}

	blocked, err := s.status.IsBlockedEither(ctx, fromID, toID)
	if err != nil {
		s.logger.Error("follow precondition check failed", zap.Error(err))
		return opInternalError()
	}
	if blocked {
		return opRejection(http.StatusForbidden, msgBlockedPair)
	}

	if err := s.backend.CreateFollow(ctx, fromID, toID); err != nil {
		s.logger.Error("failed to create follow",
			zap.String("from_id", fromID),
			zap.String("to_id", toID),
			zap.Error(err),
		)
		return opInternalError()
	}

	s.notifier.FollowCreated(fromID, toID)
	return opSuccess("followed successfully")
}

// Unfollow deletes the FOLLOWING edge from fromID to toID
func (s *FollowService) Unfollow(ctx context.Context, fromID, toID string) OpResult {
	if fromID == toID {
		return opRejection(http.StatusBadRequest, msgCannotUnfollowSelf)
	}

	blocked, err := s.status.IsBlockedEither(ctx, fromID, toID)
	if err != nil {
		s.logger.Error("unfollow precondition check failed", zap.Error(err))
		return opInternalError()
	}
	if blocked {
		return opRejection(http.StatusForbidden, msgBlockedPair)
	}

	following, err := s.status.IsFollowing(ctx, fromID, toID)
	if err != nil {
		s.logger.Error("unfollow precondition check failed", zap.Error(err))
		return opInternalError()
	}
	if !following {
		return opRejection(http.StatusBadRequest, msgNotFollowing)
	}

	if err := s.backend.DeleteFollow(ctx, fromID, toID); err != nil {
		s.logger.Error("failed to delete follow",
			zap.String("from_id", fromID),
			zap.String("to_id", toID),
			zap.Error(err),
		)
		return opInternalError()
	}
	return opSuccess("unfollowed successfully")
}

// RemoveFollower deletes the reverse edge followerID -> userID, removing
// followerID from userID's follower list.
func (s *FollowService) RemoveFollower(ctx context.Context, userID, followerID string) OpResult {
	if userID == followerID {
		return opRejection(http.StatusBadRequest, msgCannotRemoveSelf)
	}

	blocked, err := s.status.IsBlockedEither(ctx, userID, followerID)
	if err != nil {
		s.logger.Error("remove-follower precondition check failed", zap.Error(err))
		return opInternalError()
	}
	if blocked {
		return opRejection(http.StatusForbidden, msgBlockedPair)
	}

	follows, err := s.status.IsFollowing(ctx, followerID, userID)
	if err != nil {
		s.logger.Error("remove-follower precondition check failed", zap.Error(err))
		return opInternalError()
	}
	if !follows {
		return opRejection(http.StatusBadRequest, msgNotFollower)
	}

	if err := s.backend.DeleteFollow(ctx, followerID, userID); err != nil {
		s.logger.Error("failed to remove follower",
			zap.String("user_id", userID),
			zap.String("follower_id", followerID),
			zap.Error(err),
		)
		return opInternalError()
	}
	return opSuccess("follower removed")
}

// GetFollowers lists the users following userID, enriched for userID as the
// viewer.
func (s *FollowService) GetFollowers(ctx context.Context, userID string, page, limit int) PagedResult {
	return s.pagedList(ctx, userID, graph.DirectionIncoming, page, limit)
}

// GetFollowing lists the users userID follows, enriched for userID as the
// viewer.
func (s *FollowService) GetFollowing(ctx context.Context, userID string, page, limit int) PagedResult {
	return s.pagedList(ctx, userID, graph.DirectionOutgoing, page, limit)
}

func (s *FollowService) pagedList(ctx context.Context, userID string, dir graph.Direction, page, limit int) PagedResult {
	page, limit = normalizePaging(page, limit)

	raw, err := s.backend.PagedNeighbors(ctx, userID, graph.EdgeFollowing, dir, page, limit)
	if err != nil {
		s.logger.Error("failed to list neighbors",
			zap.String("user_id", userID),
			zap.String("direction", string(dir)),
			zap.Error(err),
		)
		return pagedInternalError()
	}

	users := s.enricher.EnrichMany(ctx, raw, userID)
	return pagedSuccess(users, PageMeta{
		Total:      int64(len(raw)),
		Page:       page,
		Limit:      limit,
		IsLastPage: len(raw) < limit,
	})
}

// SearchFollowers matches a substring against the viewer's follower list
func (s *FollowService) SearchFollowers(ctx context.Context, userID, query string, page, limit int) PagedResult {
	return s.search(ctx, userID, graph.DirectionIncoming, query, page, limit, "no followers matched the query")
}

// SearchFollowing matches a substring against the viewer's following list
func (s *FollowService) SearchFollowing(ctx context.Context, userID, query string, page, limit int) PagedResult {
	return s.search(ctx, userID, graph.DirectionOutgoing, query, page, limit, "no followed users matched the query")
}

func (s *FollowService) search(ctx context.Context, userID string, dir graph.Direction, query string, page, limit int, notFoundMsg string) PagedResult {
	page, limit = normalizePaging(page, limit)

	raw, err := s.backend.SubstringSearch(ctx, userID, dir, query, page, limit)
	if err != nil {
		s.logger.Error("substring search failed",
			zap.String("user_id", userID),
			zap.String("query", query),
			zap.Error(err),
		)
		return pagedInternalError()
	}
	if len(raw) == 0 {
		return pagedNotFound(notFoundMsg)
	}

	users := s.enricher.EnrichMany(ctx, raw, userID)
	return pagedSuccess(users, PageMeta{
		Total:      int64(len(raw)),
		Page:       page,
		Limit:      limit,
		IsLastPage: len(raw) < limit,
	})
}
