package relationship

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"mingle/internal/graph"
)

// BlockService drives the block side of the relationship state machine.
type BlockService struct {
	status   *StatusService
	backend  GraphBackend
	enricher *Enricher
	logger   *zap.Logger
}

// NewBlockService creates the block service
func NewBlockService(backend GraphBackend, status *StatusService, enricher *Enricher, log *zap.Logger) *BlockService {
	return &BlockService{
		status:   status,
		backend:  backend,
		enricher: enricher,
		logger:   log,
	}
}

// Block creates a BLOCKED edge from fromID to toID. Any FOLLOWING edge
// between the pair is removed first, in both directions. Failures of those
// sub-steps are logged but do not abort the block; the final BLOCKED edge
// creation decides the overall result.
func (s *BlockService) Block(ctx context.Context, fromID, toID string) OpResult {
	if fromID == toID {
		return opRejection(http.StatusBadRequest, msgCannotBlockSelf)
	}

	blocked, err := s.status.IsBlockedEither(ctx, fromID, toID)
	if err != nil {
		s.logger.Error("block precondition check failed", zap.Error(err))
		return opInternalError()
	}
	if blocked {
		return opRejection(http.StatusConflict, msgAlreadyBlocked)
	}

	s.severFollow(ctx, fromID, toID)
	s.severFollow(ctx, toID, fromID)

	if err := s.backend.CreateBlock(ctx, fromID, toID); err != nil {
		s.logger.Error("failed to create block",
			zap.String("from_id", fromID),
			zap.String("to_id", toID),
			zap.Error(err),
		)
		return opInternalError()
	}
	return opSuccess("user blocked")
}

// severFollow removes a FOLLOWING edge from a to b if one exists. Best
// effort: errors are logged, the block proceeds regardless.
func (s *BlockService) severFollow(ctx context.Context, a, b string) {
	following, err := s.status.IsFollowing(ctx, a, b)
	if err != nil {
		s.logger.Warn("follow check during block failed",
			zap.String("from_id", a),
			zap.String("to_id", b),
			zap.Error(err),
		)
		return
	}
	if !following {
		return
	}
	if err := s.backend.DeleteFollow(ctx, a, b); err != nil {
		s.logger.Warn("unfollow during block failed",
			zap.String("from_id", a),
			zap.String("to_id", b),
			zap.Error(err),
		)
	}
}

// Unblock removes the BLOCKED edge between the pair. The existence check is
// bidirectional, matching Block, but the delete targets only the direction
// actually stored.
func (s *BlockService) Unblock(ctx context.Context, fromID, toID string) OpResult {
	if fromID == toID {
		return opRejection(http.StatusBadRequest, msgCannotUnblockSelf)
	}

	blockedByFrom, err := s.status.IsBlocked(ctx, fromID, toID)
	if err != nil {
		s.logger.Error("unblock precondition check failed", zap.Error(err))
		return opInternalError()
	}
	blockedByTo, err := s.status.IsBlocked(ctx, toID, fromID)
	if err != nil {
		s.logger.Error("unblock precondition check failed", zap.Error(err))
		return opInternalError()
	}
	if !blockedByFrom && !blockedByTo {
		return opRejection(http.StatusBadRequest, msgNotBlocked)
	}

	delFrom, delTo := fromID, toID
	if !blockedByFrom {
		delFrom, delTo = toID, fromID
	}
	if err := s.backend.DeleteBlock(ctx, delFrom, delTo); err != nil {
		s.logger.Error("failed to delete block",
			zap.String("from_id", delFrom),
			zap.String("to_id", delTo),
			zap.Error(err),
		)
		return opInternalError()
	}
	return opSuccess("user unblocked")
}

// GetBlocked lists the users userID has blocked
func (s *BlockService) GetBlocked(ctx context.Context, userID string, page, limit int) PagedResult {
	page, limit = normalizePaging(page, limit)

	raw, err := s.backend.PagedNeighbors(ctx, userID, graph.EdgeBlocked, graph.DirectionOutgoing, page, limit)
	if err != nil {
		s.logger.Error("failed to list blocked users",
			zap.String("user_id", userID),
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
