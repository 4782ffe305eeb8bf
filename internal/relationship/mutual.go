package relationship

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

// MutualService answers common-connection queries: users the viewer follows
// who in turn follow the target.
type MutualService struct {
	backend  GraphBackend
	enricher *Enricher
	logger   *zap.Logger
}

// NewMutualService creates the mutual-followers service
func NewMutualService(backend GraphBackend, enricher *Enricher, log *zap.Logger) *MutualService {
	return &MutualService{
		backend:  backend,
		enricher: enricher,
		logger:   log,
	}
}

// MutualFollowers returns users X such that fromID follows X and X follows
// toID. An empty set is a success, not an error.
func (s *MutualService) MutualFollowers(ctx context.Context, fromID, toID string) UsersResult {
	nodes, err := s.backend.CommonConnection(ctx, fromID, toID)
	if err != nil {
		s.logger.Error("mutual followers query failed",
			zap.String("from_id", fromID),
			zap.String("to_id", toID),
			zap.Error(err),
		)
		return UsersResult{
			Success:    false,
			StatusCode: http.StatusInternalServerError,
			Message:    msgInternalError,
		}
	}

	users := s.enricher.EnrichMany(ctx, nodes, fromID)
	return UsersResult{
		Success:    true,
		StatusCode: http.StatusOK,
		Message:    "success",
		Data:       users,
	}
}
