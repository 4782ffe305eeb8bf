package relationship

import (
	"context"

	"mingle/internal/graph"
)

// StatusService holds the shared relationship-status primitives. Both the
// follow and block services depend on it one-directionally, which keeps them
// independent of each other.
type StatusService struct {
	backend GraphBackend
}

// NewStatusService creates the shared status checker
func NewStatusService(backend GraphBackend) *StatusService {
	return &StatusService{backend: backend}
}

// IsFollowing reports whether fromID follows toID
func (s *StatusService) IsFollowing(ctx context.Context, fromID, toID string) (bool, error) {
	return s.backend.RelationshipExists(ctx, fromID, toID, graph.EdgeFollowing)
}

// IsBlocked reports whether fromID has blocked toID
func (s *StatusService) IsBlocked(ctx context.Context, fromID, toID string) (bool, error) {
	return s.backend.RelationshipExists(ctx, fromID, toID, graph.EdgeBlocked)
}

// IsBlockedEither reports whether a BLOCKED edge exists in either direction
// between the pair
func (s *StatusService) IsBlockedEither(ctx context.Context, a, b string) (bool, error) {
	blocked, err := s.IsBlocked(ctx, a, b)
	if err != nil {
		return false, err
	}
	if blocked {
		return true, nil
	}
	return s.IsBlocked(ctx, b, a)
}
