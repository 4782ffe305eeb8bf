package relationship

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"mingle/internal/graph"
)

// enrichConcurrency bounds the number of in-flight graph lookups per batch.
const enrichConcurrency = 8

// Enricher annotates raw user nodes with their relationship to a viewing
// user. A candidate whose enrichment fails is dropped, never the whole batch.
type Enricher struct {
	backend GraphBackend
	status  *StatusService
	logger  *zap.Logger
}

// NewEnricher creates an enricher
func NewEnricher(backend GraphBackend, status *StatusService, log *zap.Logger) *Enricher {
	return &Enricher{
		backend: backend,
		status:  status,
		logger:  log,
	}
}

// Enrich annotates a single node for the given viewer. Returns nil if any of
// the relationship checks or the mutual-followers lookup fails; the caller
// drops the candidate.
func (e *Enricher) Enrich(ctx context.Context, node graph.UserNode, viewerID string) *EnrichedUser {
	isFollowing, err := e.status.IsFollowing(ctx, viewerID, node.UserID)
	if err != nil {
		e.warnDropped(node.UserID, "is_following", err)
		return nil
	}
	isFollower, err := e.status.IsFollowing(ctx, node.UserID, viewerID)
	if err != nil {
		e.warnDropped(node.UserID, "is_follower", err)
		return nil
	}
	isBlocked, err := e.status.IsBlocked(ctx, viewerID, node.UserID)
	if err != nil {
		e.warnDropped(node.UserID, "is_blocked", err)
		return nil
	}
	isBlockedBy, err := e.status.IsBlocked(ctx, node.UserID, viewerID)
	if err != nil {
		e.warnDropped(node.UserID, "is_blocked_by", err)
		return nil
	}
	mutual, err := e.backend.CommonConnection(ctx, viewerID, node.UserID)
	if err != nil {
		e.warnDropped(node.UserID, "mutual_followers", err)
		return nil
	}

	return &EnrichedUser{
		UserNode:              node,
		IsFollowing:           isFollowing,
		IsFollower:            isFollower,
		IsBlocked:             isBlocked,
		IsBlockedBy:           isBlockedBy,
		MutualFollowersNumber: int64(len(mutual)),
	}
}

// EnrichForFollowFiltering behaves like Enrich but additionally excludes a
// candidate the viewer already follows, so follow suggestions never surface
// accounts already followed.
func (e *Enricher) EnrichForFollowFiltering(ctx context.Context, node graph.UserNode, viewerID string) *EnrichedUser {
	enriched := e.Enrich(ctx, node, viewerID)
	if enriched == nil || enriched.IsFollowing {
		return nil
	}
	return enriched
}

// EnrichMany annotates every node and drops the ones that fail. Candidates
// are independent of each other, so lookups run concurrently; input order is
// preserved in the output.
func (e *Enricher) EnrichMany(ctx context.Context, nodes []graph.UserNode, viewerID string) []EnrichedUser {
	return e.enrichBatch(ctx, nodes, viewerID, false)
}

// EnrichManyForFollowFiltering is EnrichMany with already-followed candidates
// excluded.
func (e *Enricher) EnrichManyForFollowFiltering(ctx context.Context, nodes []graph.UserNode, viewerID string) []EnrichedUser {
	return e.enrichBatch(ctx, nodes, viewerID, true)
}

func (e *Enricher) enrichBatch(ctx context.Context, nodes []graph.UserNode, viewerID string, excludeFollowed bool) []EnrichedUser {
	if len(nodes) == 0 {
		return []EnrichedUser{}
	}

	slots := make([]*EnrichedUser, len(nodes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichConcurrency)
	for i, node := range nodes {
		i, node := i, node
		g.Go(func() error {
			// Failures drop the single candidate; never abort siblings.
			if excludeFollowed {
				slots[i] = e.EnrichForFollowFiltering(gctx, node, viewerID)
			} else {
				slots[i] = e.Enrich(gctx, node, viewerID)
			}
			return nil
		})
	}
	_ = g.Wait()

	users := make([]EnrichedUser, 0, len(nodes))
	for _, slot := range slots {
		if slot != nil {
			users = append(users, *slot)
		}
	}
	return users
}

func (e *Enricher) warnDropped(userID, check string, err error) {
	e.logger.Warn("enrichment failed, dropping candidate",
		zap.String("candidate_id", userID),
		zap.String("check", check),
		zap.Error(err),
	)
}
