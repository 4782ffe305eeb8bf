package relationship

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"mingle/internal/cache"
	"mingle/internal/graph"
)

// SuggestionService computes paginated follow suggestions. Friend-of-friend
// suggestions come from a two-tier traversal: second-degree pages first, then
// third-degree once the second-degree pool is exhausted. A rolling cache
// window keeps repeated pagination from surfacing the same user twice within
// the TTL.
type SuggestionService struct {
	backend  GraphBackend
	store    cache.Store
	enricher *Enricher
	logger   *zap.Logger

	suggestionTTL time.Duration
	interestTTL   time.Duration
}

// NewSuggestionService creates the suggestion engine
func NewSuggestionService(backend GraphBackend, store cache.Store, enricher *Enricher, log *zap.Logger, suggestionTTL, interestTTL time.Duration) *SuggestionService {
	return &SuggestionService{
		backend:       backend,
		store:         store,
		enricher:      enricher,
		logger:        log,
		suggestionTTL: suggestionTTL,
		interestTTL:   interestTTL,
	}
}

// GetSuggestions returns a page of friend-of-friend suggestions for the
// viewer. Pages below thirdDegreeStartPage = ceil(secondDegreeCount/limit)
// come from the second-degree traversal; every later page queries the
// third-degree traversal from its own page zero and relies on the dedup
// window to advance through the pool.
func (s *SuggestionService) GetSuggestions(ctx context.Context, viewerID string, page, limit int) PagedResult {
	page, limit = normalizePaging(page, limit)

	secondCount, err := s.backend.SecondDegreeCount(ctx, viewerID)
	if err != nil {
		s.logger.Error("failed to count second-degree pool", zap.String("viewer_id", viewerID), zap.Error(err))
		return pagedInternalError()
	}

	thirdStart := int((secondCount + int64(limit) - 1) / int64(limit))

	var raw []graph.UserNode
	var total int64
	if page < thirdStart {
		raw, err = s.backend.SecondDegree(ctx, viewerID, page, limit)
		total = secondCount
	} else {
		// Every page past the handoff reads the third-degree set from its
		// own page zero; the dedup cache is what keeps successive pages
		// from repeating within the TTL window.
		raw, err = s.backend.ThirdDegree(ctx, viewerID, 0, limit)
		total = int64(len(raw))
	}
	if err != nil {
		s.logger.Error("suggestion traversal failed",
			zap.String("viewer_id", viewerID),
			zap.Int("page", page),
			zap.Error(err),
		)
		return pagedInternalError()
	}

	meta := PageMeta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		IsLastPage: len(raw) < limit,
	}
	return s.dedupAndEnrich(ctx, viewerID, suggestionKey(viewerID), s.suggestionTTL, raw, meta)
}

// GetInterestSuggestions returns a page of users sharing at least one
// interest tag with the viewer, through the same dedup and enrichment
// pipeline under its own cache namespace.
func (s *SuggestionService) GetInterestSuggestions(ctx context.Context, viewerID string, page, limit int) PagedResult {
	page, limit = normalizePaging(page, limit)

	raw, err := s.backend.SharedInterestUsers(ctx, viewerID, page, limit)
	if err != nil {
		s.logger.Error("interest suggestion query failed",
			zap.String("viewer_id", viewerID),
			zap.Int("page", page),
			zap.Error(err),
		)
		return pagedInternalError()
	}

	meta := PageMeta{
		Total:      int64(len(raw)),
		Page:       page,
		Limit:      limit,
		IsLastPage: len(raw) < limit,
	}
	return s.dedupAndEnrich(ctx, viewerID, interestSuggestionKey(viewerID), s.interestTTL, raw, meta)
}

// dedupAndEnrich filters raw candidates against the viewer's already-shown
// set, merges survivors back into the set with a fresh TTL, and enriches
// them. Cache failures are swallowed: suggestions still flow, just without
// dedup for this call. Meta is passed through untouched; it describes the raw
// tier result, not the surviving list.
func (s *SuggestionService) dedupAndEnrich(ctx context.Context, viewerID, key string, ttl time.Duration, raw []graph.UserNode, meta PageMeta) PagedResult {
	seen := s.loadSeenIDs(ctx, key)

	fresh := make([]graph.UserNode, 0, len(raw))
	for _, node := range raw {
		if _, ok := seen[node.UserID]; !ok {
			fresh = append(fresh, node)
		}
	}

	if len(fresh) > 0 {
		s.storeSeenIDs(ctx, key, seen, fresh, ttl)
	}

	users := s.enricher.EnrichManyForFollowFiltering(ctx, fresh, viewerID)
	return pagedSuccess(users, meta)
}

// loadSeenIDs reads the already-shown id set. Miss, malformed value, or a
// cache error all degrade to the empty set.
func (s *SuggestionService) loadSeenIDs(ctx context.Context, key string) map[string]struct{} {
	seen := make(map[string]struct{})

	value, err := s.store.Get(ctx, key)
	if err == cache.ErrCacheMiss {
		return seen
	}
	if err != nil {
		s.logger.Warn("suggestion cache read failed, skipping dedup", zap.String("key", key), zap.Error(err))
		return seen
	}

	var ids []string
	if err := json.Unmarshal([]byte(value), &ids); err != nil {
		s.logger.Warn("malformed suggestion cache value, resetting", zap.String("key", key), zap.Error(err))
		return seen
	}

	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return seen
}

// storeSeenIDs rewrites the set as old ∪ fresh with a fresh TTL. The merge is
// additive; ids only leave the set by TTL expiry.
func (s *SuggestionService) storeSeenIDs(ctx context.Context, key string, seen map[string]struct{}, fresh []graph.UserNode, ttl time.Duration) {
	for _, node := range fresh {
		seen[node.UserID] = struct{}{}
	}

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	value, err := json.Marshal(ids)
	if err != nil {
		s.logger.Warn("failed to encode suggestion cache value", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.Set(ctx, key, string(value), ttl); err != nil {
		s.logger.Warn("suggestion cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func suggestionKey(viewerID string) string {
	return fmt.Sprintf("suggestions:%s", viewerID)
}

func interestSuggestionKey(viewerID string) string {
	return fmt.Sprintf("interest_suggestions:%s", viewerID)
}
