package relationship

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"mingle/internal/cache"
	"mingle/internal/graph"
)

// fakeGraph is an in-memory GraphBackend. Edges and counters live in maps;
// traversal pools are injected per test.
type fakeGraph struct {
	mu sync.Mutex

	users   map[string]*graph.UserNode
	follows map[string]map[string]bool
	blocks  map[string]map[string]bool

	secondPool   []graph.UserNode
	thirdPool    []graph.UserNode
	interestPool []graph.UserNode

	countErr    error
	secondErr   error
	thirdErr    error
	interestErr error
	searchErr   error
	relErr      error

	// commonErrFor fails CommonConnection for a specific candidate id
	commonErrFor map[string]error
	common       map[string][]graph.UserNode

	relationshipChecks int
	secondDegreePages  []int
	thirdDegreePages   []int
	createFollows      [][2]string
	deleteFollows      [][2]string
	createBlocks       [][2]string
	deleteBlocks       [][2]string
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		users:        make(map[string]*graph.UserNode),
		follows:      make(map[string]map[string]bool),
		blocks:       make(map[string]map[string]bool),
		commonErrFor: make(map[string]error),
		common:       make(map[string][]graph.UserNode),
	}
}

func (f *fakeGraph) addUser(id, username string) graph.UserNode {
	node := graph.UserNode{UserID: id, Username: username, DisplayName: username}
	f.users[id] = &node
	return node
}

func (f *fakeGraph) setFollow(from, to string) {
	if f.follows[from] == nil {
		f.follows[from] = make(map[string]bool)
	}
	f.follows[from][to] = true
}

func (f *fakeGraph) setBlock(from, to string) {
	if f.blocks[from] == nil {
		f.blocks[from] = make(map[string]bool)
	}
	f.blocks[from][to] = true
}

func (f *fakeGraph) touched() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.relationshipChecks > 0 ||
		len(f.createFollows) > 0 || len(f.deleteFollows) > 0 ||
		len(f.createBlocks) > 0 || len(f.deleteBlocks) > 0
}

func pageSlice(pool []graph.UserNode, page, limit int) []graph.UserNode {
	start := page * limit
	if start >= len(pool) {
		return nil
	}
	end := start + limit
	if end > len(pool) {
		end = len(pool)
	}
	return pool[start:end]
}

func (f *fakeGraph) FindNode(_ context.Context, userID string) (*graph.UserNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if node, ok := f.users[userID]; ok {
		copied := *node
		return &copied, nil
	}
	return nil, fmt.Errorf("user not found: %s", userID)
}

func (f *fakeGraph) RelationshipExists(_ context.Context, fromID, toID string, edgeType graph.EdgeType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.relationshipChecks++
	if f.relErr != nil {
		return false, f.relErr
	}
	switch edgeType {
	case graph.EdgeFollowing:
		return f.follows[fromID][toID], nil
	case graph.EdgeBlocked:
		return f.blocks[fromID][toID], nil
	}
	return false, fmt.Errorf("unknown edge type: %s", edgeType)
}

func (f *fakeGraph) CreateFollow(_ context.Context, fromID, toID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createFollows = append(f.createFollows, [2]string{fromID, toID})
	if !f.follows[fromID][toID] {
		if f.follows[fromID] == nil {
			f.follows[fromID] = make(map[string]bool)
		}
		f.follows[fromID][toID] = true
		if u, ok := f.users[fromID]; ok {
			u.FollowingNumber++
		}
		if u, ok := f.users[toID]; ok {
			u.FollowersNumber++
		}
	}
	return nil
}

func (f *fakeGraph) DeleteFollow(_ context.Context, fromID, toID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteFollows = append(f.deleteFollows, [2]string{fromID, toID})
	if !f.follows[fromID][toID] {
		return graph.ErrEdgeNotFound{From: fromID, To: toID, Type: graph.EdgeFollowing}
	}
	delete(f.follows[fromID], toID)
	if u, ok := f.users[fromID]; ok {
		u.FollowingNumber--
	}
	if u, ok := f.users[toID]; ok {
		u.FollowersNumber--
	}
	return nil
}

func (f *fakeGraph) CreateBlock(_ context.Context, fromID, toID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createBlocks = append(f.createBlocks, [2]string{fromID, toID})
	if f.blocks[fromID] == nil {
		f.blocks[fromID] = make(map[string]bool)
	}
	f.blocks[fromID][toID] = true
	return nil
}

func (f *fakeGraph) DeleteBlock(_ context.Context, fromID, toID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteBlocks = append(f.deleteBlocks, [2]string{fromID, toID})
	if !f.blocks[fromID][toID] {
		return graph.ErrEdgeNotFound{From: fromID, To: toID, Type: graph.EdgeBlocked}
	}
	delete(f.blocks[fromID], toID)
	return nil
}

// neighbors lists adjacent users from the edge maps, ordered by id
func (f *fakeGraph) neighbors(userID string, edgeType graph.EdgeType, dir graph.Direction) []graph.UserNode {
	edges := f.follows
	if edgeType == graph.EdgeBlocked {
		edges = f.blocks
	}

	var ids []string
	if dir == graph.DirectionOutgoing {
		for id := range edges[userID] {
			ids = append(ids, id)
		}
	} else {
		for from, targets := range edges {
			if targets[userID] {
				ids = append(ids, from)
			}
		}
	}
	sort.Strings(ids)

	nodes := make([]graph.UserNode, 0, len(ids))
	for _, id := range ids {
		if node, ok := f.users[id]; ok {
			nodes = append(nodes, *node)
		} else {
			nodes = append(nodes, graph.UserNode{UserID: id})
		}
	}
	return nodes
}

func (f *fakeGraph) PagedNeighbors(_ context.Context, userID string, edgeType graph.EdgeType, dir graph.Direction, page, limit int) ([]graph.UserNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return pageSlice(f.neighbors(userID, edgeType, dir), page, limit), nil
}

func (f *fakeGraph) SecondDegree(_ context.Context, _ string, page, limit int) ([]graph.UserNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.secondErr != nil {
		return nil, f.secondErr
	}
	f.secondDegreePages = append(f.secondDegreePages, page)
	return pageSlice(f.secondPool, page, limit), nil
}

func (f *fakeGraph) SecondDegreeCount(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return int64(len(f.secondPool)), nil
}

func (f *fakeGraph) ThirdDegree(_ context.Context, _ string, page, limit int) ([]graph.UserNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.thirdErr != nil {
		return nil, f.thirdErr
	}
	f.thirdDegreePages = append(f.thirdDegreePages, page)
	return pageSlice(f.thirdPool, page, limit), nil
}

func (f *fakeGraph) CommonConnection(_ context.Context, fromID, toID string) ([]graph.UserNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.commonErrFor[toID]; ok {
		return nil, err
	}
	return f.common[fromID+"|"+toID], nil
}

func (f *fakeGraph) SubstringSearch(_ context.Context, userID string, dir graph.Direction, query string, page, limit int) ([]graph.UserNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	var matched []graph.UserNode
	for _, node := range f.neighbors(userID, graph.EdgeFollowing, dir) {
		if containsFold(node.Username, query) || containsFold(node.DisplayName, query) {
			matched = append(matched, node)
		}
	}
	return pageSlice(matched, page, limit), nil
}

func (f *fakeGraph) SharedInterestUsers(_ context.Context, _ string, page, limit int) ([]graph.UserNode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.interestErr != nil {
		return nil, f.interestErr
	}
	return pageSlice(f.interestPool, page, limit), nil
}

func containsFold(s, substr string) bool {
	lower := func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + 32
		}
		return r
	}
	ls := make([]rune, 0, len(s))
	for _, r := range s {
		ls = append(ls, lower(r))
	}
	lq := make([]rune, 0, len(substr))
	for _, r := range substr {
		lq = append(lq, lower(r))
	}
	return len(lq) == 0 || indexRunes(ls, lq) >= 0
}

func indexRunes(s, sep []rune) int {
	for i := 0; i+len(sep) <= len(s); i++ {
		match := true
		for j := range sep {
			if s[i+j] != sep[j] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// fakeStore is an in-memory cache.Store with injectable failures
type fakeStore struct {
	mu       sync.Mutex
	data     map[string]string
	ttls     map[string]time.Duration
	getErr   error
	setErr   error
	setCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (s *fakeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", s.getErr
	}
	val, ok := s.data[key]
	if !ok {
		return "", cache.ErrCacheMiss
	}
	return val, nil
}

func (s *fakeStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setCalls++
	if s.setErr != nil {
		return s.setErr
	}
	s.data[key] = value
	s.ttls[key] = ttl
	return nil
}

func (s *fakeStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	delete(s.ttls, key)
	return nil
}

// fakeNotifier records emitted follow events
type fakeNotifier struct {
	mu     sync.Mutex
	events [][2]string
}

func (n *fakeNotifier) FollowCreated(followerID, followeeID string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, [2]string{followerID, followeeID})
}

// Harness helpers

func newEnricherFor(g *fakeGraph) *Enricher {
	return NewEnricher(g, NewStatusService(g), zap.NewNop())
}

func newSuggestionHarness(g *fakeGraph, store *fakeStore) *SuggestionService {
	return NewSuggestionService(g, store, newEnricherFor(g), zap.NewNop(), 5*time.Minute, 10*time.Minute)
}

func newFollowHarness(g *fakeGraph, n *fakeNotifier) *FollowService {
	return NewFollowService(g, NewStatusService(g), newEnricherFor(g), n, zap.NewNop())
}

func newBlockHarness(g *fakeGraph) *BlockService {
	return NewBlockService(g, NewStatusService(g), newEnricherFor(g), zap.NewNop())
}
