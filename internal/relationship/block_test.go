package relationship

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlock_RejectsSelf(t *testing.T) {
	g := newFakeGraph()
	res := newBlockHarness(g).Block(context.Background(), "alice", "alice")
	assert.False(t, res.Success)
	assert.Equal(t, 400, res.StatusCode)
	assert.False(t, g.touched())
}

func TestBlock_UnfollowsBothDirectionsFirst(t *testing.T) {
	ctx := context.Background()
	g := newFakeGraph()
	g.addUser("alice", "alice")
	g.addUser("bob", "bob")
	g.setFollow("alice", "bob")
	g.setFollow("bob", "alice")
	// Counters as if both follows went through the state machine
	g.users["alice"].FollowingNumber = 1
	g.users["alice"].FollowersNumber = 1
	g.users["bob"].FollowingNumber = 1
	g.users["bob"].FollowersNumber = 1

	res := newBlockHarness(g).Block(ctx, "alice", "bob")
	require.True(t, res.Success)

	assert.False(t, g.follows["alice"]["bob"])
	assert.False(t, g.follows["bob"]["alice"])
	assert.True(t, g.blocks["alice"]["bob"])
	assert.ElementsMatch(t, [][2]string{{"alice", "bob"}, {"bob", "alice"}}, g.deleteFollows)
	assert.Equal(t, [][2]string{{"alice", "bob"}}, g.createBlocks)

	// Counters reflect the unfollows
	assert.Equal(t, int64(0), g.users["alice"].FollowingNumber)
	assert.Equal(t, int64(0), g.users["bob"].FollowersNumber)
}

func TestBlock_WithoutExistingFollows(t *testing.T) {
	g := newFakeGraph()
	res := newBlockHarness(g).Block(context.Background(), "alice", "bob")
	require.True(t, res.Success)
	assert.Empty(t, g.deleteFollows)
	assert.True(t, g.blocks["alice"]["bob"])
}

func TestBlock_RejectsAlreadyBlockedEitherDirection(t *testing.T) {
	for name, setup := range map[string]func(g *fakeGraph){
		"blocked by caller": func(g *fakeGraph) { g.setBlock("alice", "bob") },
		"blocked by target": func(g *fakeGraph) { g.setBlock("bob", "alice") },
	} {
		t.Run(name, func(t *testing.T) {
			g := newFakeGraph()
			setup(g)
			res := newBlockHarness(g).Block(context.Background(), "alice", "bob")
			assert.False(t, res.Success)
			assert.Equal(t, 409, res.StatusCode)
			assert.Equal(t, msgAlreadyBlocked, res.Message)
			assert.Empty(t, g.createBlocks)
		})
	}
}

func TestUnblock_SecondCallFails(t *testing.T) {
	ctx := context.Background()
	g := newFakeGraph()
	g.setBlock("alice", "bob")
	svc := newBlockHarness(g)

	res := svc.Unblock(ctx, "alice", "bob")
	require.True(t, res.Success)
	assert.False(t, g.blocks["alice"]["bob"])

	res = svc.Unblock(ctx, "alice", "bob")
	assert.False(t, res.Success)
	assert.Equal(t, 400, res.StatusCode)
	assert.Equal(t, msgNotBlocked, res.Message)
}

func TestUnblock_DeletesStoredDirectionOnly(t *testing.T) {
	ctx := context.Background()
	g := newFakeGraph()
	// Bob blocked Alice; Alice can still clear the pair, but the delete
	// must target the edge that actually exists.
	g.setBlock("bob", "alice")

	res := newBlockHarness(g).Unblock(ctx, "alice", "bob")
	require.True(t, res.Success)
	assert.Equal(t, [][2]string{{"bob", "alice"}}, g.deleteBlocks)
	assert.False(t, g.blocks["bob"]["alice"])
}

func TestBlock_BackendFailure(t *testing.T) {
	g := newFakeGraph()
	g.relErr = fmt.Errorf("bolt connection refused")
	res := newBlockHarness(g).Block(context.Background(), "alice", "bob")
	assert.False(t, res.Success)
	assert.Equal(t, 500, res.StatusCode)
	assert.Equal(t, msgInternalError, res.Message)
}

func TestGetBlocked(t *testing.T) {
	ctx := context.Background()
	g := newFakeGraph()
	g.addUser("alice", "alice")
	g.addUser("bob", "bob")
	g.addUser("carol", "carol")
	g.setBlock("alice", "bob")
	g.setBlock("alice", "carol")

	res := newBlockHarness(g).GetBlocked(ctx, "alice", 0, 10)
	require.True(t, res.Success)
	assert.Equal(t, []string{"bob", "carol"}, userIDs(res.Data.Users))
	assert.True(t, res.Data.Meta.IsLastPage)
	for _, u := range res.Data.Users {
		assert.True(t, u.IsBlocked)
	}
}
