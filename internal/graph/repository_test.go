package graph

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"
)

// These tests require a running Neo4j instance at bolt://localhost:7687
// (neo4j/password). Run with -short to skip them.

func newTestRepo(t *testing.T) (*Repository, neo4j.DriverWithContext) {
	t.Helper()
	driver, err := neo4j.NewDriverWithContext("bolt://localhost:7687", neo4j.BasicAuth("neo4j", "password", ""))
	if err != nil {
		t.Fatalf("Failed to create driver: %v", err)
	}
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		t.Fatalf("Failed to verify connectivity: %v", err)
	}
	return NewRepository(driver, zap.NewNop()), driver
}

func cleanupUsers(ctx context.Context, driver neo4j.DriverWithContext, prefix string) {
	session := driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)
	_, _ = session.Run(ctx,
		"MATCH (u:User) WHERE u.user_id STARTS WITH $prefix DETACH DELETE u",
		map[string]any{"prefix": prefix})
}

func seedUser(t *testing.T, repo *Repository, id, username string) {
	t.Helper()
	_, err := repo.UpsertUser(context.Background(), UserNode{
		UserID:   id,
		Username: username,
	})
	if err != nil {
		t.Fatalf("UpsertUser(%s) failed: %v", id, err)
	}
}

func TestRepository_FollowCounters(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	repo, driver := newTestRepo(t)
	defer driver.Close(ctx)

	prefix := "test-follow-" + time.Now().Format("20060102150405")
	defer cleanupUsers(ctx, driver, prefix)

	alice := prefix + "-alice"
	bob := prefix + "-bob"
	seedUser(t, repo, alice, "alice")
	seedUser(t, repo, bob, "bob")

	if err := repo.CreateFollow(ctx, alice, bob); err != nil {
		t.Fatalf("CreateFollow failed: %v", err)
	}

	exists, err := repo.RelationshipExists(ctx, alice, bob, EdgeFollowing)
	if err != nil {
		t.Fatalf("RelationshipExists failed: %v", err)
	}
	if !exists {
		t.Error("Expected FOLLOWING edge after CreateFollow")
	}

	a, err := repo.FindNode(ctx, alice)
	if err != nil {
		t.Fatalf("FindNode failed: %v", err)
	}
	if a.FollowingNumber != 1 {
		t.Errorf("Expected following_number 1, got %d", a.FollowingNumber)
	}
	b, err := repo.FindNode(ctx, bob)
	if err != nil {
		t.Fatalf("FindNode failed: %v", err)
	}
	if b.FollowersNumber != 1 {
		t.Errorf("Expected followers_number 1, got %d", b.FollowersNumber)
	}

	// Re-following must not double-count
	if err := repo.CreateFollow(ctx, alice, bob); err != nil {
		t.Fatalf("CreateFollow (repeat) failed: %v", err)
	}
	a, _ = repo.FindNode(ctx, alice)
	if a.FollowingNumber != 1 {
		t.Errorf("Expected following_number to stay 1, got %d", a.FollowingNumber)
	}

	if err := repo.DeleteFollow(ctx, alice, bob); err != nil {
		t.Fatalf("DeleteFollow failed: %v", err)
	}
	a, _ = repo.FindNode(ctx, alice)
	if a.FollowingNumber != 0 {
		t.Errorf("Expected following_number 0 after unfollow, got %d", a.FollowingNumber)
	}

	// Deleting a missing edge reports ErrEdgeNotFound
	err = repo.DeleteFollow(ctx, alice, bob)
	if _, ok := err.(ErrEdgeNotFound); !ok {
		t.Errorf("Expected ErrEdgeNotFound, got %v", err)
	}
}

func TestRepository_SecondDegree(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	repo, driver := newTestRepo(t)
	defer driver.Close(ctx)

	prefix := "test-deg-" + time.Now().Format("20060102150405")
	defer cleanupUsers(ctx, driver, prefix)

	// viewer -> friend -> s1..s3, viewer already follows s1
	viewer := prefix + "-v"
	friend := prefix + "-f"
	seedUser(t, repo, viewer, "viewer")
	seedUser(t, repo, friend, "friend")
	for i := 1; i <= 3; i++ {
		seedUser(t, repo, fmt.Sprintf("%s-s%d", prefix, i), fmt.Sprintf("s%d", i))
	}

	mustFollow := func(from, to string) {
		if err := repo.CreateFollow(ctx, from, to); err != nil {
			t.Fatalf("CreateFollow(%s, %s) failed: %v", from, to, err)
		}
	}
	mustFollow(viewer, friend)
	for i := 1; i <= 3; i++ {
		mustFollow(friend, fmt.Sprintf("%s-s%d", prefix, i))
	}
	mustFollow(viewer, prefix+"-s1")

	count, err := repo.SecondDegreeCount(ctx, viewer)
	if err != nil {
		t.Fatalf("SecondDegreeCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 second-degree candidates, got %d", count)
	}

	users, err := repo.SecondDegree(ctx, viewer, 0, 10)
	if err != nil {
		t.Fatalf("SecondDegree failed: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("Expected 2 second-degree users, got %d", len(users))
	}
	for _, u := range users {
		if u.UserID == prefix+"-s1" {
			t.Error("Already-followed user must be excluded from second degree")
		}
	}
}

func TestRepository_CommonConnection(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	ctx := context.Background()
	repo, driver := newTestRepo(t)
	defer driver.Close(ctx)

	prefix := "test-cc-" + time.Now().Format("20060102150405")
	defer cleanupUsers(ctx, driver, prefix)

	a := prefix + "-a"
	b := prefix + "-b"
	x := prefix + "-x"
	seedUser(t, repo, a, "a")
	seedUser(t, repo, b, "b")
	seedUser(t, repo, x, "x")

	if err := repo.CreateFollow(ctx, a, x); err != nil {
		t.Fatalf("CreateFollow failed: %v", err)
	}
	if err := repo.CreateFollow(ctx, x, b); err != nil {
		t.Fatalf("CreateFollow failed: %v", err)
	}

	common, err := repo.CommonConnection(ctx, a, b)
	if err != nil {
		t.Fatalf("CommonConnection failed: %v", err)
	}
	if len(common) != 1 || common[0].UserID != x {
		t.Errorf("Expected common connection [%s], got %v", x, common)
	}

	// Reverse direction has no common connection
	common, err = repo.CommonConnection(ctx, b, a)
	if err != nil {
		t.Fatalf("CommonConnection failed: %v", err)
	}
	if len(common) != 0 {
		t.Errorf("Expected no common connections, got %d", len(common))
	}
}
