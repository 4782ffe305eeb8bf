package graph

// EdgeType is the type of a directed relationship edge between two users.
type EdgeType string

const (
	EdgeFollowing EdgeType = "FOLLOWING"
	EdgeBlocked   EdgeType = "BLOCKED"
)

// Valid reports whether the edge type is one the repository knows how to store.
// Edge types are interpolated into Cypher, so unknown values must never pass.
func (t EdgeType) Valid() bool {
	return t == EdgeFollowing || t == EdgeBlocked
}

// Direction selects which end of an edge a neighbor query walks from.
type Direction string

const (
	DirectionOutgoing Direction = "outgoing"
	DirectionIncoming Direction = "incoming"
)

// UserNode is a user as stored in the graph, counters included.
type UserNode struct {
	UserID          string `json:"user_id"`
	Username        string `json:"username"`
	DisplayName     string `json:"display_name"`
	Role            string `json:"role"`
	AvatarReference string `json:"avatar_reference"`
	FollowingNumber int64  `json:"following_number"`
	FollowersNumber int64  `json:"followers_number"`
}
