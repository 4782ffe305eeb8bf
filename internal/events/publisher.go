// Package events publishes relationship lifecycle events to NATS. Publishing
// is fire and forget: a lost event never fails the operation that caused it.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// FollowCreatedEvent is emitted after a FOLLOWING edge is created
type FollowCreatedEvent struct {
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// Publisher emits events over a NATS connection
type Publisher struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewPublisher creates a publisher. A nil conn yields a publisher that drops
// events, so the service can run without NATS in development.
func NewPublisher(conn *nats.Conn, subject string, log *zap.Logger) *Publisher {
	return &Publisher{
		conn:    conn,
		subject: subject,
		logger:  log,
	}
}

// FollowCreated publishes a follow event. Failures are logged and swallowed;
// the caller's operation already succeeded.
func (p *Publisher) FollowCreated(followerID, followeeID string) {
	if p.conn == nil {
		return
	}

	event := FollowCreatedEvent{
		FollowerID: followerID,
		FolloweeID: followeeID,
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode follow event", zap.Error(err))
		return
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		p.logger.Warn("failed to publish follow event",
			zap.String("follower_id", followerID),
			zap.String("followee_id", followeeID),
			zap.Error(err),
		)
	}
}
