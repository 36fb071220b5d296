package chat

import "context"

// DeliveryStream is the persistent bidirectional event channel between
// this session and the routing backend. Events() yields decoded live
// messages until the stream closes; outbound calls dispatch exactly one
// framed event each.
type DeliveryStream interface {
	// Announce registers the authenticated identity's presence.
	Announce(ctx context.Context, username string) error

	// JoinRoom subscribes to a scope's delivery room.
	JoinRoom(ctx context.Context, scope Scope) error

	// LeaveRoom abandons a scope's delivery room. Best effort: late
	// messages for the old scope may still arrive and are discarded by
	// the router's filter.
	LeaveRoom(ctx context.Context, scope Scope) error

	SendBroadcast(ctx context.Context, message string) error
	SendGroup(ctx context.Context, groupID int64, content string) error
	SendPrivate(ctx context.Context, receiverID int64, content string) error

	Events() <-chan LiveEvent
	Close() error
}
