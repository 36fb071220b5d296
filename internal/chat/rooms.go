package chat

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// RoomManager tracks the single subscribed scope on the delivery stream.
// States: unselected (zero Scope) or subscribed to exactly one scope.
// Scope only ever changes through Select; there is no deselect. Callers
// serialize access (the Client holds its own lock across Select).
type RoomManager struct {
	stream DeliveryStream
	log    *zap.Logger

	current Scope
}

func NewRoomManager(stream DeliveryStream, log *zap.Logger) *RoomManager {
	return &RoomManager{stream: stream, log: log}
}

// Select leaves the previously subscribed scope and joins the new one.
// The leave is best effort: a failure is logged and the switch proceeds,
// because the router's filter discards late messages for the old scope
// anyway. If the join itself cannot be dispatched the manager falls back
// to unselected and returns ErrSubscriptionFailed.
//
// Re-selecting the current scope re-emits the join; the backend's room
// membership is a set, so this cannot duplicate delivery.
func (r *RoomManager) Select(ctx context.Context, scope Scope) error {
	if scope.IsNone() {
		return fmt.Errorf("%w: cannot select an empty scope", ErrSubscriptionFailed)
	}
	if !r.current.IsNone() && !r.current.Equal(scope) {
		if err := r.stream.LeaveRoom(ctx, r.current); err != nil {
			r.log.Warn("leave failed, continuing",
				zap.Stringer("scope", r.current), zap.Error(err))
		}
	}
	if err := r.stream.JoinRoom(ctx, scope); err != nil {
		r.current = NoScope()
		return fmt.Errorf("%w: join %s: %v", ErrSubscriptionFailed, scope, err)
	}
	r.current = scope
	return nil
}

// Current returns the subscribed scope, or the zero Scope when
// unselected.
func (r *RoomManager) Current() Scope { return r.current }
