package chat

import (
	"context"
	"strings"
)

// Router classifies outgoing input by the active scope and filters the
// always-on live stream down to it. Both directions read the same scope
// snapshot from the session.
type Router struct {
	session *Session
	stream  DeliveryStream
}

func NewRouter(session *Session, stream DeliveryStream) *Router {
	return &Router{session: session, stream: stream}
}

// Send validates content, then dispatches exactly one outbound event of
// the kind matching the active scope. The sent message is not rendered
// locally; the delivery stream echoes it back as a live event, keeping a
// single source of truth for message existence.
func (r *Router) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return ErrEmptyContent
	}
	scope := r.session.Scope()
	switch scope.Kind {
	case ScopeBroadcast:
		return r.stream.SendBroadcast(ctx, content)
	case ScopeGroup:
		return r.stream.SendGroup(ctx, scope.ID, content)
	case ScopePrivate:
		return r.stream.SendPrivate(ctx, scope.ID, content)
	default:
		return ErrNoActiveScope
	}
}

// Accept tests a live event against the active scope. Rejected events
// belong to a scope the user is not viewing; they are dropped silently.
// The own flag comes from the event's sender identity, never from local
// send-time bookkeeping.
func (r *Router) Accept(ev LiveEvent) (ChatMessage, bool) {
	scope := r.session.Scope()
	self := r.session.Identity()

	ok := false
	switch scope.Kind {
	case ScopeBroadcast:
		ok = ev.Kind == LiveBroadcast || ev.Kind == LiveDirect
	case ScopeGroup:
		ok = ev.Kind == LiveGroup && ev.GroupID == scope.ID
	case ScopePrivate:
		if ev.Kind == LivePrivate || ev.Kind == LiveDirect {
			// Inbound: the counterpart is the sender. Outbound echo: the
			// counterpart is the receiver.
			ok = ev.Sender == scope.Name ||
				(ev.SenderID == self.ID && ev.ReceiverID == scope.ID)
		}
	}
	if !ok {
		return ChatMessage{}, false
	}

	return ChatMessage{
		SenderID:   ev.SenderID,
		SenderName: ev.Sender,
		Content:    ev.Content,
		Scope:      scope,
		Origin:     OriginLive,
		Own:        ev.SenderID != 0 && ev.SenderID == self.ID,
	}, true
}
