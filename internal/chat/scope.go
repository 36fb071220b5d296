// Package chat implements the client side of a scopechat session: session
// gate, directory cache, room subscription manager, history reconciler,
// message router and the delivery stream they all share. Rendering is left
// to a Renderer supplied by the caller.
package chat

import "fmt"

// ScopeKind tags a Scope variant.
type ScopeKind int

const (
	ScopeNone ScopeKind = iota
	ScopeBroadcast
	ScopeGroup
	ScopePrivate
)

// Scope is the single chat context selected for viewing and sending:
// broadcast, one group, or one private peer. The zero value is "nothing
// selected".
type Scope struct {
	Kind ScopeKind
	ID   int64  // group id or peer id
	Name string // group name or peer username
}

func NoScope() Scope          { return Scope{} }
func BroadcastScope() Scope   { return Scope{Kind: ScopeBroadcast} }
func GroupScope(id int64, name string) Scope {
	return Scope{Kind: ScopeGroup, ID: id, Name: name}
}
func PrivateScope(peerID int64, peerName string) Scope {
	return Scope{Kind: ScopePrivate, ID: peerID, Name: peerName}
}

func (s Scope) IsNone() bool { return s.Kind == ScopeNone }

// Equal ignores the display name; kind and id identify a scope.
func (s Scope) Equal(o Scope) bool { return s.Kind == o.Kind && s.ID == o.ID }

// RoomType is the wire name used in join_room / leave_room payloads.
func (s Scope) RoomType() string {
	switch s.Kind {
	case ScopeBroadcast:
		return "broadcast"
	case ScopeGroup:
		return "group"
	case ScopePrivate:
		return "private"
	}
	return ""
}

func (s Scope) String() string {
	switch s.Kind {
	case ScopeBroadcast:
		return "broadcast"
	case ScopeGroup:
		return fmt.Sprintf("group/%d(%s)", s.ID, s.Name)
	case ScopePrivate:
		return fmt.Sprintf("private/%d(%s)", s.ID, s.Name)
	}
	return "none"
}
