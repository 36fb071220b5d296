package chat

import (
	"encoding/json"
	"fmt"
)

// Event names carried on the delivery stream.
const (
	EventJoin          = "join"
	EventJoinRoom      = "join_room"
	EventLeaveRoom     = "leave_room"
	EventSendBroadcast = "send_broadcast"
	EventSendGroup     = "send_group"
	EventSendPrivate   = "send_private"
	EventReceive       = "receive_message"
)

// Envelope frames every event on the delivery stream: one channel, many
// message kinds.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into a framed event.
func NewEnvelope(event string, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("encode %s: %w", event, err)
	}
	return Envelope{Event: event, Data: data}, nil
}

// RoomPayload subscribes to or leaves a scope's delivery room.
type RoomPayload struct {
	RoomType string `json:"room_type"`
	RoomID   int64  `json:"room_id,omitempty"`
}

// BroadcastSend carries a broadcast message.
type BroadcastSend struct {
	Message string `json:"message"`
}

// GroupSend carries a message to one group.
type GroupSend struct {
	GroupID int64  `json:"group_id"`
	Content string `json:"content"`
}

// PrivateSend carries a message to one peer.
type PrivateSend struct {
	ReceiverID int64  `json:"receiver_id"`
	Content    string `json:"content"`
}

// LiveKind tags a decoded live event.
type LiveKind int

const (
	// LiveDirect is a receive_message that carried neither a type tag nor
	// a group id: broadcast or private, settled against the active scope.
	LiveDirect LiveKind = iota
	LiveBroadcast
	LiveGroup
	LivePrivate
)

// LiveEvent is a receive_message decoded at the stream boundary into a
// tagged payload, so scope filtering never branches on field presence.
type LiveEvent struct {
	Kind       LiveKind
	Sender     string
	SenderID   int64
	ReceiverID int64 // private echoes only
	GroupID    int64
	Content    string
}

type receiveWire struct {
	Type       string `json:"type,omitempty"`
	Sender     string `json:"sender"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id,omitempty"`
	GroupID    *int64 `json:"group_id,omitempty"`
	Content    string `json:"content,omitempty"`
	Message    string `json:"message,omitempty"`
}

// DecodeLive turns raw receive_message data into a LiveEvent. A present
// group_id always means group scope; the type tag settles the rest, and
// events without either stay LiveDirect.
func DecodeLive(data json.RawMessage) (LiveEvent, error) {
	var w receiveWire
	if err := json.Unmarshal(data, &w); err != nil {
		return LiveEvent{}, fmt.Errorf("decode receive_message: %w", err)
	}
	content := w.Message
	if content == "" {
		content = w.Content
	}
	ev := LiveEvent{
		Sender:     w.Sender,
		SenderID:   w.SenderID,
		ReceiverID: w.ReceiverID,
		Content:    content,
	}
	switch {
	case w.GroupID != nil:
		ev.Kind = LiveGroup
		ev.GroupID = *w.GroupID
	case w.Type == "broadcast":
		ev.Kind = LiveBroadcast
	case w.Type == "private":
		ev.Kind = LivePrivate
	default:
		ev.Kind = LiveDirect
	}
	return ev, nil
}
