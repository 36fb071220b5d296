// Package hub fans live chat events out to connected websocket clients:
// broadcasts to everyone, group messages to joined room members, private
// messages to the receiver plus an echo to the sender.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"scopechat/internal/chat"
	"scopechat/internal/store"
)

const persistTimeout = 5 * time.Second

// Inbound is one decoded frame read from a client connection.
type Inbound struct {
	Client *Client
	Env    chat.Envelope
}

type Hub struct {
	log   *zap.Logger
	store *store.Store

	mu      sync.RWMutex
	clients map[string]*Client            // conn id -> client
	byUser  map[int64]map[string]*Client  // user id -> conn id -> client
	rooms   map[string]map[string]*Client // room key -> conn id -> client

	RegisterChan   chan *Client
	UnregisterChan chan *Client
	InboundChan    chan Inbound
}

func New(st *store.Store, log *zap.Logger) *Hub {
	return &Hub{
		log:            log,
		store:          st,
		clients:        map[string]*Client{},
		byUser:         map[int64]map[string]*Client{},
		rooms:          map[string]map[string]*Client{},
		RegisterChan:   make(chan *Client),
		UnregisterChan: make(chan *Client),
		InboundChan:    make(chan Inbound, 16),
	}
}

func groupRoom(id int64) string { return fmt.Sprintf("group_%d", id) }

// ClientCount reports the number of registered connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Run consumes registration and inbound channels until ctx is done. All
// map mutation and fan-out happens here, on one goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.RegisterChan:
			h.mu.Lock()
			h.clients[client.ConnID] = client
			if h.byUser[client.UserID] == nil {
				h.byUser[client.UserID] = map[string]*Client{}
			}
			h.byUser[client.UserID][client.ConnID] = client
			h.mu.Unlock()
			h.log.Info("client connected",
				zap.String("conn", client.ConnID), zap.String("user", client.Name))

		case client := <-h.UnregisterChan:
			h.mu.Lock()
			delete(h.clients, client.ConnID)
			if conns := h.byUser[client.UserID]; conns != nil {
				delete(conns, client.ConnID)
				if len(conns) == 0 {
					delete(h.byUser, client.UserID)
				}
			}
			for _, members := range h.rooms {
				delete(members, client.ConnID)
			}
			h.mu.Unlock()
			close(client.Send)
			h.log.Info("client disconnected",
				zap.String("conn", client.ConnID), zap.String("user", client.Name))

		case in := <-h.InboundChan:
			h.handle(in)
		}
	}
}

func (h *Hub) handle(in Inbound) {
	switch in.Env.Event {
	case chat.EventJoin:
		var username string
		_ = json.Unmarshal(in.Env.Data, &username)
		h.log.Info("presence announced",
			zap.String("user", in.Client.Name), zap.String("claimed", username))

	case chat.EventJoinRoom:
		h.joinRoom(in)

	case chat.EventLeaveRoom:
		h.leaveRoom(in)

	case chat.EventSendBroadcast:
		h.sendBroadcast(in)

	case chat.EventSendGroup:
		h.sendGroup(in)

	case chat.EventSendPrivate:
		h.sendPrivate(in)

	default:
		h.log.Warn("unknown event", zap.String("event", in.Env.Event))
	}
}

// joinRoom subscribes the connection to a group room. Broadcast needs no
// room (everyone receives it) and private delivery is routed by user id,
// so both are accepted as no-ops.
func (h *Hub) joinRoom(in Inbound) {
	var p chat.RoomPayload
	if err := json.Unmarshal(in.Env.Data, &p); err != nil {
		h.log.Warn("bad join_room payload", zap.Error(err))
		return
	}
	if p.RoomType != "group" {
		return
	}
	if !h.requireMembership(in.Client, p.RoomID) {
		return
	}
	key := groupRoom(p.RoomID)
	h.mu.Lock()
	if h.rooms[key] == nil {
		h.rooms[key] = map[string]*Client{}
	}
	h.rooms[key][in.Client.ConnID] = in.Client
	h.mu.Unlock()
	h.log.Info("joined room", zap.String("room", key), zap.String("user", in.Client.Name))
}

func (h *Hub) leaveRoom(in Inbound) {
	var p chat.RoomPayload
	if err := json.Unmarshal(in.Env.Data, &p); err != nil {
		h.log.Warn("bad leave_room payload", zap.Error(err))
		return
	}
	if p.RoomType != "group" {
		return
	}
	key := groupRoom(p.RoomID)
	h.mu.Lock()
	if members := h.rooms[key]; members != nil {
		delete(members, in.Client.ConnID)
	}
	h.mu.Unlock()
}

func (h *Hub) sendBroadcast(in Inbound) {
	var p chat.BroadcastSend
	if err := json.Unmarshal(in.Env.Data, &p); err != nil || p.Message == "" {
		h.log.Warn("bad send_broadcast payload", zap.Error(err))
		return
	}
	h.persist(store.Message{SenderID: in.Client.UserID, Content: p.Message, Type: store.TypeBroadcast})

	out := receivePayload{
		Type:     "broadcast",
		Sender:   in.Client.Name,
		SenderID: in.Client.UserID,
		Content:  p.Message,
		Message:  p.Message,
	}
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	h.emit(targets, out)
}

func (h *Hub) sendGroup(in Inbound) {
	var p chat.GroupSend
	if err := json.Unmarshal(in.Env.Data, &p); err != nil || p.Content == "" {
		h.log.Warn("bad send_group payload", zap.Error(err))
		return
	}
	if !h.requireMembership(in.Client, p.GroupID) {
		return
	}
	h.persist(store.Message{
		SenderID: in.Client.UserID,
		GroupID:  p.GroupID,
		Content:  p.Content,
		Type:     store.TypeGroup,
	})

	out := receivePayload{
		Type:     "group",
		Sender:   in.Client.Name,
		SenderID: in.Client.UserID,
		GroupID:  p.GroupID,
		Content:  p.Content,
		Message:  p.Content,
	}
	h.mu.RLock()
	members := h.rooms[groupRoom(p.GroupID)]
	targets := make([]*Client, 0, len(members))
	for _, c := range members {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	h.emit(targets, out)
}

func (h *Hub) sendPrivate(in Inbound) {
	var p chat.PrivateSend
	if err := json.Unmarshal(in.Env.Data, &p); err != nil || p.Content == "" {
		h.log.Warn("bad send_private payload", zap.Error(err))
		return
	}
	h.persist(store.Message{
		SenderID:   in.Client.UserID,
		ReceiverID: p.ReceiverID,
		Content:    p.Content,
		Type:       store.TypePrivate,
	})

	out := receivePayload{
		Type:       "private",
		Sender:     in.Client.Name,
		SenderID:   in.Client.UserID,
		ReceiverID: p.ReceiverID,
		Content:    p.Content,
		Message:    p.Content,
	}
	h.mu.RLock()
	var targets []*Client
	for _, c := range h.byUser[p.ReceiverID] {
		targets = append(targets, c)
	}
	if p.ReceiverID != in.Client.UserID {
		// Echo back to every connection of the sender.
		for _, c := range h.byUser[in.Client.UserID] {
			targets = append(targets, c)
		}
	}
	h.mu.RUnlock()
	h.emit(targets, out)
}

func (h *Hub) requireMembership(c *Client, groupID int64) bool {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	ok, err := h.store.IsMember(ctx, c.UserID, groupID)
	if err != nil {
		h.log.Error("membership check failed", zap.Error(err))
		return false
	}
	if !ok {
		h.log.Warn("not a group member",
			zap.String("user", c.Name), zap.Int64("group", groupID))
	}
	return ok
}

func (h *Hub) persist(m store.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if _, err := h.store.SaveMessage(ctx, m); err != nil {
		// Delivery still proceeds; the row is just missing from backlog.
		h.log.Error("persist message failed", zap.Error(err))
	}
}

// receivePayload is the unified live event. Content is mirrored into the
// legacy message field for older clients.
type receivePayload struct {
	Type       string `json:"type"`
	Sender     string `json:"sender"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id,omitempty"`
	GroupID    int64  `json:"group_id,omitempty"`
	Content    string `json:"content"`
	Message    string `json:"message"`
}

func (h *Hub) emit(targets []*Client, payload receivePayload) {
	env, err := chat.NewEnvelope(chat.EventReceive, payload)
	if err != nil {
		h.log.Error("encode receive_message", zap.Error(err))
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		h.log.Error("encode envelope", zap.Error(err))
		return
	}
	for _, c := range targets {
		select {
		case c.Send <- data:
		default:
			// Slow consumer; drop rather than stall the hub.
		}
	}
}
