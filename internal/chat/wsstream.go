package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/fasthttp/websocket"
	"go.uber.org/zap"
)

const defaultWriteTimeout = 10 * time.Second

// WSStream is the websocket implementation of DeliveryStream. A single
// goroutine owns reads; writes are serialized by a mutex.
type WSStream struct {
	conn   *websocket.Conn
	log    *zap.Logger
	events chan LiveEvent

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// DialStream connects the delivery stream. The header carries the HTTP
// session cookie so the backend can tie the socket to the login.
func DialStream(ctx context.Context, wsURL string, header http.Header, log *zap.Logger) (*WSStream, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: dial %s: %v", ErrTransportUnavailable, wsURL, err)
	}
	s := &WSStream{
		conn:   conn,
		log:    log,
		events: make(chan LiveEvent, 64),
	}
	go s.readPump()
	return s, nil
}

func (s *WSStream) readPump() {
	defer close(s.events)
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			s.log.Info("delivery stream closed", zap.Error(err))
			return
		}
		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			s.log.Warn("bad frame on delivery stream", zap.Error(err))
			continue
		}
		if env.Event != EventReceive {
			continue
		}
		ev, err := DecodeLive(env.Data)
		if err != nil {
			s.log.Warn("undecodable live event", zap.Error(err))
			continue
		}
		s.events <- ev
	}
}

func (s *WSStream) emit(ctx context.Context, event string, payload any) error {
	env, err := NewEnvelope(event, payload)
	if err != nil {
		return err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode %s: %w", event, err)
	}

	deadline := time.Now().Add(defaultWriteTimeout)
	if d, ok := ctx.Deadline(); ok {
		deadline = d
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.SetWriteDeadline(deadline)
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrTransportUnavailable, event, err)
	}
	return nil
}

func (s *WSStream) Announce(ctx context.Context, username string) error {
	return s.emit(ctx, EventJoin, username)
}

func (s *WSStream) JoinRoom(ctx context.Context, scope Scope) error {
	return s.emit(ctx, EventJoinRoom, RoomPayload{RoomType: scope.RoomType(), RoomID: scope.ID})
}

func (s *WSStream) LeaveRoom(ctx context.Context, scope Scope) error {
	return s.emit(ctx, EventLeaveRoom, RoomPayload{RoomType: scope.RoomType(), RoomID: scope.ID})
}

func (s *WSStream) SendBroadcast(ctx context.Context, message string) error {
	return s.emit(ctx, EventSendBroadcast, BroadcastSend{Message: message})
}

func (s *WSStream) SendGroup(ctx context.Context, groupID int64, content string) error {
	return s.emit(ctx, EventSendGroup, GroupSend{GroupID: groupID, Content: content})
}

func (s *WSStream) SendPrivate(ctx context.Context, receiverID int64, content string) error {
	return s.emit(ctx, EventSendPrivate, PrivateSend{ReceiverID: receiverID, Content: content})
}

func (s *WSStream) Events() <-chan LiveEvent { return s.events }

func (s *WSStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.conn.Close()
	})
	return err
}
