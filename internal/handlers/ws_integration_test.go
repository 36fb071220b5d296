package handlers

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"scopechat/internal/chat"
)

// startServer serves the fiber app on a loopback port so the real
// websocket client can dial it.
func startServer(t *testing.T, a *testApp) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = a.app.Listener(ln) }()
	t.Cleanup(func() { _ = a.app.Shutdown() })
	return "ws://" + ln.Addr().String() + "/ws"
}

func dial(t *testing.T, ctx context.Context, wsURL, cookie string) *chat.WSStream {
	t.Helper()
	stream, err := chat.DialStream(ctx, wsURL, http.Header{"Cookie": {cookie}}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { stream.Close() })
	return stream
}

func waitEvent(t *testing.T, stream *chat.WSStream) chat.LiveEvent {
	t.Helper()
	select {
	case ev, ok := <-stream.Events():
		require.True(t, ok, "stream closed early")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no live event delivered")
		return chat.LiveEvent{}
	}
}

func TestWebsocketBroadcastEndToEnd(t *testing.T) {
	a := newTestApp(t)
	aliceCookie := a.signup(t, "alice")
	bobCookie := a.signup(t, "bob")
	wsURL := startServer(t, a)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dial(t, ctx, wsURL, aliceCookie)
	bob := dial(t, ctx, wsURL, bobCookie)
	require.Eventually(t, func() bool { return a.hub.ClientCount() == 2 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.Announce(ctx, "alice"))
	require.NoError(t, alice.SendBroadcast(ctx, "hello everyone"))

	ev := waitEvent(t, bob)
	assert.Equal(t, chat.LiveBroadcast, ev.Kind)
	assert.Equal(t, "alice", ev.Sender)
	assert.Equal(t, "hello everyone", ev.Content)

	// The sender gets the same fan-out frame back.
	echo := waitEvent(t, alice)
	assert.Equal(t, "hello everyone", echo.Content)
}

func TestWebsocketGroupScopedDelivery(t *testing.T) {
	a := newTestApp(t)
	aliceCookie := a.signup(t, "alice")
	bobCookie := a.signup(t, "bob")
	wsURL := startServer(t, a)

	_, body := a.do(t, http.MethodPost, "/api/groups/create", aliceCookie,
		map[string]string{"group_name": "backend"})
	groupID := int64(body["group_id"].(float64))
	scope := chat.GroupScope(groupID, "backend")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dial(t, ctx, wsURL, aliceCookie)
	bob := dial(t, ctx, wsURL, bobCookie)
	require.Eventually(t, func() bool { return a.hub.ClientCount() == 2 },
		2*time.Second, 10*time.Millisecond)

	require.NoError(t, alice.JoinRoom(ctx, scope))
	// bob never created or joined the group, so his join is refused
	// server-side and the message must not reach him.
	require.NoError(t, bob.JoinRoom(ctx, scope))

	require.NoError(t, alice.SendGroup(ctx, groupID, "ship it"))

	ev := waitEvent(t, alice)
	assert.Equal(t, chat.LiveGroup, ev.Kind)
	assert.Equal(t, groupID, ev.GroupID)
	assert.Equal(t, "ship it", ev.Content)

	select {
	case ev := <-bob.Events():
		t.Fatalf("non-member received group message: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWebsocketPrivateDelivery(t *testing.T) {
	a := newTestApp(t)
	aliceCookie := a.signup(t, "alice")
	bobCookie := a.signup(t, "bob")
	wsURL := startServer(t, a)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := dial(t, ctx, wsURL, aliceCookie)
	bob := dial(t, ctx, wsURL, bobCookie)
	require.Eventually(t, func() bool { return a.hub.ClientCount() == 2 },
		2*time.Second, 10*time.Millisecond)

	users, err := a.store.ListUsers(context.Background())
	require.NoError(t, err)
	bobID := users[1].ID

	require.NoError(t, alice.SendPrivate(ctx, bobID, "psst"))

	ev := waitEvent(t, bob)
	assert.Equal(t, chat.LivePrivate, ev.Kind)
	assert.Equal(t, "alice", ev.Sender)
	assert.Equal(t, bobID, ev.ReceiverID)
	assert.Equal(t, "psst", ev.Content)
}

func TestWebsocketDialWithoutSessionFails(t *testing.T) {
	a := newTestApp(t)
	wsURL := startServer(t, a)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := chat.DialStream(ctx, wsURL, nil, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, chat.ErrTransportUnavailable)
}
