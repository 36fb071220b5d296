package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoomManagerFirstSelect(t *testing.T) {
	stream := newFakeStream()
	rm := NewRoomManager(stream, zap.NewNop())

	require.NoError(t, rm.Select(context.Background(), GroupScope(7, "team")))
	assert.Equal(t, []string{"join_room:group:7"}, stream.snapshot())
	assert.True(t, rm.Current().Equal(GroupScope(7, "team")))
}

func TestRoomManagerSwitchLeavesOldScope(t *testing.T) {
	stream := newFakeStream()
	rm := NewRoomManager(stream, zap.NewNop())

	require.NoError(t, rm.Select(context.Background(), GroupScope(7, "team")))
	require.NoError(t, rm.Select(context.Background(), PrivateScope(2, "bob")))

	// Leave precedes join; the transport preserves send order.
	assert.Equal(t, []string{
		"join_room:group:7",
		"leave_room:group:7",
		"join_room:private:2",
	}, stream.snapshot())
	assert.True(t, rm.Current().Equal(PrivateScope(2, "bob")))
}

func TestRoomManagerReselectSkipsLeave(t *testing.T) {
	stream := newFakeStream()
	rm := NewRoomManager(stream, zap.NewNop())

	require.NoError(t, rm.Select(context.Background(), GroupScope(7, "team")))
	require.NoError(t, rm.Select(context.Background(), GroupScope(7, "team")))

	assert.Equal(t, []string{"join_room:group:7", "join_room:group:7"}, stream.snapshot(),
		"re-join is fine, leaving the scope being re-selected is not")
}

func TestRoomManagerLeaveFailureIsNotFatal(t *testing.T) {
	stream := newFakeStream()
	stream.leaveErr = errors.New("boom")
	rm := NewRoomManager(stream, zap.NewNop())

	require.NoError(t, rm.Select(context.Background(), GroupScope(7, "team")))
	require.NoError(t, rm.Select(context.Background(), BroadcastScope()))
	assert.True(t, rm.Current().Equal(BroadcastScope()))
}

func TestRoomManagerJoinFailure(t *testing.T) {
	stream := newFakeStream()
	stream.joinErr = errors.New("boom")
	rm := NewRoomManager(stream, zap.NewNop())

	err := rm.Select(context.Background(), GroupScope(7, "team"))
	require.ErrorIs(t, err, ErrSubscriptionFailed)
	assert.True(t, rm.Current().IsNone(), "never record a subscription without a dispatched join")
}

func TestRoomManagerSelectNone(t *testing.T) {
	rm := NewRoomManager(newFakeStream(), zap.NewNop())
	require.ErrorIs(t, rm.Select(context.Background(), NoScope()), ErrSubscriptionFailed)
}
