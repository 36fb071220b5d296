package chat

import (
	"context"
	"fmt"
	"sync"
)

// fakeStream records dispatched events and lets tests push live events.
type fakeStream struct {
	mu    sync.Mutex
	calls []string

	events chan LiveEvent

	joinErr  error
	leaveErr error
	sendErr  error

	closeOnce sync.Once
}

func newFakeStream() *fakeStream {
	return &fakeStream{events: make(chan LiveEvent, 16)}
}

func (f *fakeStream) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeStream) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *fakeStream) Announce(_ context.Context, username string) error {
	f.record("join:" + username)
	return nil
}

func (f *fakeStream) JoinRoom(_ context.Context, scope Scope) error {
	if f.joinErr != nil {
		return f.joinErr
	}
	f.record(fmt.Sprintf("join_room:%s:%d", scope.RoomType(), scope.ID))
	return nil
}

func (f *fakeStream) LeaveRoom(_ context.Context, scope Scope) error {
	if f.leaveErr != nil {
		return f.leaveErr
	}
	f.record(fmt.Sprintf("leave_room:%s:%d", scope.RoomType(), scope.ID))
	return nil
}

func (f *fakeStream) SendBroadcast(_ context.Context, message string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.record("send_broadcast:" + message)
	return nil
}

func (f *fakeStream) SendGroup(_ context.Context, groupID int64, content string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.record(fmt.Sprintf("send_group:%d:%s", groupID, content))
	return nil
}

func (f *fakeStream) SendPrivate(_ context.Context, receiverID int64, content string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.record(fmt.Sprintf("send_private:%d:%s", receiverID, content))
	return nil
}

func (f *fakeStream) Events() <-chan LiveEvent { return f.events }

func (f *fakeStream) Close() error {
	f.closeOnce.Do(func() { close(f.events) })
	return nil
}

// recordingRenderer captures render calls; rows() is the final visible
// order: one history block followed by live rows.
type recordingRenderer struct {
	mu      sync.Mutex
	scope   Scope
	resets  int
	history []ChatMessage
	live    []ChatMessage
}

func (r *recordingRenderer) Reset(scope Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scope = scope
	r.resets++
	r.history = nil
	r.live = nil
}

func (r *recordingRenderer) AppendLive(msg ChatMessage) {
	r.mu.Lock()
	r.live = append(r.live, msg)
	r.mu.Unlock()
}

func (r *recordingRenderer) InsertHistory(msgs []ChatMessage) {
	r.mu.Lock()
	r.history = append(r.history, msgs...)
	r.mu.Unlock()
}

func (r *recordingRenderer) rows() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.history)+len(r.live))
	for _, m := range r.history {
		out = append(out, m.SenderName+": "+m.Content)
	}
	for _, m := range r.live {
		out = append(out, m.SenderName+": "+m.Content)
	}
	return out
}

func (r *recordingRenderer) all() []ChatMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ChatMessage, 0, len(r.history)+len(r.live))
	out = append(out, r.history...)
	out = append(out, r.live...)
	return out
}

// fakeHistory serves scripted backlog rows; an optional gate blocks Load
// until the test releases it, standing in for a slow fetch.
type fakeHistory struct {
	rows [][2]string // (sender, content), oldest first
	err  error
	gate chan struct{}
}

func (f *fakeHistory) Load(ctx context.Context, scope Scope, self Identity) ([]ChatMessage, error) {
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	msgs := make([]ChatMessage, 0, len(f.rows))
	for _, row := range f.rows {
		msgs = append(msgs, ChatMessage{
			SenderName: row[0],
			Content:    row[1],
			Scope:      scope,
			Origin:     OriginHistory,
			Own:        row[0] == self.Username,
		})
	}
	return msgs, nil
}
