package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scopechat/internal/chat"
)

func TestParseCommand(t *testing.T) {
	cmd, arg, ok := parseCommand("/newgroup backend crew")
	require.True(t, ok)
	assert.Equal(t, "/newgroup", cmd)
	assert.Equal(t, "backend crew", arg)

	_, _, ok = parseCommand("just a message")
	assert.False(t, ok)

	cmd, arg, ok = parseCommand("/quit")
	require.True(t, ok)
	assert.Equal(t, "/quit", cmd)
	assert.Empty(t, arg)
}

func TestRebuildEntriesOrdersBroadcastGroupsPeers(t *testing.T) {
	m := New(nil, nil, chat.Identity{ID: 1, Username: "alice"})
	m.rebuildEntries(
		[]chat.Peer{{ID: 2, Username: "bob"}},
		[]chat.GroupSummary{{ID: 5, Name: "backend"}},
	)

	require.Len(t, m.entries, 3)
	assert.Equal(t, "Broadcast", m.entries[0].label)
	assert.Equal(t, "# backend", m.entries[1].label)
	assert.Equal(t, "@ bob", m.entries[2].label)
	assert.Equal(t, chat.ScopeGroup, m.entries[1].scope.Kind)
	assert.Equal(t, int64(2), m.entries[2].scope.ID)
}

func TestRebuildEntriesClampsCursor(t *testing.T) {
	m := New(nil, nil, chat.Identity{ID: 1, Username: "alice"})
	m.rebuildEntries([]chat.Peer{{ID: 2, Username: "bob"}, {ID: 3, Username: "carol"}}, nil)
	m.cursor = 2

	m.rebuildEntries(nil, nil)
	assert.Equal(t, 0, m.cursor)
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestUpdateHistoryInsertsAboveLiveRows(t *testing.T) {
	m := New(nil, nil, chat.Identity{ID: 1, Username: "alice"})
	scope := chat.GroupScope(5, "backend")

	m = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = step(t, m, ScopeResetMsg{Scope: scope})
	m = step(t, m, LiveMsg{Message: chat.ChatMessage{
		SenderName: "bob", Content: "racing live", Scope: scope, Origin: chat.OriginLive,
	}})
	m = step(t, m, HistoryMsg{Messages: []chat.ChatMessage{
		{SenderName: "carol", Content: "from backlog", Scope: scope, Origin: chat.OriginHistory},
	}})

	require.Len(t, m.rows, 2)
	assert.Equal(t, "from backlog", m.rows[0].Content)
	assert.Equal(t, "racing live", m.rows[1].Content)
}

func TestUpdateDropsLiveRowsForOtherScopes(t *testing.T) {
	m := New(nil, nil, chat.Identity{ID: 1, Username: "alice"})
	m = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = step(t, m, ScopeResetMsg{Scope: chat.BroadcastScope()})
	m = step(t, m, LiveMsg{Message: chat.ChatMessage{
		SenderName: "bob", Content: "elsewhere", Scope: chat.GroupScope(5, "backend"),
	}})

	assert.Empty(t, m.rows)
}

func TestUpdateScopeResetClearsPane(t *testing.T) {
	m := New(nil, nil, chat.Identity{ID: 1, Username: "alice"})
	scope := chat.BroadcastScope()

	m = step(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m = step(t, m, ScopeResetMsg{Scope: scope})
	m = step(t, m, LiveMsg{Message: chat.ChatMessage{
		SenderName: "bob", Content: "hello", Scope: scope,
	}})
	require.Len(t, m.rows, 1)

	m = step(t, m, ScopeResetMsg{Scope: chat.GroupScope(5, "backend")})
	assert.Empty(t, m.rows)
}

func TestProgramRendererSafeBeforeAttach(t *testing.T) {
	r := NewProgramRenderer()
	r.Reset(chat.BroadcastScope())
	r.AppendLive(chat.ChatMessage{Content: "dropped"})
	r.InsertHistory(nil)
	r.NotifyError(assert.AnError)
}
