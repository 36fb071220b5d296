package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"scopechat/internal/chat"
)

const directoryTimeout = 10 * time.Second

// focus marks which pane receives key input.
type focus int

const (
	focusSidebar focus = iota
	focusInput
)

// entry is one selectable sidebar row.
type entry struct {
	label string
	scope chat.Scope
}

// directoryMsg carries a refreshed peer and group listing.
type directoryMsg struct {
	peers  []chat.Peer
	groups []chat.GroupSummary
}

// scopeSelectedMsg reports that a scope switch round-trip finished.
type scopeSelectedMsg struct{ err error }

type sentMsg struct{ err error }

type groupCreatedMsg struct{ err error }

// Model is the bubbletea model for one chat session.
type Model struct {
	client *chat.Client
	dir    *chat.Directory
	self   chat.Identity

	entries []entry
	cursor  int
	focus   focus

	scope chat.Scope
	rows  []chat.ChatMessage

	viewport viewport.Model
	input    textinput.Model

	width  int
	height int
	ready  bool

	status string
}

func New(client *chat.Client, dir *chat.Directory, self chat.Identity) Model {
	input := textinput.New()
	input.Placeholder = "pick a conversation first"
	input.CharLimit = 512
	return Model{
		client:  client,
		dir:     dir,
		self:    self,
		entries: []entry{{label: "Broadcast", scope: chat.BroadcastScope()}},
		focus:   focusSidebar,
		input:   input,
		status:  "loading directory",
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadDirectory()
}

func (m Model) loadDirectory() tea.Cmd {
	dir := m.dir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), directoryTimeout)
		defer cancel()
		peers, err := dir.Peers(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		groups, err := dir.Groups(ctx)
		if err != nil {
			return ErrMsg{Err: err}
		}
		return directoryMsg{peers: peers, groups: groups}
	}
}

func (m Model) selectScope(scope chat.Scope) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return scopeSelectedMsg{err: client.Select(context.Background(), scope)}
	}
}

func (m Model) sendMessage(content string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return sentMsg{err: client.Send(context.Background(), content)}
	}
}

func (m Model) createGroup(name string) tea.Cmd {
	dir := m.dir
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), directoryTimeout)
		defer cancel()
		_, err := dir.CreateGroup(ctx, name, "")
		return groupCreatedMsg{err: err}
	}
}

// rebuildEntries composes the sidebar: broadcast, then groups, then
// peers. The cursor is clamped so a shrinking directory cannot leave it
// past the end.
func (m *Model) rebuildEntries(peers []chat.Peer, groups []chat.GroupSummary) {
	entries := []entry{{label: "Broadcast", scope: chat.BroadcastScope()}}
	for _, g := range groups {
		entries = append(entries, entry{
			label: "# " + g.Name,
			scope: chat.GroupScope(g.ID, g.Name),
		})
	}
	for _, p := range peers {
		entries = append(entries, entry{
			label: "@ " + p.Username,
			scope: chat.PrivateScope(p.ID, p.Username),
		})
	}
	m.entries = entries
	if m.cursor >= len(entries) {
		m.cursor = len(entries) - 1
	}
}

func scopeTitle(scope chat.Scope) string {
	switch scope.Kind {
	case chat.ScopeBroadcast:
		return "Broadcast"
	case chat.ScopeGroup:
		return "# " + scope.Name
	case chat.ScopePrivate:
		return "@ " + scope.Name
	default:
		return "no conversation selected"
	}
}

// parseCommand splits a "/newgroup name" input line. Anything that is
// not a recognized command is plain content.
func parseCommand(line string) (cmd, arg string, ok bool) {
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	parts := strings.SplitN(line, " ", 2)
	cmd = parts[0]
	if len(parts) == 2 {
		arg = strings.TrimSpace(parts[1])
	}
	return cmd, arg, true
}
