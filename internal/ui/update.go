package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"scopechat/internal/chat"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case directoryMsg:
		m.rebuildEntries(msg.peers, msg.groups)
		m.status = ""
		return m, nil

	case ScopeResetMsg:
		m.scope = msg.Scope
		m.rows = nil
		m.status = "loading backlog"
		m.refreshPane()
		return m, nil

	case LiveMsg:
		if msg.Message.Scope.Equal(m.scope) {
			m.rows = append(m.rows, msg.Message)
			m.refreshPane()
		}
		return m, nil

	case HistoryMsg:
		// Backlog goes above whatever live rows raced the fetch.
		m.rows = append(append([]chat.ChatMessage{}, msg.Messages...), m.rows...)
		m.status = ""
		m.refreshPane()
		return m, nil

	case scopeSelectedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.focus = focusInput
		m.input.Placeholder = "message " + scopeTitle(m.scope)
		m.input.Focus()
		return m, nil

	case sentMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
		}
		return m, nil

	case groupCreatedMsg:
		if msg.err != nil {
			m.status = msg.err.Error()
			return m, nil
		}
		m.status = "group created"
		return m, m.loadDirectory()

	case ErrMsg:
		m.status = msg.Err.Error()
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit

	case "tab":
		if m.focus == focusSidebar {
			m.focus = focusInput
			m.input.Focus()
		} else {
			m.focus = focusSidebar
			m.input.Blur()
		}
		return m, nil
	}

	if m.focus == focusSidebar {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "r":
			return m, m.loadDirectory()
		case "enter":
			return m, m.selectScope(m.entries[m.cursor].scope)
		}
		return m, nil
	}

	if msg.String() == "enter" {
		line := m.input.Value()
		m.input.Reset()
		if cmd, arg, ok := parseCommand(line); ok {
			switch cmd {
			case "/newgroup":
				if arg == "" {
					m.status = "usage: /newgroup <name>"
					return m, nil
				}
				return m, m.createGroup(arg)
			default:
				m.status = "unknown command " + cmd
				return m, nil
			}
		}
		return m, m.sendMessage(line)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}
