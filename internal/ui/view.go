package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"scopechat/internal/chat"
)

const sidebarWidth = 24

var (
	sidebarStyle = lipgloss.NewStyle().
			Width(sidebarWidth).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("229")).
			Bold(true)

	ownSenderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("36")).Bold(true)
	otherSenderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("111")).Bold(true)
	historyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// layout resizes the panes after a terminal resize.
func (m *Model) layout() {
	mainWidth := m.width - sidebarWidth - 4
	if mainWidth < 20 {
		mainWidth = 20
	}
	paneHeight := m.height - 5
	if paneHeight < 3 {
		paneHeight = 3
	}
	if !m.ready {
		m.viewport = viewport.New(mainWidth, paneHeight)
		m.ready = true
	} else {
		m.viewport.Width = mainWidth
		m.viewport.Height = paneHeight
	}
	m.input.Width = mainWidth - 2
	m.refreshPane()
}

// refreshPane rewrites the viewport from the row list and pins the view
// to the newest message.
func (m *Model) refreshPane() {
	if !m.ready {
		return
	}
	lines := make([]string, 0, len(m.rows))
	for _, row := range m.rows {
		lines = append(lines, renderRow(row))
	}
	m.viewport.SetContent(strings.Join(lines, "\n"))
	m.viewport.GotoBottom()
}

func renderRow(row chat.ChatMessage) string {
	sender := otherSenderStyle
	if row.Own {
		sender = ownSenderStyle
	}
	line := sender.Render(row.SenderName) + ": " + row.Content
	if row.Origin == chat.OriginHistory {
		return historyStyle.Render(row.SenderName + ": " + row.Content)
	}
	return line
}

func (m Model) View() string {
	if !m.ready {
		return "starting up"
	}

	var sidebar strings.Builder
	sidebar.WriteString(headerStyle.Render(m.self.Username) + "\n\n")
	for i, e := range m.entries {
		label := e.label
		if i == m.cursor && m.focus == focusSidebar {
			label = selectedStyle.Render("> " + label)
		} else if e.scope.Equal(m.scope) && !m.scope.IsNone() {
			label = selectedStyle.Render(label)
		} else {
			label = "  " + label
		}
		sidebar.WriteString(label + "\n")
	}

	header := headerStyle.Render(scopeTitle(m.scope))
	status := ""
	if m.status != "" {
		status = statusStyle.Render(m.status)
	}
	main := lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.viewport.View(),
		m.input.View(),
		status,
	)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()),
		" "+main,
	)
}
