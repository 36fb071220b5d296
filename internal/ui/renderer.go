// Package ui renders a chat session in the terminal. The model owns
// presentation only; scope filtering, ordering and backlog
// reconciliation happen in internal/chat before a row arrives here.
package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"scopechat/internal/chat"
)

// ScopeResetMsg clears the pane for a freshly selected scope.
type ScopeResetMsg struct{ Scope chat.Scope }

// LiveMsg appends one live row to the pane.
type LiveMsg struct{ Message chat.ChatMessage }

// HistoryMsg inserts the reconciled backlog above the live rows.
type HistoryMsg struct{ Messages []chat.ChatMessage }

// ErrMsg surfaces a background failure in the status line.
type ErrMsg struct{ Err error }

// ProgramRenderer forwards renderer callbacks into the bubbletea event
// loop. The chat client calls it from its own goroutines, so rows
// become messages rather than direct model mutation.
type ProgramRenderer struct {
	mu sync.Mutex
	p  *tea.Program
}

func NewProgramRenderer() *ProgramRenderer { return &ProgramRenderer{} }

// Attach binds the renderer to a running program. Callbacks before
// Attach are dropped; the client only starts once the program runs.
func (r *ProgramRenderer) Attach(p *tea.Program) {
	r.mu.Lock()
	r.p = p
	r.mu.Unlock()
}

func (r *ProgramRenderer) send(msg tea.Msg) {
	r.mu.Lock()
	p := r.p
	r.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (r *ProgramRenderer) Reset(scope chat.Scope) { r.send(ScopeResetMsg{Scope: scope}) }

func (r *ProgramRenderer) AppendLive(m chat.ChatMessage) { r.send(LiveMsg{Message: m}) }

func (r *ProgramRenderer) InsertHistory(ms []chat.ChatMessage) { r.send(HistoryMsg{Messages: ms}) }

// NotifyError adapts the renderer to the client's Notify hook.
func (r *ProgramRenderer) NotifyError(err error) { r.send(ErrMsg{Err: err}) }
