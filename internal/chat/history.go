package chat

import (
	"context"
	"fmt"
	"net/http"
)

// HistorySource fetches the backlog for a scope, oldest-first, truncated
// to the source's notion of the most recent rows.
type HistorySource interface {
	Load(ctx context.Context, scope Scope, self Identity) ([]ChatMessage, error)
}

// HistoryLoader is the HTTP HistorySource against the backend's message
// API.
type HistoryLoader struct {
	base  string
	http  *http.Client
	limit int
}

func NewHistoryLoader(baseURL string, client *http.Client, limit int) *HistoryLoader {
	if limit <= 0 {
		limit = 100
	}
	return &HistoryLoader{base: baseURL, http: client, limit: limit}
}

type historyResponse struct {
	Success  bool         `json:"success"`
	Error    string       `json:"error,omitempty"`
	Messages []historyRow `json:"messages"`
}

type historyRow struct {
	SenderName     string `json:"sender_name"`
	MessageContent string `json:"message_content"`
}

// Load fetches the backlog for scope. Backlog rows carry no sender id, so
// the own flag falls back to the sender name.
func (h *HistoryLoader) Load(ctx context.Context, scope Scope, self Identity) ([]ChatMessage, error) {
	var url string
	switch scope.Kind {
	case ScopeBroadcast:
		url = fmt.Sprintf("%s/api/messages/broadcast?limit=%d", h.base, h.limit)
	case ScopeGroup:
		url = fmt.Sprintf("%s/api/messages/group/%d?limit=%d", h.base, scope.ID, h.limit)
	case ScopePrivate:
		url = fmt.Sprintf("%s/api/messages/private/%d?limit=%d", h.base, scope.ID, h.limit)
	default:
		return nil, nil
	}

	var resp historyResponse
	if err := getJSON(ctx, h.http, url, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: %s", ErrHistoryUnavailable, resp.Error)
	}

	msgs := make([]ChatMessage, 0, len(resp.Messages))
	for _, row := range resp.Messages {
		msgs = append(msgs, ChatMessage{
			SenderName: row.SenderName,
			Content:    row.MessageContent,
			Scope:      scope,
			Origin:     OriginHistory,
			Own:        row.SenderName == self.Username,
		})
	}
	return msgs, nil
}

// mergeHistory reconciles a fetched backlog with the live rows already
// rendered or queued for the same scope. A live message that raced the
// fetch shows up twice: once in the live list and once at the tail of
// the backlog. The longest backlog suffix matching the live list's tail
// by (sender, content) is that overlap; it is dropped so the occurrence
// renders exactly once, in its live position.
func mergeHistory(history, live []ChatMessage) []ChatMessage {
	max := len(history)
	if len(live) < max {
		max = len(live)
	}
	for k := max; k > 0; k-- {
		if tailsEqual(history, live, k) {
			return history[:len(history)-k]
		}
	}
	return history
}

func tailsEqual(history, live []ChatMessage, k int) bool {
	h := history[len(history)-k:]
	l := live[len(live)-k:]
	for i := range h {
		if !h[i].sameOccurrence(l[i]) {
			return false
		}
	}
	return true
}
