package chat

// Identity is the authenticated user. Immutable for the session lifetime.
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Peer is a directory entry for an addressable user.
type Peer struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// GroupSummary is a directory entry for a group.
type GroupSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"group_name"`
	Description string `json:"description"`
}

// Origin says whether a message came from a backlog fetch or the live
// stream.
type Origin int

const (
	OriginHistory Origin = iota
	OriginLive
)

// ChatMessage is one rendered row. Immutable once constructed. Backlog
// rows carry no sender id, so SenderID may be zero.
type ChatMessage struct {
	SenderID   int64
	SenderName string
	Content    string
	Scope      Scope
	Origin     Origin
	Own        bool
}

// sameOccurrence treats identical (sender, content) pairs as the same
// logical message; backlog rows and live events share no message id.
func (m ChatMessage) sameOccurrence(o ChatMessage) bool {
	return m.SenderName == o.SenderName && m.Content == o.Content
}
