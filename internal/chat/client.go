package chat

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Renderer receives the rows that survive scope filtering and history
// reconciliation. Implementations own presentation only; ordering and
// dedup are settled before a row reaches them.
type Renderer interface {
	// Reset clears the pane for a newly selected scope.
	Reset(scope Scope)

	// AppendLive appends one live row after everything rendered so far.
	AppendLive(msg ChatMessage)

	// InsertHistory places the backlog block before every live row
	// appended since the last Reset.
	InsertHistory(msgs []ChatMessage)
}

// Client wires one session together: identity, active scope, delivery
// stream, backlog reconciliation and the renderer. One goroutine (Run)
// consumes live events; a mutex keeps scope switches, live delivery and
// fetch completion reading one consistent snapshot.
type Client struct {
	session  *Session
	stream   DeliveryStream
	rooms    *RoomManager
	router   *Router
	history  HistorySource
	renderer Renderer
	log      *zap.Logger
	timeout  time.Duration

	// Notify, when set, receives non-fatal errors raised off the caller's
	// stack (a failed backlog fetch). Fatal errors are returned directly.
	Notify func(error)

	announceOnce sync.Once

	mu       sync.Mutex
	gen      int // bumped per scope selection; stale fetches are dropped
	fetching bool
	lives    []ChatMessage // live rows rendered since the last Reset
	pending  []ChatMessage // live rows queued while the backlog loads
}

func NewClient(session *Session, stream DeliveryStream, history HistorySource, renderer Renderer, timeout time.Duration, log *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		session:  session,
		stream:   stream,
		rooms:    NewRoomManager(stream, log),
		router:   NewRouter(session, stream),
		history:  history,
		renderer: renderer,
		log:      log,
		timeout:  timeout,
	}
}

func (c *Client) Session() *Session { return c.session }

// Announce registers the identity's presence on the delivery stream.
// Effective once per session; later calls are no-ops.
func (c *Client) Announce(ctx context.Context) error {
	var err error
	c.announceOnce.Do(func() {
		err = c.stream.Announce(ctx, c.session.Identity().Username)
	})
	return err
}

// Run consumes live events until the delivery stream closes.
func (c *Client) Run() {
	for ev := range c.stream.Events() {
		c.handleLive(ev)
	}
}

// Select switches the session to scope: leave old room, join new room,
// clear the pane, then reconcile the backlog with whatever the stream
// pushes meanwhile. On ErrSubscriptionFailed the session ends up with no
// active scope, so sends stay disabled.
func (c *Client) Select(ctx context.Context, scope Scope) error {
	if scope.IsNone() {
		return ErrNoActiveScope
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	joinCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.rooms.Select(joinCtx, scope); err != nil {
		c.session.setScope(NoScope())
		return err
	}

	c.session.setScope(scope)
	c.renderer.Reset(scope)
	c.gen++
	c.fetching = true
	c.lives = nil
	c.pending = nil
	go c.loadHistory(c.gen, scope)
	return nil
}

// Send routes content to the active scope. Validation failures never
// reach the transport.
func (c *Client) Send(ctx context.Context, content string) error {
	sendCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.router.Send(sendCtx, content)
}

func (c *Client) handleLive(ev LiveEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg, ok := c.router.Accept(ev)
	if !ok {
		return
	}
	if c.fetching {
		// Arrived while the backlog loads; rendered after it, in arrival
		// order.
		c.pending = append(c.pending, msg)
		return
	}
	c.renderer.AppendLive(msg)
	c.lives = append(c.lives, msg)
}

func (c *Client) loadHistory(gen int, scope Scope) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	msgs, err := c.history.Load(ctx, scope, c.session.Identity())

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return // scope changed while fetching
	}
	c.fetching = false

	if err != nil {
		c.log.Warn("backlog fetch failed",
			zap.Stringer("scope", scope), zap.Error(err))
		c.notify(err)
	} else {
		live := make([]ChatMessage, 0, len(c.lives)+len(c.pending))
		live = append(live, c.lives...)
		live = append(live, c.pending...)
		if keep := mergeHistory(msgs, live); len(keep) > 0 {
			c.renderer.InsertHistory(keep)
		}
	}

	for _, m := range c.pending {
		c.renderer.AppendLive(m)
		c.lives = append(c.lives, m)
	}
	c.pending = nil
}

func (c *Client) notify(err error) {
	if c.Notify != nil {
		c.Notify(err)
	}
}
