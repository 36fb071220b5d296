package chat

import "errors"

var (
	// ErrUnauthenticated means no valid session exists; the caller must run
	// its login flow and perform no further chat operations.
	ErrUnauthenticated = errors.New("chat: not authenticated")

	// ErrDirectoryUnavailable means the peer/group listing could not be
	// fetched. Distinct from an empty directory.
	ErrDirectoryUnavailable = errors.New("chat: directory unavailable")

	// ErrSubscriptionFailed means the join for a newly selected scope could
	// not be dispatched; the session stays unselected.
	ErrSubscriptionFailed = errors.New("chat: room subscription failed")

	// ErrHistoryUnavailable means the backlog fetch failed; live delivery
	// continues unaffected.
	ErrHistoryUnavailable = errors.New("chat: history unavailable")

	// ErrNoActiveScope rejects a send while no scope is selected.
	ErrNoActiveScope = errors.New("chat: no active scope")

	// ErrEmptyContent rejects a send whose content is blank after trimming.
	ErrEmptyContent = errors.New("chat: empty message content")

	// ErrTransportUnavailable means the delivery stream is unreachable.
	ErrTransportUnavailable = errors.New("chat: delivery stream unavailable")
)
