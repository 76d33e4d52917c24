package ticket

import (
	"errors"
	"fmt"
)

// ErrNotATicket means the channel has no repository record and its name does
// not follow the ticket naming convention, so reconciliation was impossible.
var ErrNotATicket = errors.New("not a ticket channel")

// ErrAlreadyClosed means the operation would be an illegal lifecycle
// transition on a ticket that is already closed.
var ErrAlreadyClosed = errors.New("ticket already closed")

// ErrPermissionDenied means a self-permission check failed before a
// privileged action, distinct from the platform rejecting the call.
var ErrPermissionDenied = errors.New("missing permission")

// AlreadyOpenError aborts create when the requesting user still has a live
// ticket channel.
type AlreadyOpenError struct {
	ChannelID string
}

func (e *AlreadyOpenError) Error() string {
	return "user already has an open ticket in channel " + e.ChannelID
}

// GatewayError wraps a failure from the chat-platform gateway.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string { return fmt.Sprintf("gateway %s: %v", e.Op, e.Err) }
func (e *GatewayError) Unwrap() error { return e.Err }
