package connector

import "errors"

// Send rejections, checked in this order. Callers match with errors.Is;
// none of these are retried by this layer.
var (
	ErrNotConnected     = errors.New("no open authenticated session")
	ErrMissingRecipient = errors.New("recipient must not be empty")
	ErrEmptyText        = errors.New("message text must not be empty")
	ErrTransport        = errors.New("transport send failed")
)

// ErrLoggedOut is returned by the lifecycle loop when the remote service
// permanently invalidated the credentials. There is no point retrying:
// the process should stop and the operator must re-authenticate.
var ErrLoggedOut = errors.New("logged out by remote service")
