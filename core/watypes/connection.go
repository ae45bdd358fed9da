package watypes

// ConnectionState tracks where a single session is in its lifecycle.
// Every state may transition to StateClosed; the rest are strictly
// Connecting -> AwaitingChallenge -> Open.
type ConnectionState int

const (
	StateConnecting ConnectionState = iota
	StateAwaitingChallenge
	StateOpen
	StateClosed
)

func (state ConnectionState) String() string {
	switch state {
	case StateConnecting:
		return "connecting"
	case StateAwaitingChallenge:
		return "awaiting_challenge"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Disconnect cause codes, matching the status codes the server sends with
// the stream end. Only the logged-out code is terminal.
const (
	CauseCodeLoggedOut        = 401
	CauseCodeConnectionClosed = 428
	CauseCodeStreamReplaced   = 440
)

// DisconnectCause describes why a session reached StateClosed.
type DisconnectCause struct {
	Code   int
	Reason string
}

// IsLoggedOut reports whether the disconnect invalidated the stored
// credentials. A logged-out session must not be reconnected.
func (cause DisconnectCause) IsLoggedOut() bool {
	return cause.Code == CauseCodeLoggedOut
}

func (cause DisconnectCause) String() string {
	if cause.Reason != "" {
		return cause.Reason
	}
	return "unknown"
}
