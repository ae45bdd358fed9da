package connector

import (
	"context"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"

	"github.com/waforge/wasync/core/watypes"
)

// Session is one live connection attempt to WhatsApp. A session is never
// reused: when it closes, the lifecycle loop retires it and builds a new
// one from the same credentials. The protocol internals behind it are a
// black box; the contract is the event stream and the send call.
type Session interface {
	// Events yields the session's inbound events in emission order.
	Events() <-chan watypes.InboundEvent
	// SendText sends plain text to the given recipient.
	SendText(ctx context.Context, to types.JID, text string) (whatsmeow.SendResponse, error)
	// UserJID is the authenticated identity, zero before StateOpen.
	UserJID() types.JID
	// PersistCredentials flushes rotated credentials to durable storage.
	PersistCredentials(ctx context.Context) error
	// Disconnect tears the session down. Safe to call more than once.
	Disconnect()
}

// SessionFactory builds a fresh session from the connector's credential
// store. Called once at startup and once per reconnect.
type SessionFactory func(ctx context.Context, main *WhatsappConnector) (Session, error)

// ChallengePresenter shows an authentication challenge to the operator.
// It is invoked exactly once per challenge and must not block event
// processing.
type ChallengePresenter interface {
	PresentChallenge(code string)
}

// Storage is the durable sink for normalized records. Both methods must
// be idempotent upserts: history replay and live delivery overlap, so
// every record can arrive more than once.
type Storage interface {
	Init(ctx context.Context) error
	PutMessage(ctx context.Context, msg *watypes.NormalizedMessage) error
	PutChat(ctx context.Context, chat *watypes.NormalizedChat) error
}
