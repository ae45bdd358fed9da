package connector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types"

	"github.com/waforge/wasync/core/waid"
	"github.com/waforge/wasync/core/watypes"
)

// WhatsappClient owns one logical session: it runs the lifecycle loop,
// routes inbound events and gatekeeps outbound sends. Sends may be
// issued from any goroutine; event processing stays single-threaded.
type WhatsappClient struct {
	Main *WhatsappConnector
	Log  zerolog.Logger

	lock    sync.RWMutex
	session Session
	state   watypes.ConnectionState
	userJID types.JID
}

// SentReceipt correlates a successful send with later delivery events.
type SentReceipt struct {
	MessageID string
	Timestamp time.Time
}

// SendText validates the outbound preconditions in fixed order and then
// hands the text to the session. Every failure mode comes back as an
// error the caller can match with errors.Is; nothing panics through.
func (wc *WhatsappClient) SendText(ctx context.Context, recipient, text string) (*SentReceipt, error) {
	sess, state := wc.current()
	if sess == nil || state != watypes.StateOpen {
		return nil, ErrNotConnected
	}
	if recipient == "" {
		return nil, ErrMissingRecipient
	}
	if text == "" {
		return nil, ErrEmptyText
	}
	to, err := waid.ToUserJID(recipient)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp, err := sess.SendText(ctx, to, text)
	if err != nil {
		wc.Log.Err(err).Stringer("recipient", to).Msg("Failed to send message")
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	wc.Log.Info().
		Stringer("recipient", to).
		Str("message_id", string(resp.ID)).
		Msg("Message sent")
	return &SentReceipt{MessageID: string(resp.ID), Timestamp: resp.Timestamp}, nil
}

// IsLoggedIn reports whether an authenticated session is currently open.
func (wc *WhatsappClient) IsLoggedIn() bool {
	sess, state := wc.current()
	return sess != nil && state == watypes.StateOpen
}

// UserJID returns the authenticated identity of the current session,
// zero while no session is open.
func (wc *WhatsappClient) UserJID() types.JID {
	wc.lock.RLock()
	defer wc.lock.RUnlock()
	return wc.userJID
}

func (wc *WhatsappClient) current() (Session, watypes.ConnectionState) {
	wc.lock.RLock()
	defer wc.lock.RUnlock()
	return wc.session, wc.state
}

func (wc *WhatsappClient) setSession(sess Session) {
	wc.lock.Lock()
	defer wc.lock.Unlock()
	wc.session = sess
	wc.state = watypes.StateConnecting
	wc.userJID = types.EmptyJID
}

func (wc *WhatsappClient) clearSession() {
	wc.lock.Lock()
	defer wc.lock.Unlock()
	wc.session = nil
	wc.state = watypes.StateClosed
	wc.userJID = types.EmptyJID
}

func (wc *WhatsappClient) setState(state watypes.ConnectionState) {
	wc.lock.Lock()
	defer wc.lock.Unlock()
	wc.state = state
}

func (wc *WhatsappClient) setOpen(userJID types.JID) {
	wc.lock.Lock()
	defer wc.lock.Unlock()
	wc.state = watypes.StateOpen
	wc.userJID = userJID
}

var _ zerolog.LogObjectMarshaler = (*SentReceipt)(nil)

func (receipt *SentReceipt) MarshalZerologObject(evt *zerolog.Event) {
	evt.Str("message_id", receipt.MessageID).Time("timestamp", receipt.Timestamp)
}
