// Package wmeow adapts whatsmeow to the connector's Session contract.
// Everything protocol-specific stays behind this boundary: the rest of
// the pipeline only sees the typed inbound events.
package wmeow

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/waforge/wasync/core/connector"
	"github.com/waforge/wasync/core/watypes"
)

const eventBuffer = 64

type Session struct {
	Client *whatsmeow.Client
	Log    zerolog.Logger

	main      *connector.WhatsappConnector
	events    chan watypes.InboundEvent
	handlerID uint32
	retired   atomic.Bool
}

var _ connector.Session = (*Session)(nil)

// NewSession builds a session from the connector's device store and
// starts connecting. The first device in the store is used; a store
// without devices starts a fresh pairing, surfaced to the caller as
// AwaitingChallenge connection updates.
func NewSession(ctx context.Context, main *connector.WhatsappConnector) (connector.Session, error) {
	device, err := main.DeviceStore.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get device from store: %w", err)
	}
	log := main.Log.With().Str("component", "whatsmeow").Logger()
	sess := &Session{
		Client: whatsmeow.NewClient(device, waLog.Zerolog(log)),
		Log:    log,
		main:   main,
		events: make(chan watypes.InboundEvent, eventBuffer),
	}
	// The lifecycle loop owns reconnection; whatsmeow must not race it.
	sess.Client.EnableAutoReconnect = false
	sess.handlerID = sess.Client.AddEventHandler(sess.handleEvent)

	if sess.Client.Store.ID == nil {
		qrChan, err := sess.Client.GetQRChannel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get pairing channel: %w", err)
		}
		go sess.pumpChallenges(qrChan)
	}

	sess.emit(&watypes.ConnectionUpdate{State: watypes.StateConnecting})
	err = sess.Client.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return sess, nil
}

func (sess *Session) Events() <-chan watypes.InboundEvent {
	return sess.events
}

func (sess *Session) SendText(ctx context.Context, to types.JID, text string) (whatsmeow.SendResponse, error) {
	return sess.Client.SendMessage(ctx, to, &waE2E.Message{
		Conversation: proto.String(text),
	})
}

func (sess *Session) UserJID() types.JID {
	if id := sess.Client.Store.ID; id != nil {
		return id.ToNonAD()
	}
	return types.EmptyJID
}

func (sess *Session) PersistCredentials(ctx context.Context) error {
	return sess.Client.Store.Save(ctx)
}

// Disconnect retires the session: the event handler is removed first so
// nothing emits after the channel is abandoned.
func (sess *Session) Disconnect() {
	if sess.retired.Swap(true) {
		return
	}
	sess.Client.RemoveEventHandler(sess.handlerID)
	sess.Client.Disconnect()
}

func (sess *Session) emit(evt watypes.InboundEvent) {
	if sess.retired.Load() {
		return
	}
	sess.events <- evt
}

func (sess *Session) pumpChallenges(qrChan <-chan whatsmeow.QRChannelItem) {
	for item := range qrChan {
		if item.Event == "code" {
			sess.emit(&watypes.ConnectionUpdate{
				State:     watypes.StateAwaitingChallenge,
				Challenge: item.Code,
			})
		} else {
			sess.Log.Debug().Str("event", item.Event).Msg("Pairing channel update")
		}
	}
}

func (sess *Session) handleEvent(rawEvt any) {
	switch evt := rawEvt.(type) {
	case *events.Connected:
		sess.emit(&watypes.ConnectionUpdate{State: watypes.StateOpen})
	case *events.PairSuccess:
		sess.emit(&watypes.CredentialsRotated{})
	case *events.LoggedOut:
		sess.emit(&watypes.ConnectionUpdate{
			State: watypes.StateClosed,
			Cause: watypes.DisconnectCause{
				Code:   watypes.CauseCodeLoggedOut,
				Reason: evt.Reason.String(),
			},
		})
	case *events.StreamReplaced:
		sess.emit(&watypes.ConnectionUpdate{
			State: watypes.StateClosed,
			Cause: watypes.DisconnectCause{
				Code:   watypes.CauseCodeStreamReplaced,
				Reason: "stream replaced by another client",
			},
		})
	case *events.Disconnected:
		sess.emit(&watypes.ConnectionUpdate{
			State: watypes.StateClosed,
			Cause: watypes.DisconnectCause{
				Code:   watypes.CauseCodeConnectionClosed,
				Reason: "connection closed",
			},
		})
	case *events.Message:
		sess.emit(&watypes.MessageUpsert{
			Messages: []*watypes.RawMessage{sess.wrapMessage(evt)},
			Kind:     watypes.UpsertKindNotify,
		})
	case *events.HistorySync:
		sess.emitHistorySync(evt)
	case *events.PushName:
		sess.emit(sess.wrapPushName(evt))
	}
}
