package connector

import (
	"context"
	"fmt"

	"github.com/waforge/wasync/core/watypes"
)

// Run drives the connection lifecycle until the context is canceled or
// the remote service logs the account out. Reconnection is an explicit
// loop: each pass builds a brand-new session from the same credentials,
// the previous session is fully retired first.
func (wc *WhatsappClient) Run(ctx context.Context) error {
	for {
		sess, err := wc.Main.NewSession(ctx, wc.Main)
		if err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		cause, err := wc.consumeSession(ctx, sess)
		if err != nil {
			return err
		}
		if cause.IsLoggedOut() {
			wc.Log.Error().
				Int("code", cause.Code).
				Str("reason", cause.Reason).
				Msg("Logged out from WhatsApp, stored credentials are no longer valid")
			return ErrLoggedOut
		}
		wc.Log.Warn().
			Int("code", cause.Code).
			Str("reason", cause.Reason).
			Msg("Session closed, reconnecting with a new session")
	}
}

// consumeSession processes one session's event stream to completion and
// returns the cause of its closure. Event batches are handled strictly
// one at a time; the next event is only taken after the handler returns.
func (wc *WhatsappClient) consumeSession(ctx context.Context, sess Session) (watypes.DisconnectCause, error) {
	wc.setSession(sess)
	defer func() {
		wc.clearSession()
		sess.Disconnect()
	}()
	for {
		select {
		case <-ctx.Done():
			return watypes.DisconnectCause{}, ctx.Err()
		case evt, ok := <-sess.Events():
			if !ok {
				return watypes.DisconnectCause{
					Code:   watypes.CauseCodeConnectionClosed,
					Reason: "event stream closed",
				}, nil
			}
			update, isUpdate := evt.(*watypes.ConnectionUpdate)
			if !isUpdate {
				wc.handleSessionEvent(ctx, sess, evt)
				continue
			}
			wc.handleConnectionUpdate(sess, update)
			if update.State == watypes.StateClosed {
				return update.Cause, nil
			}
		}
	}
}

// handleConnectionUpdate applies a lifecycle transition. An
// authentication challenge is handed to the presenter and the session
// keeps running; the external actor completes pairing out-of-band and
// the session reports StateOpen on its own.
func (wc *WhatsappClient) handleConnectionUpdate(sess Session, update *watypes.ConnectionUpdate) {
	switch update.State {
	case watypes.StateConnecting:
		wc.setState(watypes.StateConnecting)
		wc.Log.Debug().Msg("Session connecting")
	case watypes.StateAwaitingChallenge:
		wc.setState(watypes.StateAwaitingChallenge)
		wc.Log.Info().Msg("Authentication challenge received, handing off for presentation")
		if wc.Main.Presenter != nil {
			wc.Main.Presenter.PresentChallenge(update.Challenge)
		}
	case watypes.StateOpen:
		userJID := sess.UserJID()
		wc.setOpen(userJID)
		wc.Log.Info().Stringer("user_jid", userJID).Msg("Session open and authenticated")
	case watypes.StateClosed:
		wc.setState(watypes.StateClosed)
	}
}
