package connector

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"

	"github.com/waforge/wasync/core/watypes"
)

func openTestClient(sess Session) *WhatsappClient {
	wc := newTestClient(newFakeStorage())
	wc.setSession(sess)
	wc.setOpen(types.NewJID("5511999990000", types.DefaultUserServer))
	return wc
}

func TestSendTextRejectionOrder(t *testing.T) {
	ctx := context.Background()

	// No session at all: NotConnected wins even with an empty recipient.
	wc := newTestClient(newFakeStorage())
	_, err := wc.SendText(ctx, "", "")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}

	// Session present but not open yet.
	wc.setSession(newFakeSession())
	_, err = wc.SendText(ctx, "5511888880000", "hi")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected before StateOpen", err)
	}

	wc = openTestClient(newFakeSession())
	_, err = wc.SendText(ctx, "", "hi")
	if !errors.Is(err, ErrMissingRecipient) {
		t.Fatalf("err = %v, want ErrMissingRecipient", err)
	}
	_, err = wc.SendText(ctx, "5511888880000", "")
	if !errors.Is(err, ErrEmptyText) {
		t.Fatalf("err = %v, want ErrEmptyText", err)
	}
}

func TestSendTextTransportErrorIsCaught(t *testing.T) {
	sess := newFakeSession()
	sess.sendErr = errors.New("socket torn down")
	wc := openTestClient(sess)

	_, err := wc.SendText(context.Background(), "5511888880000", "hi")
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
}

func TestSendTextSuccess(t *testing.T) {
	sentAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	sess := newFakeSession()
	sess.sendResp = whatsmeow.SendResponse{ID: "3EB0SENT", Timestamp: sentAt}
	wc := openTestClient(sess)

	receipt, err := wc.SendText(context.Background(), "5511888880000", "hello there")
	if err != nil {
		t.Fatalf("SendText failed: %v", err)
	}
	if receipt.MessageID != "3EB0SENT" {
		t.Errorf("MessageID = %q", receipt.MessageID)
	}
	if !receipt.Timestamp.Equal(sentAt) {
		t.Errorf("Timestamp = %v, want %v", receipt.Timestamp, sentAt)
	}
	// The bare phone number must be canonicalized before the send.
	if len(sess.sentTo) != 1 || sess.sentTo[0].String() != "5511888880000@s.whatsapp.net" {
		t.Errorf("sentTo = %v", sess.sentTo)
	}
	if sess.sentText[0] != "hello there" {
		t.Errorf("sentText = %q", sess.sentText[0])
	}
}

func TestIsLoggedIn(t *testing.T) {
	wc := newTestClient(newFakeStorage())
	if wc.IsLoggedIn() {
		t.Error("fresh client must not report logged in")
	}
	wc.setSession(newFakeSession())
	if wc.IsLoggedIn() {
		t.Error("connecting session must not report logged in")
	}
	wc.setOpen(types.NewJID("5511999990000", types.DefaultUserServer))
	if !wc.IsLoggedIn() {
		t.Error("open session should report logged in")
	}
	wc.setState(watypes.StateClosed)
	if wc.IsLoggedIn() {
		t.Error("closed session must not report logged in")
	}
}
