package connector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types"

	"github.com/waforge/wasync/core/msgconv"
	"github.com/waforge/wasync/core/watypes"
)

type storageOp struct {
	kind string // "chat" or "message"
	key  string
}

// fakeStorage records writes in order and can be told to fail specific
// message IDs.
type fakeStorage struct {
	mu       sync.Mutex
	ops      []storageOp
	chats    map[string]*watypes.NormalizedChat
	messages map[string]*watypes.NormalizedMessage
	failIDs  map[string]bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		chats:    make(map[string]*watypes.NormalizedChat),
		messages: make(map[string]*watypes.NormalizedMessage),
		failIDs:  make(map[string]bool),
	}
}

func (fs *fakeStorage) Init(ctx context.Context) error { return nil }

func (fs *fakeStorage) PutChat(ctx context.Context, chat *watypes.NormalizedChat) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.ops = append(fs.ops, storageOp{kind: "chat", key: chat.JID})
	fs.chats[chat.JID] = chat
	return nil
}

func (fs *fakeStorage) PutMessage(ctx context.Context, msg *watypes.NormalizedMessage) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.failIDs[msg.ID] {
		return fmt.Errorf("injected failure for %s", msg.ID)
	}
	fs.ops = append(fs.ops, storageOp{kind: "message", key: msg.ID})
	fs.messages[msg.ID] = msg
	return nil
}

func (fs *fakeStorage) opKinds() []string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	kinds := make([]string, len(fs.ops))
	for i, op := range fs.ops {
		kinds[i] = op.kind
	}
	return kinds
}

// fakeSession feeds pre-queued events to the lifecycle loop.
type fakeSession struct {
	events       chan watypes.InboundEvent
	userJID      types.JID
	sendErr      error
	sendResp     whatsmeow.SendResponse
	sentTo       []types.JID
	sentText     []string
	persistCalls int
	persistErr   error
	disconnects  int
}

func newFakeSession(queued ...watypes.InboundEvent) *fakeSession {
	sess := &fakeSession{
		events:  make(chan watypes.InboundEvent, len(queued)+1),
		userJID: types.NewJID("5511999990000", types.DefaultUserServer),
	}
	for _, evt := range queued {
		sess.events <- evt
	}
	return sess
}

func (sess *fakeSession) Events() <-chan watypes.InboundEvent { return sess.events }

func (sess *fakeSession) SendText(ctx context.Context, to types.JID, text string) (whatsmeow.SendResponse, error) {
	sess.sentTo = append(sess.sentTo, to)
	sess.sentText = append(sess.sentText, text)
	return sess.sendResp, sess.sendErr
}

func (sess *fakeSession) UserJID() types.JID { return sess.userJID }

func (sess *fakeSession) PersistCredentials(ctx context.Context) error {
	sess.persistCalls++
	return sess.persistErr
}

func (sess *fakeSession) Disconnect() { sess.disconnects++ }

func newTestClient(store Storage) *WhatsappClient {
	wconn := &WhatsappConnector{
		Log:     zerolog.Nop(),
		Store:   store,
		MsgConv: msgconv.New(),
	}
	return &WhatsappClient{Main: wconn, Log: zerolog.Nop()}
}

func closedUpdate(code int) *watypes.ConnectionUpdate {
	return &watypes.ConnectionUpdate{
		State: watypes.StateClosed,
		Cause: watypes.DisconnectCause{Code: code, Reason: "test"},
	}
}

func rawTextMessage(id, chatJID, text string) *watypes.RawMessage {
	return &watypes.RawMessage{
		ID:               id,
		ChatJID:          chatJID,
		TimestampSeconds: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC).Unix(),
		Content:          watypes.MessageContent{Conversation: text},
	}
}
