package wasyncdb

import (
	"context"
	"time"

	"go.mau.fi/util/dbutil"

	"github.com/waforge/wasync/core/watypes"
)

type MessageQuery struct {
	*dbutil.QueryHelper[*Message]
}

// Message is the stored form of a normalized message. Timestamps are
// kept as epoch milliseconds.
type Message struct {
	ChatJID   string
	ID        string
	Sender    string
	Content   string
	Timestamp time.Time
	IsFromMe  bool
}

func newMessage(_ *dbutil.QueryHelper[*Message]) *Message {
	return &Message{}
}

func newMessageRow(msg *watypes.NormalizedMessage) *Message {
	return &Message{
		ChatJID:   msg.ChatJID,
		ID:        msg.ID,
		Sender:    msg.Sender,
		Content:   msg.Content,
		Timestamp: msg.Timestamp,
		IsFromMe:  msg.IsFromMe,
	}
}

const (
	upsertMessageQuery = `
		INSERT INTO message (chat_jid, id, sender, content, timestamp, is_from_me)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (chat_jid, id) DO UPDATE
			SET sender=excluded.sender,
			    content=excluded.content,
			    timestamp=excluded.timestamp,
			    is_from_me=excluded.is_from_me
	`
	getMessageQuery = `
		SELECT chat_jid, id, sender, content, timestamp, is_from_me
		FROM message WHERE chat_jid=$1 AND id=$2
	`
	getMessagesInChatQuery = `
		SELECT chat_jid, id, sender, content, timestamp, is_from_me
		FROM message WHERE chat_jid=$1 ORDER BY timestamp, id
	`
)

func (msg *Message) Scan(row dbutil.Scannable) (*Message, error) {
	var timestampMS int64
	err := row.Scan(&msg.ChatJID, &msg.ID, &msg.Sender, &msg.Content, &timestampMS, &msg.IsFromMe)
	if err != nil {
		return nil, err
	}
	msg.Timestamp = time.UnixMilli(timestampMS)
	return msg, nil
}

func (msg *Message) sqlVariables() []any {
	return []any{msg.ChatJID, msg.ID, msg.Sender, msg.Content, msg.Timestamp.UnixMilli(), msg.IsFromMe}
}

func (mq *MessageQuery) Put(ctx context.Context, msg *Message) error {
	return mq.Exec(ctx, upsertMessageQuery, msg.sqlVariables()...)
}

func (mq *MessageQuery) Get(ctx context.Context, chatJID, id string) (*Message, error) {
	return mq.QueryOne(ctx, getMessageQuery, chatJID, id)
}

func (mq *MessageQuery) GetAllInChat(ctx context.Context, chatJID string) ([]*Message, error) {
	return mq.QueryMany(ctx, getMessagesInChatQuery, chatJID)
}
