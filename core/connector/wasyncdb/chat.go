package wasyncdb

import (
	"context"
	"database/sql"
	"time"

	"go.mau.fi/util/dbutil"

	"github.com/waforge/wasync/core/watypes"
)

type ChatQuery struct {
	*dbutil.QueryHelper[*Chat]
}

// Chat is the stored form of a normalized chat. Nil Name and
// LastMessageTime mean the values were never reported.
type Chat struct {
	JID             string
	Name            *string
	LastMessageTime *time.Time
}

func newChat(_ *dbutil.QueryHelper[*Chat]) *Chat {
	return &Chat{}
}

func newChatRow(chat *watypes.NormalizedChat) *Chat {
	return &Chat{
		JID:             chat.JID,
		Name:            chat.Name,
		LastMessageTime: chat.LastMessageTime,
	}
}

const (
	// COALESCE keeps the stored value when an update doesn't carry one:
	// a metadata update without a name must not erase a known name.
	upsertChatQuery = `
		INSERT INTO chat (jid, name, last_message_time)
		VALUES ($1, $2, $3)
		ON CONFLICT (jid) DO UPDATE
			SET name=COALESCE(excluded.name, chat.name),
			    last_message_time=COALESCE(excluded.last_message_time, chat.last_message_time)
	`
	getChatQuery = `
		SELECT jid, name, last_message_time FROM chat WHERE jid=$1
	`
)

func (chat *Chat) Scan(row dbutil.Scannable) (*Chat, error) {
	var name sql.NullString
	var lastMessageMS sql.NullInt64
	err := row.Scan(&chat.JID, &name, &lastMessageMS)
	if err != nil {
		return nil, err
	}
	if name.Valid {
		chat.Name = &name.String
	}
	if lastMessageMS.Valid {
		ts := time.UnixMilli(lastMessageMS.Int64)
		chat.LastMessageTime = &ts
	}
	return chat, nil
}

func (chat *Chat) sqlVariables() []any {
	var lastMessageMS *int64
	if chat.LastMessageTime != nil {
		ms := chat.LastMessageTime.UnixMilli()
		lastMessageMS = &ms
	}
	return []any{chat.JID, chat.Name, lastMessageMS}
}

func (cq *ChatQuery) Put(ctx context.Context, chat *Chat) error {
	return cq.Exec(ctx, upsertChatQuery, chat.sqlVariables()...)
}

func (cq *ChatQuery) Get(ctx context.Context, jid string) (*Chat, error) {
	return cq.QueryOne(ctx, getChatQuery, jid)
}
