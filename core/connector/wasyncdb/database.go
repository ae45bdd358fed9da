package wasyncdb

import (
	"context"

	"github.com/rs/zerolog"
	"go.mau.fi/util/dbutil"

	"github.com/waforge/wasync/core/connector/wasyncdb/upgrades"
	"github.com/waforge/wasync/core/watypes"
)

// Database is the durable sink for normalized chats and messages. All
// writes are idempotent upserts keyed by the record's primary key.
type Database struct {
	*dbutil.Database
	Message *MessageQuery
	Chat    *ChatQuery
}

func New(db *dbutil.Database, log zerolog.Logger) *Database {
	db = db.Child("wasync_version", upgrades.Table, dbutil.ZeroLogger(log))
	return &Database{
		Database: db,
		Message: &MessageQuery{
			QueryHelper: dbutil.MakeQueryHelper(db, newMessage),
		},
		Chat: &ChatQuery{
			QueryHelper: dbutil.MakeQueryHelper(db, newChat),
		},
	}
}

// Init runs the schema migrations. It short-circuits when the version
// table already reports the latest revision, so calling it on every
// startup is safe.
func (db *Database) Init(ctx context.Context) error {
	return db.Upgrade(ctx)
}

// PutMessage upserts one normalized message, last write wins.
func (db *Database) PutMessage(ctx context.Context, msg *watypes.NormalizedMessage) error {
	return db.Message.Put(ctx, newMessageRow(msg))
}

// PutChat upserts one normalized chat. Nil fields leave the stored
// values untouched.
func (db *Database) PutChat(ctx context.Context, chat *watypes.NormalizedChat) error {
	return db.Chat.Put(ctx, newChatRow(chat))
}
