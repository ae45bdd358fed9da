package connector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mau.fi/util/dbutil"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"

	"github.com/waforge/wasync/core/connector/wasyncdb"
	"github.com/waforge/wasync/core/msgconv"
)

// WhatsappConnector wires the session source, the normalizer and the
// storage sink together for one logical WhatsApp account.
type WhatsappConnector struct {
	Config Config
	Log    zerolog.Logger

	DB          *wasyncdb.Database
	Store       Storage
	DeviceStore *sqlstore.Container
	MsgConv     *msgconv.MessageConverter

	NewSession SessionFactory
	Presenter  ChallengePresenter
}

// Init builds the connector's subsystems on top of the shared database
// handle. Storage defaults to the connector's own database but can be
// replaced before Start for testing or alternative sinks.
func (wconn *WhatsappConnector) Init(db *dbutil.Database) {
	wconn.MsgConv = msgconv.New()
	wconn.DB = wasyncdb.New(db, wconn.Log.With().Str("db_section", "wasync").Logger())
	if wconn.Store == nil {
		wconn.Store = wconn.DB
	}
	wconn.DeviceStore = sqlstore.NewWithDB(
		db.RawDB,
		db.Dialect.String(),
		waLog.Zerolog(wconn.Log.With().Str("db_section", "whatsmeow").Logger()),
	)
	store.DeviceProps.Os = proto.String(wconn.Config.OSName)
	if wconn.Config.SyncFullHistory {
		store.DeviceProps.RequireFullSync = proto.Bool(true)
	}
}

// Start runs the schema migrations. It must complete before the first
// event is processed.
func (wconn *WhatsappConnector) Start(ctx context.Context) error {
	err := wconn.DeviceStore.Upgrade(ctx)
	if err != nil {
		return fmt.Errorf("failed to upgrade whatsmeow schema: %w", err)
	}
	err = wconn.Store.Init(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize message store: %w", err)
	}
	return nil
}

// NewClient returns the client that owns the session lifecycle and the
// outbound send path.
func (wconn *WhatsappConnector) NewClient() *WhatsappClient {
	return &WhatsappClient{
		Main: wconn,
		Log:  wconn.Log.With().Str("component", "client").Logger(),
	}
}
