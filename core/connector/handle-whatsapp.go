package connector

import (
	"context"
	"time"

	"go.mau.fi/util/ptr"

	"github.com/waforge/wasync/core/watypes"
)

// handleSessionEvent dispatches one inbound event to its handler. The
// caller guarantees emission order; each handler runs to completion
// before the next event is taken. Connection updates are handled by the
// lifecycle loop, not here.
func (wc *WhatsappClient) handleSessionEvent(ctx context.Context, sess Session, evt watypes.InboundEvent) {
	switch typed := evt.(type) {
	case *watypes.CredentialsRotated:
		wc.handleCredentialsRotated(ctx, sess)
	case *watypes.HistoryBatch:
		wc.handleHistoryBatch(ctx, typed)
	case *watypes.MessageUpsert:
		wc.handleMessageUpsert(ctx, typed)
	case *watypes.ChatMetadataUpdate:
		wc.handleChatMetadataUpdate(ctx, typed)
	default:
		wc.Log.Warn().Type("event_type", evt).Msg("Dropping unhandled session event")
	}
}

// handleCredentialsRotated persists rotated credentials before the next
// event is processed. A crash between rotation and persistence loses at
// most the window since the last successful persist; that window is
// accepted, not worked around.
func (wc *WhatsappClient) handleCredentialsRotated(ctx context.Context, sess Session) {
	err := sess.PersistCredentials(ctx)
	if err != nil {
		wc.Log.Err(err).Msg("Failed to persist rotated credentials")
		return
	}
	wc.Log.Debug().Msg("Persisted rotated credentials")
}

// handleHistoryBatch stores a replayed history chunk: every chat first,
// then every message. Messages reference chats by identifier, so the
// sink may rely on this write order.
func (wc *WhatsappClient) handleHistoryBatch(ctx context.Context, batch *watypes.HistoryBatch) {
	for _, chat := range batch.Chats {
		err := wc.Main.Store.PutChat(ctx, translateChat(chat))
		if err != nil {
			wc.Log.Err(err).Str("chat_jid", chat.JID).Msg("Failed to store history chat")
		}
	}
	stored, dropped := wc.storeMessages(ctx, batch.Messages)
	wc.Log.Info().
		Int("chats", len(batch.Chats)).
		Int("stored", stored).
		Int("dropped", dropped).
		Bool("is_latest", batch.IsLatest).
		Msg("Processed history batch")
}

// handleMessageUpsert stores live message deliveries. Only notify and
// append batches carry new messages; other kinds are receipt/reaction
// noise and are intentionally not stored.
func (wc *WhatsappClient) handleMessageUpsert(ctx context.Context, upsert *watypes.MessageUpsert) {
	switch upsert.Kind {
	case watypes.UpsertKindNotify, watypes.UpsertKindAppend:
	default:
		wc.Log.Debug().
			Str("kind", string(upsert.Kind)).
			Int("messages", len(upsert.Messages)).
			Msg("Ignoring message upsert kind")
		return
	}
	stored, dropped := wc.storeMessages(ctx, upsert.Messages)
	wc.Log.Info().
		Str("kind", string(upsert.Kind)).
		Int("stored", stored).
		Int("dropped", dropped).
		Msg("Processed message upsert")
}

// handleChatMetadataUpdate upserts chat-level changes with the same
// shape as history chats. Missing fields pass through as "no change".
func (wc *WhatsappClient) handleChatMetadataUpdate(ctx context.Context, update *watypes.ChatMetadataUpdate) {
	for _, chat := range update.Chats {
		err := wc.Main.Store.PutChat(ctx, translateChat(chat))
		if err != nil {
			wc.Log.Err(err).Str("chat_jid", chat.JID).Msg("Failed to store chat update")
		}
	}
}

// storeMessages normalizes and stores a batch of raw messages. Failures
// are isolated per item: a message that can't be normalized or written
// never aborts its siblings.
func (wc *WhatsappClient) storeMessages(ctx context.Context, messages []*watypes.RawMessage) (stored, dropped int) {
	for _, raw := range messages {
		record := wc.Main.MsgConv.ToRecord(raw)
		if record == nil {
			dropped++
			wc.Log.Warn().
				Str("message_id", raw.ID).
				Str("chat_jid", raw.ChatJID).
				Msg("Dropping message with no representable content")
			continue
		}
		err := wc.Main.Store.PutMessage(ctx, record)
		if err != nil {
			dropped++
			wc.Log.Warn().Err(err).
				Str("message_id", record.ID).
				Str("chat_jid", record.ChatJID).
				Msg("Failed to store message")
			continue
		}
		stored++
	}
	return
}

func timeFromSeconds(seconds int64) time.Time {
	return time.Unix(seconds, 0)
}

func translateChat(chat *watypes.RawChat) *watypes.NormalizedChat {
	normalized := &watypes.NormalizedChat{JID: chat.JID}
	if chat.Name != "" {
		normalized.Name = ptr.Ptr(chat.Name)
	}
	if chat.LastMessageTimeSeconds > 0 {
		normalized.LastMessageTime = ptr.Ptr(timeFromSeconds(chat.LastMessageTimeSeconds))
	}
	return normalized
}
