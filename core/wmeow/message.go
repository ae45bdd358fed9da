package wmeow

import (
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/proto/waHistorySync"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/waforge/wasync/core/watypes"
)

func (sess *Session) wrapMessage(evt *events.Message) *watypes.RawMessage {
	info := evt.Info
	raw := &watypes.RawMessage{
		ID:       string(info.ID),
		ChatJID:  info.Chat.String(),
		IsFromMe: info.IsFromMe,
		Content:  wrapContent(unwrap(evt.Message)),
	}
	if !info.Timestamp.IsZero() {
		raw.TimestampSeconds = info.Timestamp.Unix()
	}
	// The participant is only meaningful in group chats; in direct chats
	// the sender is implied by the chat and the from-me flag.
	if info.IsGroup {
		raw.SenderJID = info.Sender.String()
	}
	return raw
}

// unwrap peels the transparent wrappers off a message payload so the
// content union below only deals with real sub-types.
func unwrap(msg *waE2E.Message) *waE2E.Message {
	if msg == nil {
		return nil
	}
	if wrapped := msg.GetDeviceSentMessage().GetMessage(); wrapped != nil {
		msg = wrapped
	}
	if wrapped := msg.GetEphemeralMessage().GetMessage(); wrapped != nil {
		msg = wrapped
	}
	if wrapped := msg.GetViewOnceMessage().GetMessage(); wrapped != nil {
		msg = wrapped
	}
	if wrapped := msg.GetViewOnceMessageV2().GetMessage(); wrapped != nil {
		msg = wrapped
	}
	return msg
}

// wrapContent maps the protocol's polymorphic payload onto the explicit
// content union. Sub-types this pipeline can't render stay unset and
// the normalizer reports the message as not representable.
func wrapContent(msg *waE2E.Message) (content watypes.MessageContent) {
	switch {
	case msg == nil:
	case msg.GetConversation() != "":
		content.Conversation = msg.GetConversation()
	case msg.ExtendedTextMessage != nil:
		content.ExtendedText = &watypes.ExtendedTextContent{
			Text: msg.ExtendedTextMessage.GetText(),
		}
	case msg.ImageMessage != nil:
		content.Image = &watypes.MediaContent{Caption: msg.ImageMessage.GetCaption()}
	case msg.VideoMessage != nil:
		content.Video = &watypes.MediaContent{Caption: msg.VideoMessage.GetCaption()}
	case msg.DocumentMessage != nil:
		content.Document = &watypes.DocumentContent{
			Caption:  msg.DocumentMessage.GetCaption(),
			FileName: msg.DocumentMessage.GetFileName(),
		}
	case msg.AudioMessage != nil:
		content.Audio = &watypes.AudioContent{Voice: msg.AudioMessage.GetPTT()}
	case msg.StickerMessage != nil:
		content.Sticker = &watypes.StickerContent{}
	case msg.LocationMessage != nil:
		content.Location = &watypes.LocationContent{
			Address: msg.LocationMessage.GetAddress(),
		}
	case msg.ContactMessage != nil:
		content.Contact = &watypes.ContactContent{
			DisplayName: msg.ContactMessage.GetDisplayName(),
		}
	case msg.PollCreationMessage != nil:
		content.Poll = &watypes.PollContent{Name: msg.PollCreationMessage.GetName()}
	case msg.PollCreationMessageV2 != nil:
		content.Poll = &watypes.PollContent{Name: msg.PollCreationMessageV2.GetName()}
	case msg.PollCreationMessageV3 != nil:
		content.Poll = &watypes.PollContent{Name: msg.PollCreationMessageV3.GetName()}
	}
	return
}

// emitHistorySync translates one history sync blob. Push name chunks
// become chat metadata updates, conversation chunks become a history
// batch with chats listed before their messages.
func (sess *Session) emitHistorySync(evt *events.HistorySync) {
	data := evt.Data
	if pushnames := data.GetPushnames(); len(pushnames) > 0 {
		update := &watypes.ChatMetadataUpdate{}
		for _, pushname := range pushnames {
			jid, err := types.ParseJID(pushname.GetID())
			if err != nil {
				continue
			}
			update.Chats = append(update.Chats, &watypes.RawChat{
				JID:  jid.ToNonAD().String(),
				Name: sess.main.Config.FormatDisplayname(pushname.GetPushname(), jid.User),
			})
		}
		if len(update.Chats) > 0 {
			sess.emit(update)
		}
	}

	batch := &watypes.HistoryBatch{
		IsLatest: data.GetProgress() >= 100 ||
			data.GetSyncType() == waHistorySync.HistorySync_INITIAL_BOOTSTRAP,
	}
	for _, conv := range data.GetConversations() {
		jid, err := types.ParseJID(conv.GetID())
		if err != nil {
			sess.Log.Debug().Err(err).Str("chat_jid", conv.GetID()).
				Msg("Skipping history conversation with invalid JID")
			continue
		}
		batch.Chats = append(batch.Chats, &watypes.RawChat{
			JID:                    jid.String(),
			Name:                   conv.GetName(),
			LastMessageTimeSeconds: int64(conv.GetConversationTimestamp()),
		})
		for _, histMsg := range conv.GetMessages() {
			parsed, err := sess.Client.ParseWebMessage(jid, histMsg.GetMessage())
			if err != nil {
				sess.Log.Debug().Err(err).Stringer("chat_jid", jid).
					Msg("Skipping unparseable history message")
				continue
			}
			batch.Messages = append(batch.Messages, sess.wrapMessage(parsed))
		}
	}
	if len(batch.Chats) > 0 || len(batch.Messages) > 0 {
		sess.emit(batch)
	}
}

func (sess *Session) wrapPushName(evt *events.PushName) *watypes.ChatMetadataUpdate {
	jid := evt.JID.ToNonAD()
	return &watypes.ChatMetadataUpdate{
		Chats: []*watypes.RawChat{{
			JID:  jid.String(),
			Name: sess.main.Config.FormatDisplayname(evt.NewPushName, jid.User),
		}},
	}
}
