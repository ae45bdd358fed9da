package msgconv

import (
	"time"

	"github.com/waforge/wasync/core/waid"
	"github.com/waforge/wasync/core/watypes"
)

// MessageConverter turns raw protocol envelopes into canonical message
// records. It is stateless apart from the clock and safe for concurrent
// use.
type MessageConverter struct {
	clock func() time.Time
}

func New() *MessageConverter {
	return &MessageConverter{clock: time.Now}
}

// ToRecord normalizes one raw message. It returns nil when the envelope
// is not representable: no identifying key, no chat, or no content
// sub-type this converter knows how to render as text.
func (mc *MessageConverter) ToRecord(raw *watypes.RawMessage) *watypes.NormalizedMessage {
	if raw == nil || raw.ID == "" || raw.ChatJID == "" {
		return nil
	}
	content, ok := extractContent(&raw.Content)
	if !ok || content == "" {
		return nil
	}
	return &watypes.NormalizedMessage{
		ID:        raw.ID,
		ChatJID:   raw.ChatJID,
		Sender:    attributeSender(raw),
		Content:   content,
		Timestamp: mc.timestamp(raw.TimestampSeconds),
		IsFromMe:  raw.IsFromMe,
	}
}

// extractContent renders the first populated content sub-type as text.
// The priority order is fixed; changing it changes which text a message
// with multiple populated fields ends up with.
func extractContent(content *watypes.MessageContent) (string, bool) {
	switch {
	case content.Conversation != "":
		return content.Conversation, true
	case content.ExtendedText != nil:
		return content.ExtendedText.Text, true
	case content.Image != nil:
		return "[Image] " + content.Image.Caption, true
	case content.Video != nil:
		return "[Video] " + content.Video.Caption, true
	case content.Document != nil:
		label := content.Document.Caption
		if label == "" {
			label = content.Document.FileName
		}
		return "[Document] " + label, true
	case content.Audio != nil:
		return "[Audio]", true
	case content.Sticker != nil:
		return "[Sticker]", true
	case content.Location != nil:
		return "[Location] " + content.Location.Address, true
	case content.Contact != nil:
		return "[Contact] " + content.Contact.DisplayName, true
	case content.Poll != nil:
		return "[Poll] " + content.Poll.Name, true
	default:
		// Unknown sub-type: not representable rather than an empty record.
		return "", false
	}
}

// attributeSender decides who a message is from:
//
//  1. the participant identifier, when present
//  2. the chat itself, when the message is inbound in a direct chat
//     without a participant (the peer is the sender)
//  3. nobody, when the message is self-sent in a direct chat
//
// Any attributed sender is returned in canonical user form.
func attributeSender(raw *watypes.RawMessage) string {
	isGroup := waid.IsGroup(raw.ChatJID)
	sender := raw.SenderJID
	if !raw.IsFromMe && sender == "" && !isGroup {
		sender = raw.ChatJID
	}
	if raw.IsFromMe && !isGroup {
		return ""
	}
	if sender == "" {
		return ""
	}
	return waid.Canonical(sender)
}

// timestamp converts the envelope's epoch seconds. A missing timestamp
// falls back to the wall clock: an approximation, not an error.
func (mc *MessageConverter) timestamp(seconds int64) time.Time {
	if seconds <= 0 {
		return mc.clock()
	}
	return time.Unix(seconds, 0)
}
