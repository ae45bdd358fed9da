package watypes

import "time"

// RawMessage is the protocol's message envelope as handed over by the
// session. TimestampSeconds is seconds since the epoch, zero when the
// server did not supply one. SenderJID is the group participant and is
// empty in direct chats.
type RawMessage struct {
	ID               string
	ChatJID          string
	SenderJID        string
	IsFromMe         bool
	TimestampSeconds int64

	Content MessageContent
}

// MessageContent is the explicit tagged union over the protocol's
// polymorphic payload. At most one field is populated; a zero value
// means the message carries nothing representable as text.
type MessageContent struct {
	Conversation string
	ExtendedText *ExtendedTextContent
	Image        *MediaContent
	Video        *MediaContent
	Document     *DocumentContent
	Audio        *AudioContent
	Sticker      *StickerContent
	Location     *LocationContent
	Contact      *ContactContent
	Poll         *PollContent
}

type ExtendedTextContent struct {
	Text string
}

type MediaContent struct {
	Caption string
}

type DocumentContent struct {
	Caption  string
	FileName string
}

type AudioContent struct {
	Voice bool
}

type StickerContent struct{}

type LocationContent struct {
	Address string
}

type ContactContent struct {
	DisplayName string
}

type PollContent struct {
	Name string
}

// RawChat is a chat as reported by history replay or a live metadata
// update. Empty Name / zero LastMessageTimeSeconds mean "not supplied",
// not "cleared".
type RawChat struct {
	JID                    string
	Name                   string
	LastMessageTimeSeconds int64
}

// NormalizedMessage is the canonical message record. Content is never
// empty: messages with no extractable content are not produced at all.
// Sender is empty exactly when the message is self-sent in a direct chat
// or no sender could be attributed.
type NormalizedMessage struct {
	ID        string    `json:"id"`
	ChatJID   string    `json:"chat_jid"`
	Sender    string    `json:"sender,omitempty"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	IsFromMe  bool      `json:"is_from_me"`
}

// NormalizedChat is the canonical chat record, upserted last-write-wins
// on JID. Nil fields are passed through as "no change".
type NormalizedChat struct {
	JID             string     `json:"jid"`
	Name            *string    `json:"name,omitempty"`
	LastMessageTime *time.Time `json:"last_message_time,omitempty"`
}
