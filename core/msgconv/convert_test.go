package msgconv

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waforge/wasync/core/watypes"
)

const (
	dmChat    = "5511999990000@s.whatsapp.net"
	groupChat = "120363041234567890@g.us"
)

func rawText(text string) *watypes.RawMessage {
	return &watypes.RawMessage{
		ID:               "3EB0ABCDEF",
		ChatJID:          dmChat,
		TimestampSeconds: 1700000000,
		Content:          watypes.MessageContent{Conversation: text},
	}
}

func TestToRecordPlainText(t *testing.T) {
	record := New().ToRecord(rawText("hello"))
	require.NotNil(t, record)
	assert.Equal(t, "hello", record.Content)
	assert.Equal(t, "3EB0ABCDEF", record.ID)
	assert.Equal(t, dmChat, record.ChatJID)
	assert.Equal(t, time.Unix(1700000000, 0), record.Timestamp)
}

func TestToRecordContentPriority(t *testing.T) {
	cases := []struct {
		name    string
		content watypes.MessageContent
		want    string
	}{
		{"extended text", watypes.MessageContent{ExtendedText: &watypes.ExtendedTextContent{Text: "linked"}}, "linked"},
		{"image caption", watypes.MessageContent{Image: &watypes.MediaContent{Caption: "cat"}}, "[Image] cat"},
		{"image without caption", watypes.MessageContent{Image: &watypes.MediaContent{}}, "[Image] "},
		{"video caption", watypes.MessageContent{Video: &watypes.MediaContent{Caption: "clip"}}, "[Video] clip"},
		{"document caption", watypes.MessageContent{Document: &watypes.DocumentContent{Caption: "report", FileName: "q3.pdf"}}, "[Document] report"},
		{"document filename fallback", watypes.MessageContent{Document: &watypes.DocumentContent{FileName: "q3.pdf"}}, "[Document] q3.pdf"},
		{"document empty fallback", watypes.MessageContent{Document: &watypes.DocumentContent{}}, "[Document] "},
		{"audio marker", watypes.MessageContent{Audio: &watypes.AudioContent{Voice: true}}, "[Audio]"},
		{"sticker marker", watypes.MessageContent{Sticker: &watypes.StickerContent{}}, "[Sticker]"},
		{"location address", watypes.MessageContent{Location: &watypes.LocationContent{Address: "Av. Paulista 1000"}}, "[Location] Av. Paulista 1000"},
		{"contact name", watypes.MessageContent{Contact: &watypes.ContactContent{DisplayName: "Maria"}}, "[Contact] Maria"},
		{"poll name", watypes.MessageContent{Poll: &watypes.PollContent{Name: "Lunch?"}}, "[Poll] Lunch?"},
		// Plain conversation text wins over anything else populated.
		{"conversation beats image", watypes.MessageContent{
			Conversation: "text wins",
			Image:        &watypes.MediaContent{Caption: "ignored"},
		}, "text wins"},
	}
	mc := New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := rawText("")
			raw.Content = tc.content
			record := mc.ToRecord(raw)
			require.NotNil(t, record)
			assert.Equal(t, tc.want, record.Content)
		})
	}
}

func TestToRecordNotRepresentable(t *testing.T) {
	mc := New()

	t.Run("empty content union", func(t *testing.T) {
		raw := rawText("")
		assert.Nil(t, mc.ToRecord(raw))
	})
	t.Run("empty extended text", func(t *testing.T) {
		raw := rawText("")
		raw.Content = watypes.MessageContent{ExtendedText: &watypes.ExtendedTextContent{}}
		assert.Nil(t, mc.ToRecord(raw))
	})
	t.Run("missing id", func(t *testing.T) {
		raw := rawText("hello")
		raw.ID = ""
		assert.Nil(t, mc.ToRecord(raw))
	})
	t.Run("missing chat", func(t *testing.T) {
		raw := rawText("hello")
		raw.ChatJID = ""
		assert.Nil(t, mc.ToRecord(raw))
	})
	t.Run("nil message", func(t *testing.T) {
		assert.Nil(t, mc.ToRecord(nil))
	})
}

func TestToRecordSenderAttribution(t *testing.T) {
	mc := New()

	t.Run("direct chat inbound without participant", func(t *testing.T) {
		record := mc.ToRecord(rawText("hi"))
		require.NotNil(t, record)
		assert.Equal(t, dmChat, record.Sender)
	})
	t.Run("direct chat self-sent has no sender", func(t *testing.T) {
		raw := rawText("hi")
		raw.IsFromMe = true
		record := mc.ToRecord(raw)
		require.NotNil(t, record)
		assert.Empty(t, record.Sender)
		assert.True(t, record.IsFromMe)
	})
	t.Run("group participant is canonicalized", func(t *testing.T) {
		raw := rawText("hi")
		raw.ChatJID = groupChat
		raw.SenderJID = "5511888880000:12@s.whatsapp.net"
		record := mc.ToRecord(raw)
		require.NotNil(t, record)
		assert.Equal(t, "5511888880000@s.whatsapp.net", record.Sender)
	})
	t.Run("group without participant has no sender", func(t *testing.T) {
		raw := rawText("hi")
		raw.ChatJID = groupChat
		record := mc.ToRecord(raw)
		require.NotNil(t, record)
		assert.Empty(t, record.Sender)
	})
	t.Run("group self-sent keeps participant", func(t *testing.T) {
		raw := rawText("hi")
		raw.ChatJID = groupChat
		raw.IsFromMe = true
		raw.SenderJID = "5511999990000@s.whatsapp.net"
		record := mc.ToRecord(raw)
		require.NotNil(t, record)
		assert.Equal(t, "5511999990000@s.whatsapp.net", record.Sender)
	})
}

func TestToRecordTimestampFallback(t *testing.T) {
	frozen := time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)
	mc := New()
	mc.clock = func() time.Time { return frozen }

	raw := rawText("no timestamp")
	raw.TimestampSeconds = 0
	record := mc.ToRecord(raw)
	require.NotNil(t, record)
	assert.Equal(t, frozen, record.Timestamp)
}
