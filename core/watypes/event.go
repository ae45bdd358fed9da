package watypes

// UpsertKind tags a MessageUpsert batch with how the messages were
// delivered. Only notify and append batches carry new messages worth
// storing; everything else (receipts, reactions) is metadata.
type UpsertKind string

const (
	UpsertKindNotify UpsertKind = "notify"
	UpsertKindAppend UpsertKind = "append"
)

// InboundEvent is the tagged union of everything a session can emit.
// Events are consumed exactly once, in emission order.
type InboundEvent interface {
	isInboundEvent()
}

// ConnectionUpdate reports a lifecycle state transition. Cause is only
// meaningful when State is StateClosed, Challenge only when State is
// StateAwaitingChallenge.
type ConnectionUpdate struct {
	State     ConnectionState
	Cause     DisconnectCause
	Challenge string
}

// CredentialsRotated signals that the session's credentials changed and
// must be persisted before any further event is processed.
type CredentialsRotated struct{}

// HistoryBatch carries one chunk of bulk history replay. Chats must be
// stored before any of the messages that reference them.
type HistoryBatch struct {
	Chats    []*RawChat
	Messages []*RawMessage
	IsLatest bool
}

// MessageUpsert carries live message deliveries.
type MessageUpsert struct {
	Messages []*RawMessage
	Kind     UpsertKind
}

// ChatMetadataUpdate carries chat-level changes (names, activity times).
type ChatMetadataUpdate struct {
	Chats []*RawChat
}

func (*ConnectionUpdate) isInboundEvent()   {}
func (*CredentialsRotated) isInboundEvent() {}
func (*HistoryBatch) isInboundEvent()       {}
func (*MessageUpsert) isInboundEvent()      {}
func (*ChatMetadataUpdate) isInboundEvent() {}
