package waid

import (
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow/types"
)

// Canonical normalizes a WhatsApp identifier to its canonical user form:
// device and agent suffixes are stripped, servers are kept. Identifiers
// that don't parse are passed through unchanged so that callers never
// lose the original value.
func Canonical(jid string) string {
	parsed, err := types.ParseJID(jid)
	if err != nil || parsed.User == "" {
		return jid
	}
	return parsed.ToNonAD().String()
}

// IsGroup reports whether the identifier addresses a group chat.
func IsGroup(jid string) bool {
	parsed, err := types.ParseJID(jid)
	return err == nil && parsed.Server == types.GroupServer
}

// ToUserJID parses a send recipient. Bare phone numbers are accepted and
// resolved against the default user server.
func ToUserJID(recipient string) (types.JID, error) {
	if !strings.ContainsRune(recipient, '@') {
		recipient = recipient + "@" + types.DefaultUserServer
	}
	jid, err := types.ParseJID(recipient)
	if err != nil {
		return types.EmptyJID, fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}
	if jid.User == "" {
		return types.EmptyJID, fmt.Errorf("invalid recipient %q: no user part", recipient)
	}
	return jid, nil
}
