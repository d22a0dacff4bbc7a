// Package push maintains the realtime event socket. The socket is an
// accelerator: everything it delivers also arrives by polling, so a missing
// or broken connection degrades timeliness, never correctness.
package push

import (
	"encoding/json"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
)

// Event names the backend pushes.
const (
	EventNewMessage          = "chat:new-message"
	EventMessagesRead        = "chat:messages-read"
	EventConversationUpdated = "chat:conversation-updated"
	EventPresence            = "chat:presence"
	EventTyping              = "chat:typing"
)

// Event is the envelope for frames on the push socket. Payload stays raw
// until a handler that knows the event name decodes it.
type Event struct {
	Event          string          `json:"event"`
	ConversationID string          `json:"conversationId,omitempty"`
	UserID         string          `json:"userId,omitempty"`
	Payload        json.RawMessage `json:"payload,omitempty"`
	Seq            int64           `json:"seq,omitempty"`
}

// TypingPayload is the payload of EventTyping frames.
type TypingPayload struct {
	Typing bool `json:"typing"`
}

// Typing decodes the event as a typing payload.
func (e Event) Typing() (TypingPayload, error) {
	var p TypingPayload
	err := json.Unmarshal(e.Payload, &p)
	return p, err
}

// Presence decodes the event as a presence payload. The envelope's UserID
// wins over one embedded in the payload.
func (e Event) Presence() (domain.Presence, error) {
	var p domain.Presence
	if err := json.Unmarshal(e.Payload, &p); err != nil {
		return domain.Presence{}, err
	}
	if e.UserID != "" {
		p.UserID = e.UserID
	}
	return p, nil
}

// typingSignal is the frame sent for outbound typing state.
type typingSignal struct {
	Event          string `json:"event"`
	ConversationID string `json:"conversationId"`
	Typing         bool   `json:"typing"`
}
