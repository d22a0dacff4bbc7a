package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyMessage is returned by Message.Validate when a message carries no
// content, no attachments, and no product references. Such a message must
// never reach the network.
var ErrEmptyMessage = errors.New("message has no content, attachments, or product references")

// AttachmentKind partitions attachments into the two families the backend
// accepts, each with its own size cap.
type AttachmentKind string

const (
	AttachmentImage    AttachmentKind = "image"
	AttachmentDocument AttachmentKind = "document"
)

// Attachment is one file attached to a message. Order within a message is
// meaningful and preserved.
type Attachment struct {
	Name string         `json:"name"`
	Kind AttachmentKind `json:"type"`
	URL  string         `json:"url,omitempty"`
	Size int64          `json:"size,omitempty"`
}

// Message is a single chat message as the backend reports it. Messages are
// displayed in exactly the order the backend returns them.
type Message struct {
	ID                string          `json:"id"`
	ConversationID    string          `json:"conversationId"`
	SenderID          string          `json:"senderId"`
	SenderType        ParticipantRole `json:"senderType"`
	Content           string          `json:"content,omitempty"`
	Attachments       []Attachment    `json:"attachments,omitempty"`
	ProductReferences []string        `json:"productReferences,omitempty"`
	IsRead            bool            `json:"isRead"`
	CreatedAt         time.Time       `json:"createdAt"`
}

// Validate enforces the completeness rule: a message must carry non-blank
// content, or at least one attachment, or at least one product reference.
func (m *Message) Validate() error {
	if strings.TrimSpace(m.Content) != "" {
		return nil
	}
	if len(m.Attachments) > 0 || len(m.ProductReferences) > 0 {
		return nil
	}
	return ErrEmptyMessage
}
