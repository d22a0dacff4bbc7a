package domain

import "time"

// Draft is composed-but-unsent input for one conversation. Drafts are owned
// by the client: the backend never sees them, and a failed send must leave
// the draft intact.
type Draft struct {
	ConversationID string       `json:"conversationId"`
	Content        string       `json:"content,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	ProductRefs    []string     `json:"productRefs,omitempty"`
	UpdatedAt      time.Time    `json:"updatedAt"`
}

// Empty reports whether the draft carries nothing worth keeping.
func (d Draft) Empty() bool {
	return d.Content == "" && len(d.Attachments) == 0 && len(d.ProductRefs) == 0
}
