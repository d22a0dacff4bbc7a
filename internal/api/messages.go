package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
)

// SendMessageRequest is the payload for posting a message. At least one of
// content, attachments, or product references must be populated; callers
// validate before sending. MessageType is filled from the payload when left
// empty.
type SendMessageRequest struct {
	Content           string              `json:"content,omitempty"`
	MessageType       string              `json:"messageType"`
	Attachments       []domain.Attachment `json:"attachments,omitempty"`
	ProductReferences []string            `json:"productReferences,omitempty"`
}

// messageType derives the backend's payload discriminator: text when there
// is a body, otherwise the leading attachment's kind, otherwise product.
func (r SendMessageRequest) messageType() string {
	switch {
	case strings.TrimSpace(r.Content) != "":
		return "text"
	case len(r.Attachments) > 0:
		if r.Attachments[0].Kind == domain.AttachmentImage {
			return "image"
		}
		return "file"
	case len(r.ProductReferences) > 0:
		return "product"
	}
	return "text"
}

// GetMessages fetches the full ordered message history of a conversation.
// The order is the backend's; callers must not re-sort it.
func (c *Client) GetMessages(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var raw json.RawMessage
	path := "/api/chat/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeMessageList(raw)
}

// SendMessage posts a new message and returns the backend's record of it.
func (c *Client) SendMessage(ctx context.Context, conversationID string, req SendMessageRequest) (*domain.Message, error) {
	if req.MessageType == "" {
		req.MessageType = req.messageType()
	}

	var msg domain.Message
	path := "/api/chat/conversations/" + url.PathEscape(conversationID) + "/messages"
	if err := c.do(ctx, http.MethodPost, path, nil, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// decodeMessageList accepts both a bare array and an object wrapping it
// under "messages".
func decodeMessageList(raw json.RawMessage) ([]domain.Message, error) {
	var list []domain.Message
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapper struct {
		Messages []domain.Message `json:"messages"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("parse message list: %w", err)
	}
	return wrapper.Messages, nil
}
