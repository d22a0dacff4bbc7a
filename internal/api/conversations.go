package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
)

// ListOptions scopes a conversation listing. Admins may leave UserID empty
// to list all support tickets.
type ListOptions struct {
	UserID string
	Role   domain.ParticipantRole
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	if o.UserID != "" {
		q.Set("userId", o.UserID)
	}
	if o.Role != "" {
		q.Set("role", string(o.Role))
	}
	return q
}

// CreateConversationRequest starts a new conversation with one counterpart.
// ActorRole names the side the creator is on; the wire body keys the
// counterpart under the field its role defines, so the same CounterpartID
// goes out as supplierId or buyerId depending on who opens the conversation.
type CreateConversationRequest struct {
	Type          domain.ConversationType
	ActorRole     domain.ParticipantRole
	CounterpartID string
	Subject       string
	ProductID     string
}

// counterpartRole returns the role CounterpartID plays in Type: the one
// role of the pair that is not the actor's. ok is false when the type does
// not involve the actor at all.
func (r CreateConversationRequest) counterpartRole() (domain.ParticipantRole, bool) {
	roles := r.Type.Roles()
	if len(roles) != 2 {
		return "", false
	}
	switch r.ActorRole {
	case roles[0]:
		return roles[1], true
	case roles[1]:
		return roles[0], true
	}
	return "", false
}

// MarshalJSON writes the backend's create body. The counterpart id appears
// only under the field its role defines; a ticket opened toward support
// carries no admin id at all, the triage queue claims it later.
func (r CreateConversationRequest) MarshalJSON() ([]byte, error) {
	body := struct {
		Type       domain.ConversationType `json:"type"`
		SupplierID string                  `json:"supplierId,omitempty"`
		BuyerID    string                  `json:"buyerId,omitempty"`
		Subject    string                  `json:"subject,omitempty"`
		ProductID  string                  `json:"productId,omitempty"`
	}{Type: r.Type, Subject: r.Subject, ProductID: r.ProductID}

	role, _ := r.counterpartRole()
	switch role {
	case domain.RoleSupplier:
		body.SupplierID = r.CounterpartID
	case domain.RoleBuyer:
		body.BuyerID = r.CounterpartID
	}
	return json.Marshal(body)
}

// ListConversations fetches the conversation directory for the given scope.
func (c *Client) ListConversations(ctx context.Context, opts ListOptions) ([]domain.Conversation, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/chat/conversations", opts.query(), nil, &raw); err != nil {
		return nil, err
	}
	return decodeConversationList(raw)
}

// GetConversation fetches one conversation by id.
func (c *Client) GetConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := c.do(ctx, http.MethodGet, "/api/chat/conversations/"+url.PathEscape(id), nil, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// CreateConversation starts a new conversation and returns the backend's
// record of it. The request is checked before anything goes out: the body
// has no field for a counterpart whose role the type does not define, and
// silently dropping one would be worse than refusing.
func (c *Client) CreateConversation(ctx context.Context, req CreateConversationRequest) (*domain.Conversation, error) {
	role, ok := req.counterpartRole()
	if !ok {
		return nil, fmt.Errorf("create conversation: role %q has no side in a %q conversation", req.ActorRole, req.Type)
	}
	if role == domain.RoleAdmin && req.CounterpartID != "" {
		return nil, fmt.Errorf("create conversation: support tickets are claimed from the queue, not addressed to an admin")
	}
	if role != domain.RoleAdmin && req.CounterpartID == "" {
		return nil, fmt.Errorf("create conversation: a %s conversation needs a counterpart id", req.Type)
	}

	var conv domain.Conversation
	if err := c.do(ctx, http.MethodPost, "/api/chat/conversations", nil, req, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// MarkRead marks every message in the conversation as read for the caller.
// The operation is idempotent server-side.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPatch, "/api/chat/conversations/"+url.PathEscape(id)+"/read", nil, nil, nil)
}

// Assign sets the handling admin on a support ticket, optionally with a
// priority in the same call. The response carries the server-resolved
// assignee, which may differ from adminID if someone else won the race.
func (c *Client) Assign(ctx context.Context, id, adminID string, priority domain.Priority) (*domain.Conversation, error) {
	body := struct {
		AdminID  string          `json:"adminId"`
		Priority domain.Priority `json:"priority,omitempty"`
	}{AdminID: adminID, Priority: priority}

	var conv domain.Conversation
	if err := c.do(ctx, http.MethodPatch, "/api/chat/conversations/"+url.PathEscape(id)+"/assign", nil, body, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// UpdatePriority changes a support ticket's priority.
func (c *Client) UpdatePriority(ctx context.Context, id string, priority domain.Priority) (*domain.Conversation, error) {
	body := struct {
		Priority domain.Priority `json:"priority"`
	}{Priority: priority}

	var conv domain.Conversation
	if err := c.do(ctx, http.MethodPatch, "/api/chat/conversations/"+url.PathEscape(id)+"/priority", nil, body, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// CloseConversation closes a conversation; no further messages may be sent.
func (c *Client) CloseConversation(ctx context.Context, id string) (*domain.Conversation, error) {
	var conv domain.Conversation
	if err := c.do(ctx, http.MethodPatch, "/api/chat/conversations/"+url.PathEscape(id)+"/close", nil, nil, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// decodeConversationList accepts both shapes the backend has shipped: a bare
// array and an object wrapping it under "conversations".
func decodeConversationList(raw json.RawMessage) ([]domain.Conversation, error) {
	var list []domain.Conversation
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapper struct {
		Conversations []domain.Conversation `json:"conversations"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("parse conversation list: %w", err)
	}
	return wrapper.Conversations, nil
}
