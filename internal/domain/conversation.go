package domain

import "time"

// ConversationType classifies who sits on each side of a conversation.
type ConversationType string

const (
	TypeBuyerSupplier ConversationType = "buyer_supplier"
	TypeBuyerAdmin    ConversationType = "buyer_admin"
	TypeSupplierAdmin ConversationType = "supplier_admin"
)

// Valid reports whether t is one of the known conversation types.
func (t ConversationType) Valid() bool {
	switch t {
	case TypeBuyerSupplier, TypeBuyerAdmin, TypeSupplierAdmin:
		return true
	}
	return false
}

// IsSupportTicket reports whether an admin sits on one side of the
// conversation, which makes it subject to triage (assignment, priority,
// resolution states).
func (t ConversationType) IsSupportTicket() bool {
	return t == TypeBuyerAdmin || t == TypeSupplierAdmin
}

// Roles returns the participant roles this conversation type defines.
// Participant data for any other role must not be read.
func (t ConversationType) Roles() []ParticipantRole {
	switch t {
	case TypeBuyerSupplier:
		return []ParticipantRole{RoleBuyer, RoleSupplier}
	case TypeBuyerAdmin:
		return []ParticipantRole{RoleBuyer, RoleAdmin}
	case TypeSupplierAdmin:
		return []ParticipantRole{RoleSupplier, RoleAdmin}
	}
	return nil
}

// ParticipantRole identifies which side of a conversation a user occupies.
type ParticipantRole string

const (
	RoleBuyer    ParticipantRole = "buyer"
	RoleSupplier ParticipantRole = "supplier"
	RoleAdmin    ParticipantRole = "admin"
)

// Valid reports whether r is one of the known roles.
func (r ParticipantRole) Valid() bool {
	switch r {
	case RoleBuyer, RoleSupplier, RoleAdmin:
		return true
	}
	return false
}

// Participant is one side of a conversation.
type Participant struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Status is the lifecycle state of a conversation. Support tickets move
// through the triage states; peer conversations are only ever active or
// closed.
type Status string

const (
	StatusOpen       Status = "open"
	StatusAssigned   Status = "assigned"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusActive     Status = "active"
	StatusClosed     Status = "closed"
)

// ValidFor reports whether s is a legal status for conversations of type t.
func (s Status) ValidFor(t ConversationType) bool {
	if t.IsSupportTicket() {
		switch s {
		case StatusOpen, StatusAssigned, StatusInProgress, StatusResolved, StatusClosed:
			return true
		}
		return false
	}
	return s == StatusActive || s == StatusClosed
}

// Priority is the triage priority of a support ticket. The zero value means
// the ticket has no priority set.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank maps a priority to a sortable weight, highest first: urgent=4,
// high=3, medium=2, low=1. Unset or unknown priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Conversation is one thread in the directory. Which of the participant
// fields are populated depends on Type; use Participant and Counterpart
// rather than reading the fields directly.
type Conversation struct {
	ID            string           `json:"id"`
	Type          ConversationType `json:"type"`
	Buyer         *Participant     `json:"buyer,omitempty"`
	Supplier      *Participant     `json:"supplier,omitempty"`
	Admin         *Participant     `json:"admin,omitempty"`
	Subject       string           `json:"subject,omitempty"`
	Status        Status           `json:"status"`
	Priority      Priority         `json:"priority,omitempty"`
	ProductID     string           `json:"productId,omitempty"`
	AssignedTo    string           `json:"assignedTo,omitempty"`
	UnreadCount   int              `json:"unreadCount,omitempty"`
	LastMessageAt time.Time        `json:"lastMessageAt"`
	CreatedAt     time.Time        `json:"createdAt"`
}

// Participant returns the participant occupying role, if the conversation
// type defines that role and the data is present.
func (c *Conversation) Participant(role ParticipantRole) (Participant, bool) {
	for _, r := range c.Type.Roles() {
		if r != role {
			continue
		}
		var p *Participant
		switch role {
		case RoleBuyer:
			p = c.Buyer
		case RoleSupplier:
			p = c.Supplier
		case RoleAdmin:
			p = c.Admin
		}
		if p == nil {
			return Participant{}, false
		}
		return *p, true
	}
	return Participant{}, false
}

// Counterpart returns the participant on the opposite side from viewer.
// It returns ok=false when the viewer's role is not part of this
// conversation type.
func (c *Conversation) Counterpart(viewer ParticipantRole) (Participant, bool) {
	roles := c.Type.Roles()
	found := false
	var other ParticipantRole
	for _, r := range roles {
		if r == viewer {
			found = true
		} else {
			other = r
		}
	}
	if !found || other == "" {
		return Participant{}, false
	}
	return c.Participant(other)
}

// IsClosed reports whether no further messages may be sent.
func (c *Conversation) IsClosed() bool {
	return c.Status == StatusClosed
}
