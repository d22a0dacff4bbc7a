package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- ConversationType tests ---

func TestConversationTypeValid(t *testing.T) {
	tests := []struct {
		name string
		ct   ConversationType
		want bool
	}{
		{name: "buyer_supplier", ct: TypeBuyerSupplier, want: true},
		{name: "buyer_admin", ct: TypeBuyerAdmin, want: true},
		{name: "supplier_admin", ct: TypeSupplierAdmin, want: true},
		{name: "empty", ct: "", want: false},
		{name: "unknown", ct: "group", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ct.Valid())
		})
	}
}

func TestConversationTypeIsSupportTicket(t *testing.T) {
	assert.False(t, TypeBuyerSupplier.IsSupportTicket())
	assert.True(t, TypeBuyerAdmin.IsSupportTicket())
	assert.True(t, TypeSupplierAdmin.IsSupportTicket())
}

func TestConversationTypeRoles(t *testing.T) {
	assert.Equal(t, []ParticipantRole{RoleBuyer, RoleSupplier}, TypeBuyerSupplier.Roles())
	assert.Equal(t, []ParticipantRole{RoleBuyer, RoleAdmin}, TypeBuyerAdmin.Roles())
	assert.Equal(t, []ParticipantRole{RoleSupplier, RoleAdmin}, TypeSupplierAdmin.Roles())
	assert.Nil(t, ConversationType("bogus").Roles())
}

// --- Status tests ---

func TestStatusValidFor(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		ct     ConversationType
		want   bool
	}{
		{name: "open ticket", status: StatusOpen, ct: TypeBuyerAdmin, want: true},
		{name: "assigned ticket", status: StatusAssigned, ct: TypeSupplierAdmin, want: true},
		{name: "in_progress ticket", status: StatusInProgress, ct: TypeBuyerAdmin, want: true},
		{name: "resolved ticket", status: StatusResolved, ct: TypeBuyerAdmin, want: true},
		{name: "closed ticket", status: StatusClosed, ct: TypeBuyerAdmin, want: true},
		{name: "active is not a ticket status", status: StatusActive, ct: TypeBuyerAdmin, want: false},
		{name: "active peer", status: StatusActive, ct: TypeBuyerSupplier, want: true},
		{name: "closed peer", status: StatusClosed, ct: TypeBuyerSupplier, want: true},
		{name: "open is not a peer status", status: StatusOpen, ct: TypeBuyerSupplier, want: false},
		{name: "resolved is not a peer status", status: StatusResolved, ct: TypeBuyerSupplier, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.ValidFor(tt.ct))
		})
	}
}

// --- Priority tests ---

func TestPriorityRank(t *testing.T) {
	assert.Equal(t, 4, PriorityUrgent.Rank())
	assert.Equal(t, 3, PriorityHigh.Rank())
	assert.Equal(t, 2, PriorityMedium.Rank())
	assert.Equal(t, 1, PriorityLow.Rank())
	assert.Equal(t, 0, Priority("").Rank())
	assert.Equal(t, 0, Priority("critical").Rank())
}

func TestPriorityValid(t *testing.T) {
	assert.True(t, PriorityUrgent.Valid())
	assert.True(t, PriorityLow.Valid())
	assert.False(t, Priority("").Valid())
	assert.False(t, Priority("none").Valid())
}

// --- Conversation participant tests ---

func TestConversationParticipant(t *testing.T) {
	conv := &Conversation{
		ID:       "conv-1",
		Type:     TypeBuyerSupplier,
		Buyer:    &Participant{ID: "b1", Name: "Acme Procurement", Email: "buyer@acme.test"},
		Supplier: &Participant{ID: "s1", Name: "Widget Works"},
	}

	buyer, ok := conv.Participant(RoleBuyer)
	require.True(t, ok)
	assert.Equal(t, "b1", buyer.ID)

	supplier, ok := conv.Participant(RoleSupplier)
	require.True(t, ok)
	assert.Equal(t, "Widget Works", supplier.Name)

	// Role not defined by the type: data must stay unreachable even if set.
	conv.Admin = &Participant{ID: "leak"}
	_, ok = conv.Participant(RoleAdmin)
	assert.False(t, ok)
}

func TestConversationParticipantMissingData(t *testing.T) {
	conv := &Conversation{Type: TypeBuyerAdmin, Buyer: &Participant{ID: "b1"}}

	_, ok := conv.Participant(RoleAdmin)
	assert.False(t, ok, "role is defined but data absent")
}

func TestConversationCounterpart(t *testing.T) {
	tests := []struct {
		name   string
		conv   Conversation
		viewer ParticipantRole
		wantID string
		wantOK bool
	}{
		{
			name: "buyer sees supplier",
			conv: Conversation{
				Type:     TypeBuyerSupplier,
				Buyer:    &Participant{ID: "b1"},
				Supplier: &Participant{ID: "s1"},
			},
			viewer: RoleBuyer,
			wantID: "s1",
			wantOK: true,
		},
		{
			name: "admin sees buyer on a ticket",
			conv: Conversation{
				Type:  TypeBuyerAdmin,
				Buyer: &Participant{ID: "b1"},
				Admin: &Participant{ID: "a1"},
			},
			viewer: RoleAdmin,
			wantID: "b1",
			wantOK: true,
		},
		{
			name: "admin is not part of a peer conversation",
			conv: Conversation{
				Type:     TypeBuyerSupplier,
				Buyer:    &Participant{ID: "b1"},
				Supplier: &Participant{ID: "s1"},
			},
			viewer: RoleAdmin,
			wantOK: false,
		},
		{
			name: "supplier is not part of a buyer ticket",
			conv: Conversation{
				Type:  TypeBuyerAdmin,
				Buyer: &Participant{ID: "b1"},
				Admin: &Participant{ID: "a1"},
			},
			viewer: RoleSupplier,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.conv.Counterpart(tt.viewer)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, got.ID)
			}
		})
	}
}

func TestConversationIsClosed(t *testing.T) {
	assert.True(t, (&Conversation{Status: StatusClosed}).IsClosed())
	assert.False(t, (&Conversation{Status: StatusActive}).IsClosed())
	assert.False(t, (&Conversation{Status: StatusResolved}).IsClosed())
}

// --- Message validation tests ---

func TestMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     Message
		wantErr error
	}{
		{
			name:    "completely empty",
			msg:     Message{},
			wantErr: ErrEmptyMessage,
		},
		{
			name:    "whitespace-only content",
			msg:     Message{Content: "   \n\t "},
			wantErr: ErrEmptyMessage,
		},
		{
			name: "content only",
			msg:  Message{Content: "hello"},
		},
		{
			name: "attachment only",
			msg:  Message{Attachments: []Attachment{{Name: "quote.pdf", Kind: AttachmentDocument}}},
		},
		{
			name: "product reference only",
			msg:  Message{ProductReferences: []string{"prod-1"}},
		},
		{
			name: "whitespace content with attachment",
			msg: Message{
				Content:     "  ",
				Attachments: []Attachment{{Name: "photo.png", Kind: AttachmentImage}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// --- Draft tests ---

func TestDraftEmpty(t *testing.T) {
	assert.True(t, Draft{ConversationID: "c1"}.Empty())
	assert.False(t, Draft{Content: "hi"}.Empty())
	assert.False(t, Draft{Attachments: []Attachment{{Name: "a.pdf"}}}.Empty())
	assert.False(t, Draft{ProductRefs: []string{"prod-1"}}.Empty())
}

// --- Presence tests ---

func TestPresenceZeroValueIsUnknown(t *testing.T) {
	var p Presence
	assert.False(t, p.Known())
	assert.False(t, p.IsOnline)
	assert.Nil(t, p.LastSeen)
}

func TestPresenceKnown(t *testing.T) {
	seen := time.Now().UTC()
	p := Presence{UserID: "u1", IsOnline: false, LastSeen: &seen}
	assert.True(t, p.Known())
}

// --- Wire shape tests ---

func TestConversationDecodeBackendPayload(t *testing.T) {
	payload := `{
		"id": "conv-9",
		"type": "supplier_admin",
		"supplier": {"id": "s1", "name": "Widget Works", "email": "sales@widgetworks.test"},
		"admin": {"id": "a1", "name": "Support"},
		"subject": "Payout delayed",
		"status": "in_progress",
		"priority": "high",
		"assignedTo": "a1",
		"unreadCount": 2,
		"lastMessageAt": "2026-02-11T09:30:00Z",
		"createdAt": "2026-02-10T18:04:11Z"
	}`

	var conv Conversation
	require.NoError(t, json.Unmarshal([]byte(payload), &conv))

	assert.Equal(t, TypeSupplierAdmin, conv.Type)
	assert.True(t, conv.Type.IsSupportTicket())
	assert.Equal(t, StatusInProgress, conv.Status)
	assert.Equal(t, 3, conv.Priority.Rank())
	assert.Equal(t, 2, conv.UnreadCount)

	supplier, ok := conv.Counterpart(RoleAdmin)
	require.True(t, ok)
	assert.Equal(t, "Widget Works", supplier.Name)
}

func TestMessageDecodeBackendPayload(t *testing.T) {
	payload := `{
		"id": "msg-3",
		"conversationId": "conv-9",
		"senderId": "s1",
		"senderType": "supplier",
		"content": "Invoice attached.",
		"attachments": [{"name": "invoice.pdf", "type": "document", "url": "https://cdn.example.test/invoice.pdf", "size": 88211}],
		"productReferences": ["prod-77"],
		"isRead": false,
		"createdAt": "2026-02-11T09:30:00Z"
	}`

	var msg Message
	require.NoError(t, json.Unmarshal([]byte(payload), &msg))

	assert.Equal(t, RoleSupplier, msg.SenderType)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, AttachmentDocument, msg.Attachments[0].Kind)
	assert.Equal(t, []string{"prod-77"}, msg.ProductReferences)
	assert.NoError(t, msg.Validate())
}
