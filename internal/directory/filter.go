package directory

import (
	"sort"
	"strings"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
)

// SortOrder selects how a filtered list is ordered.
type SortOrder string

const (
	// SortRecent orders by last message time, newest first. This is the
	// default.
	SortRecent SortOrder = "recent"
	// SortCreated orders by creation time, newest first.
	SortCreated SortOrder = "created"
	// SortUnread orders by unread count, highest first.
	SortUnread SortOrder = "unread"
	// SortPriority orders by priority rank, urgent first. Conversations
	// with equal rank keep their incoming order.
	SortPriority SortOrder = "priority"
)

// Filter narrows and orders a conversation list. The zero value matches
// everything and sorts by recency.
type Filter struct {
	Query      string // case-insensitive match on id, subject, product id, or counterpart name/email
	Status     domain.Status
	Priority   domain.Priority
	Type       domain.ConversationType
	Unassigned bool // only tickets nobody has claimed yet
	Sort       SortOrder
}

// Apply returns the conversations matching the filter, ordered per Sort.
// The input slice is never modified; viewer decides whose counterpart name
// the query is matched against.
func (f Filter) Apply(list []domain.Conversation, viewer domain.ParticipantRole) []domain.Conversation {
	out := make([]domain.Conversation, 0, len(list))
	for _, c := range list {
		if f.matches(c, viewer) {
			out = append(out, c)
		}
	}

	switch f.Sort {
	case SortCreated:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortUnread:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].UnreadCount > out[j].UnreadCount
		})
	case SortPriority:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Priority.Rank() > out[j].Priority.Rank()
		})
	default:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastMessageAt.After(out[j].LastMessageAt)
		})
	}
	return out
}

func (f Filter) matches(c domain.Conversation, viewer domain.ParticipantRole) bool {
	if f.Status != "" && c.Status != f.Status {
		return false
	}
	if f.Priority != "" && c.Priority != f.Priority {
		return false
	}
	if f.Type != "" && c.Type != f.Type {
		return false
	}
	if f.Unassigned && (c.AssignedTo != "" || !c.Type.IsSupportTicket()) {
		return false
	}
	if f.Query == "" {
		return true
	}

	q := strings.ToLower(f.Query)
	if counterpart, ok := c.Counterpart(viewer); ok {
		if strings.Contains(strings.ToLower(counterpart.Name), q) ||
			strings.Contains(strings.ToLower(counterpart.Email), q) {
			return true
		}
	}
	if strings.Contains(strings.ToLower(c.Subject), q) {
		return true
	}
	if strings.Contains(strings.ToLower(c.ID), q) {
		return true
	}
	return c.ProductID != "" && strings.Contains(strings.ToLower(c.ProductID), q)
}
