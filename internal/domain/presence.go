package domain

import "time"

// Presence is the last known online state of a user. The zero value reads
// as unknown: offline with no last-seen timestamp.
type Presence struct {
	UserID   string     `json:"userId"`
	IsOnline bool       `json:"isOnline"`
	LastSeen *time.Time `json:"lastSeen,omitempty"`
}

// Known reports whether this presence came from an actual status response
// rather than being the zero value.
func (p Presence) Known() bool {
	return p.UserID != ""
}
