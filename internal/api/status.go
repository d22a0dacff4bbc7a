package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
)

// GetUserStatus fetches another user's presence.
func (c *Client) GetUserStatus(ctx context.Context, userID string) (*domain.Presence, error) {
	var p domain.Presence
	path := "/api/chat/user/" + url.PathEscape(userID) + "/status"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &p); err != nil {
		return nil, err
	}
	if p.UserID == "" {
		p.UserID = userID
	}
	return &p, nil
}

// SetUserStatus reports the caller's own online state.
func (c *Client) SetUserStatus(ctx context.Context, online bool) error {
	body := struct {
		IsOnline bool `json:"isOnline"`
	}{IsOnline: online}
	return c.do(ctx, http.MethodPost, "/api/chat/user/status", nil, body, nil)
}

// Beacon reports the caller's online state on a context detached from any
// caller lifetime, bounded by a short hard timeout. It is the shutdown
// path: the returned error is for logging only and the call never blocks
// teardown beyond the timeout.
func (c *Client) Beacon(online bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.beaconTimeout)
	defer cancel()
	return c.SetUserStatus(ctx, online)
}
