package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
)

// ListTemplates fetches the caller's chat templates and quick responses.
func (c *Client) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/api/chat/templates", nil, nil, &raw); err != nil {
		return nil, err
	}
	return decodeTemplateList(raw)
}

// CreateTemplate stores a new template.
func (c *Client) CreateTemplate(ctx context.Context, tpl domain.Template) (*domain.Template, error) {
	var created domain.Template
	if err := c.do(ctx, http.MethodPost, "/api/chat/templates", nil, tpl, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateTemplate replaces an existing template by id.
func (c *Client) UpdateTemplate(ctx context.Context, tpl domain.Template) (*domain.Template, error) {
	if tpl.ID == "" {
		return nil, fmt.Errorf("update template: missing id")
	}
	var updated domain.Template
	if err := c.do(ctx, http.MethodPut, "/api/chat/templates/"+url.PathEscape(tpl.ID), nil, tpl, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTemplate removes a template by id.
func (c *Client) DeleteTemplate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/chat/templates/"+url.PathEscape(id), nil, nil, nil)
}

// UseTemplate bumps a template's usage counter. Callers fire this without
// awaiting the outcome; a failure costs nothing but a stale count.
func (c *Client) UseTemplate(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/chat/templates/"+url.PathEscape(id)+"/use", nil, nil, nil)
}

func decodeTemplateList(raw json.RawMessage) ([]domain.Template, error) {
	var list []domain.Template
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapper struct {
		Templates []domain.Template `json:"templates"`
	}
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("parse template list: %w", err)
	}
	return wrapper.Templates, nil
}
