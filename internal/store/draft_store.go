package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MuhammadMasood9/B2BEcommercw-sub002/internal/domain"
)

// SQLiteDraftStore keeps one draft row per conversation, surviving process
// restarts so a failed send never loses composed input.
type SQLiteDraftStore struct {
	db *DB
}

// NewSQLiteDraftStore creates a draft store using the given database.
func NewSQLiteDraftStore(db *DB) *SQLiteDraftStore {
	return &SQLiteDraftStore{db: db}
}

// Put inserts or replaces the draft for its conversation.
func (s *SQLiteDraftStore) Put(d domain.Draft) error {
	if d.ConversationID == "" {
		return errors.New("draft has no conversation id")
	}

	attachments, err := encodeJSONColumn(d.Attachments)
	if err != nil {
		return fmt.Errorf("encoding attachments: %w", err)
	}
	productRefs, err := encodeJSONColumn(d.ProductRefs)
	if err != nil {
		return fmt.Errorf("encoding product refs: %w", err)
	}

	ts := d.UpdatedAt
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err = s.db.sql.Exec(
		`INSERT INTO drafts (conversation_id, content, attachments, product_refs, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(conversation_id) DO UPDATE SET
		   content = excluded.content,
		   attachments = excluded.attachments,
		   product_refs = excluded.product_refs,
		   updated_at = excluded.updated_at`,
		d.ConversationID, d.Content, attachments, productRefs, ts.Format(time.DateTime),
	)
	if err != nil {
		return fmt.Errorf("storing draft: %w", err)
	}
	return nil
}

// Get returns the draft for a conversation, with found=false when none exists.
func (s *SQLiteDraftStore) Get(conversationID string) (domain.Draft, bool, error) {
	var (
		d           domain.Draft
		attachments sql.NullString
		productRefs sql.NullString
		updatedAt   string
	)

	err := s.db.sql.QueryRow(
		`SELECT conversation_id, content, attachments, product_refs, updated_at
		 FROM drafts WHERE conversation_id = ?`, conversationID,
	).Scan(&d.ConversationID, &d.Content, &attachments, &productRefs, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Draft{}, false, nil
	}
	if err != nil {
		return domain.Draft{}, false, fmt.Errorf("loading draft: %w", err)
	}

	d.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
	if attachments.Valid && attachments.String != "" {
		_ = json.Unmarshal([]byte(attachments.String), &d.Attachments)
	}
	if productRefs.Valid && productRefs.String != "" {
		_ = json.Unmarshal([]byte(productRefs.String), &d.ProductRefs)
	}
	return d, true, nil
}

// Clear removes the draft for a conversation. Clearing a missing draft is
// not an error.
func (s *SQLiteDraftStore) Clear(conversationID string) error {
	_, err := s.db.sql.Exec(`DELETE FROM drafts WHERE conversation_id = ?`, conversationID)
	if err != nil {
		return fmt.Errorf("clearing draft: %w", err)
	}
	return nil
}

// List returns all drafts, most recently updated first.
func (s *SQLiteDraftStore) List() ([]domain.Draft, error) {
	rows, err := s.db.sql.Query(
		`SELECT conversation_id, content, attachments, product_refs, updated_at
		 FROM drafts ORDER BY updated_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing drafts: %w", err)
	}
	defer rows.Close()

	var drafts []domain.Draft
	for rows.Next() {
		var (
			d           domain.Draft
			attachments sql.NullString
			productRefs sql.NullString
			updatedAt   string
		)
		if err := rows.Scan(&d.ConversationID, &d.Content, &attachments, &productRefs, &updatedAt); err != nil {
			continue
		}
		d.UpdatedAt, _ = time.Parse(time.DateTime, updatedAt)
		if attachments.Valid && attachments.String != "" {
			_ = json.Unmarshal([]byte(attachments.String), &d.Attachments)
		}
		if productRefs.Valid && productRefs.String != "" {
			_ = json.Unmarshal([]byte(productRefs.String), &d.ProductRefs)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

// encodeJSONColumn marshals a slice into a nullable JSON column, storing
// NULL for empty slices.
func encodeJSONColumn(v any) (sql.NullString, error) {
	switch s := v.(type) {
	case []domain.Attachment:
		if len(s) == 0 {
			return sql.NullString{}, nil
		}
	case []string:
		if len(s) == 0 {
			return sql.NullString{}, nil
		}
	}
	data, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
