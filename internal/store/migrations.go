package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create drafts",
		SQL: `
			CREATE TABLE drafts (
				conversation_id TEXT PRIMARY KEY,
				content         TEXT NOT NULL DEFAULT '',
				attachments     TEXT,
				product_refs    TEXT,
				updated_at      TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_drafts_updated ON drafts (updated_at DESC);
		`,
	},
}
