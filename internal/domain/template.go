package domain

// Template is a reusable chat snippet (quick response). Suppliers and admins
// maintain their own sets; shortcuts allow expansion while composing.
type Template struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Shortcut   string   `json:"shortcut,omitempty"`
	Content    string   `json:"content"`
	Category   string   `json:"category,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	UsageCount int      `json:"usageCount,omitempty"`
}
