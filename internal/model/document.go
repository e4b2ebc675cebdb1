package model

// Document represents a unit of stored knowledge owned by a single user.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, repository) without coupling to persistence.
//
// ID 0 means the document has not been persisted yet; the repository assigns a
// durable non-zero ID on save. Title, ID, and OwnerID never change after
// construction.
type Document struct {
	ID      int64    `json:"id"`
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
	OwnerID string   `json:"owner_id"`
}

// NewDocument constructs a document value. Titles and content are accepted
// as-is: empty strings, control characters, and multi-megabyte payloads are
// all valid.
func NewDocument(id int64, title, content, ownerID string) *Document {
	return &Document{
		ID:      id,
		Title:   title,
		Content: content,
		Tags:    []string{},
		OwnerID: ownerID,
	}
}

// ReplaceContent swaps the content wholesale. No merge, no history.
func (d *Document) ReplaceContent(content string) {
	d.Content = content
}
