package models

// Comment belongs to exactly one item and one authoring user. Comments are
// deleted only as part of deleting their item.
type Comment struct {
	ID        int64
	ItemID    int64
	UserID    int64
	Content   string
	CreatedAt string

	// AuthorName is the comment author's username, joined in for display.
	AuthorName string
}
