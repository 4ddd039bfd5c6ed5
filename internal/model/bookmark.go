package model

import "time"

// Bookmark is a save/favorite link between one user and one snippet.
// The (UserID, SnippetID) pair is unique — at most one row per pair, enforced
// by the database. Deleting either side cascades to the bookmark.
type Bookmark struct {
	ID           string    `json:"id"           db:"id"`
	UserID       string    `json:"userId"       db:"user_id"`
	SnippetID    string    `json:"snippetId"    db:"snippet_id"`
	BookmarkedAt time.Time `json:"bookmarkedAt" db:"bookmarked_at"`

	// Snippet is populated (with its language and owner) by ListByUser.
	Snippet *Snippet `json:"snippet,omitempty"`
}
