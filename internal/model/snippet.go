package model

import "time"

// Snippet represents a shared code snippet.
//
// Every snippet belongs to exactly one owner (UserID) — set at creation and
// never reassigned. The language reference is optional at the storage level:
// deleting a language detaches its snippets (LanguageID becomes empty) rather
// than deleting them.
//
// EAGER LOADING CONTRACT:
// Repository reads (GetByID, List) always populate Language and Owner in the
// same fetch. Callers can rely on Owner being non-nil and on Language being
// non-nil whenever LanguageID is set — no second query needed.
type Snippet struct {
	ID          string    `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	CodeContent string    `json:"codeContent" db:"code_content"`
	Description string    `json:"description" db:"description"`
	LanguageID  string    `json:"languageId"  db:"language_id"` // empty = detached
	UserID      string    `json:"userId"      db:"user_id"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`

	// Populated by repository reads, not stored columns.
	Language *Language `json:"language,omitempty"`
	Owner    *User     `json:"user,omitempty"`
}
