// Package model defines the data structures used throughout the application.
package model

import "time"

// Role is a user's permission level. It is a closed set — every role in the
// system is one of the three constants below, and the authorization rules in
// internal/authz switch exhaustively over them.
//
// WHY A NAMED TYPE AND NOT A PLAIN STRING?
// A plain string would let any value slip into the role column ("Admin",
// "superuser", a typo). With a named type plus Valid(), every boundary that
// accepts a role can reject unknown values before they reach the database.
type Role string

const (
	// RoleAdmin may do everything: manage users, languages, and any snippet.
	RoleAdmin Role = "admin"
	// RoleEditor may author snippets and mutate their own.
	RoleEditor Role = "editor"
	// RoleUser is the default: read snippets and bookmark them, never author.
	RoleUser Role = "user"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	}
	return false
}

// User represents a registered account.
//
// PasswordHash is the full bcrypt output (salt included) and is never
// serialized — the `json:"-"` tag keeps it out of every API response.
//
// GitHubID is non-zero only for accounts created through the GitHub OAuth
// sign-in path. It is stored as a nullable column so the UNIQUE constraint
// doesn't collide on the zero value for password-registered accounts.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"` // unique
	Email        string    `json:"email"     db:"email"`    // unique
	PasswordHash string    `json:"-"         db:"password_hash"`
	Role         Role      `json:"role"      db:"role"`
	GitHubID     int64     `json:"-"         db:"github_id"` // 0 = not a GitHub account
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}
