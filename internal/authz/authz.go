// Package authz is the authorization gate: pure functions deciding whether an
// actor may perform a given mutation. Services consult it before every write.
//
// The rules are deliberately small and live in one place so they can be read
// (and tested) at a glance:
//
//	snippet create        → admin or editor
//	snippet update/delete → owner or admin
//	language mutations    → admin only
//	user management       → admin only
//	bookmarks             → any authenticated actor (no gate needed)
//
// Reads are unrestricted and never pass through this package.
//
// All functions evaluate the actor's CURRENT role — the auth middleware
// re-loads the user row on every request, so a role change takes effect
// immediately rather than living on in an old session token.
package authz

import "github.com/manterx/codesnip/internal/model"

// CanCreateSnippet reports whether the actor may author a new snippet.
// A reader (RoleUser) may browse and bookmark but never author.
func CanCreateSnippet(actor *model.User) bool {
	if actor == nil {
		return false
	}
	return actor.Role == model.RoleAdmin || actor.Role == model.RoleEditor
}

// CanMutateSnippet reports whether the actor may update or delete the given
// snippet: permitted iff the actor owns it or is an admin. The rule is the
// same for update and delete, so there is one function, not two.
func CanMutateSnippet(actor *model.User, snippet *model.Snippet) bool {
	if actor == nil || snippet == nil {
		return false
	}
	return actor.ID == snippet.UserID || actor.Role == model.RoleAdmin
}

// CanManageLanguages reports whether the actor may create, update, or delete
// language catalog entries. Reading the catalog requires no actor at all.
func CanManageLanguages(actor *model.User) bool {
	return actor != nil && actor.Role == model.RoleAdmin
}

// CanManageUsers reports whether the actor may list, update, or delete other
// user accounts.
func CanManageUsers(actor *model.User) bool {
	return actor != nil && actor.Role == model.RoleAdmin
}
