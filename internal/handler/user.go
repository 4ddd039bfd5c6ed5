package handler

import (
	"net/http"

	"github.com/manterx/codesnip/internal/auth"
	"github.com/manterx/codesnip/internal/service"
)

// UserHandler exposes the admin user management endpoints. The service
// enforces that only admins get through; the handler just plumbs the actor.
type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// HandleList returns all accounts.
//
// HTTP: GET /api/users
func (h *UserHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	users, err := h.users.ListUsers(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// HandleUpdate changes a user's profile or role. Role changes reach the
// target on their next request, since the middleware re-reads the user row.
//
// HTTP: PATCH /api/users/{id}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var input service.UpdateUserInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.UpdateUser(r.Context(), actor, r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleDelete removes an account along with its snippets and bookmarks.
//
// HTTP: DELETE /api/users/{id}
func (h *UserHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.users.DeleteUser(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
