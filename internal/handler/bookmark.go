package handler

import (
	"net/http"

	"github.com/manterx/codesnip/internal/auth"
	"github.com/manterx/codesnip/internal/service"
)

// BookmarkHandler exposes the bookmark toggle and the actor's bookmark
// list. Both require authentication.
type BookmarkHandler struct {
	bookmarks *service.BookmarkService
}

func NewBookmarkHandler(bookmarks *service.BookmarkService) *BookmarkHandler {
	return &BookmarkHandler{bookmarks: bookmarks}
}

// HandleToggle flips the bookmark state for the actor and snippet, and
// returns the resulting state: {"bookmarked": true|false}.
//
// HTTP: POST /api/bookmarks/{snippetId}
func (h *BookmarkHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	result, err := h.bookmarks.Toggle(r.Context(), actor, r.PathValue("snippetId"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleList returns the actor's bookmarks newest-first, snippets included.
//
// HTTP: GET /api/bookmarks
func (h *BookmarkHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	bookmarks, err := h.bookmarks.ListForUser(r.Context(), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarks)
}
