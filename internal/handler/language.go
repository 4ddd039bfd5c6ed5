package handler

import (
	"net/http"

	"github.com/manterx/codesnip/internal/auth"
	"github.com/manterx/codesnip/internal/service"
)

// LanguageHandler manages the language catalog endpoints. Reads are public;
// the service rejects mutations from non-admin actors.
type LanguageHandler struct {
	languages *service.LanguageService
}

func NewLanguageHandler(languages *service.LanguageService) *LanguageHandler {
	return &LanguageHandler{languages: languages}
}

// HandleList returns the catalog ordered by name.
//
// HTTP: GET /api/languages
func (h *LanguageHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	langs, err := h.languages.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, langs)
}

// HandleGet returns one catalog entry.
//
// HTTP: GET /api/languages/{id}
func (h *LanguageHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	lang, err := h.languages.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lang)
}

// HandleCreate adds a catalog entry. Admin only.
//
// HTTP: POST /api/languages
func (h *LanguageHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var input service.CreateLanguageInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	lang, err := h.languages.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, lang)
}

// HandleUpdate renames or recolors a catalog entry. Admin only.
//
// HTTP: PATCH /api/languages/{id}
func (h *LanguageHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var input service.UpdateLanguageInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	lang, err := h.languages.Update(r.Context(), actor, r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, lang)
}

// HandleDelete removes a catalog entry; snippets tagged with it survive,
// untagged. Admin only.
//
// HTTP: DELETE /api/languages/{id}
func (h *LanguageHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.languages.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
