package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/manterx/codesnip/internal/apperror"
	"github.com/manterx/codesnip/internal/auth"
	"github.com/manterx/codesnip/internal/executor"
	"github.com/manterx/codesnip/internal/service"
)

// SnippetHandler manages snippet CRUD plus the sandboxed run endpoint.
// Reads are public; mutations go through the service's permission checks
// with the actor the middleware loaded.
type SnippetHandler struct {
	snippets *service.SnippetService
	exec     executor.Executor
	logger   *slog.Logger
}

// NewSnippetHandler creates a SnippetHandler. exec may be nil when no
// sandbox is configured; HandleRun then reports the feature as unavailable.
func NewSnippetHandler(snippets *service.SnippetService, exec executor.Executor, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{
		snippets: snippets,
		exec:     exec,
		logger:   logger,
	}
}

// HandleList returns snippets newest-first.
//
// HTTP: GET /api/snippets?limit=20&offset=0
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	snippets, err := h.snippets.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippets)
}

// HandleGet returns one snippet with its owner and language.
//
// HTTP: GET /api/snippets/{id}
func (h *SnippetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleCreate publishes a new snippet owned by the authenticated actor.
//
// HTTP: POST /api/snippets
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var input service.CreateSnippetInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.snippets.Create(r.Context(), actor, input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// HandleUpdate applies a partial update to a snippet.
//
// HTTP: PATCH /api/snippets/{id}
func (h *SnippetHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	var input service.UpdateSnippetInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, err)
		return
	}

	snippet, err := h.snippets.Update(r.Context(), actor, r.PathValue("id"), input)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet.
//
// HTTP: DELETE /api/snippets/{id}
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.snippets.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRun executes a snippet's code in the sandbox under its catalog
// language. Requires authentication but no particular role: anyone who can
// read a snippet can try running it.
//
// HTTP: POST /api/snippets/{id}/run
func (h *SnippetHandler) HandleRun(w http.ResponseWriter, r *http.Request) {
	if h.exec == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: "code execution is not configured",
		})
		return
	}

	if _, ok := auth.ActorFromContext(r.Context()); !ok {
		writeUnauthorized(w)
		return
	}

	snippet, err := h.snippets.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if snippet.Language == nil {
		writeError(w, apperror.ValidationFailed("language", "snippet has no language, so it cannot be run"))
		return
	}

	result, err := h.exec.Execute(r.Context(), executor.Request{
		Language: snippet.Language.Name,
		Code:     snippet.CodeContent,
	})
	if err != nil {
		h.logger.Error("snippet execution failed",
			slog.String("id", snippet.ID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func writeUnauthorized(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnauthorized, ErrorResponse{
		Error:   "unauthorized",
		Message: "authentication required",
	})
}
