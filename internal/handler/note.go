package handler

import (
	"log/slog"
	"net/http"

	"helsejournal/internal/httputil"
	"helsejournal/internal/service"
)

// NoteHandler handles note HTTP requests
type NoteHandler struct {
	notes  *service.NoteService
	logger *slog.Logger
}

func NewNoteHandler(notes *service.NoteService, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{notes: notes, logger: logger}
}

type createNoteBody struct {
	Content    string `json:"content"`
	PageNumber *int   `json:"page_number"`
}

// Create attaches a note to a document
// POST /api/documents/{id}/notes
func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createNoteBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.notes.Create(r.Context(), r.PathValue("id"), service.CreateNoteRequest{
		Content:    body.Content,
		PageNumber: body.PageNumber,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, note)
}

// List returns a document's notes, newest first
// GET /api/documents/{id}/notes
func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.List(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, notes)
}

// Delete removes a note from a document
// DELETE /api/documents/{id}/notes/{noteID}
func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.notes.Delete(r.Context(), r.PathValue("id"), r.PathValue("noteID"))
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
