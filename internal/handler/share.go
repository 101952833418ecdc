package handler

import (
	"log/slog"
	"net/http"

	"helsejournal/internal/httputil"
	"helsejournal/internal/service"
)

// ShareHandler handles share link HTTP requests
type ShareHandler struct {
	shares *service.ShareService
	logger *slog.Logger
}

func NewShareHandler(shares *service.ShareService, logger *slog.Logger) *ShareHandler {
	return &ShareHandler{shares: shares, logger: logger}
}

type createShareBody struct {
	ExpiresInDays *int `json:"expires_in_days"`
	MaxViews      *int `json:"max_views"`
}

// Create issues a share link for a document
// POST /api/documents/{id}/share
func (h *ShareHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body createShareBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	link, err := h.shares.Create(r.Context(), r.PathValue("id"), service.CreateShareRequest{
		ExpiresInDays: body.ExpiresInDays,
		MaxViews:      body.MaxViews,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, link)
}

// Access streams a shared document without authentication
// GET /api/share/{token}
func (h *ShareHandler) Access(w http.ResponseWriter, r *http.Request) {
	doc, reader, err := h.shares.Access(r.Context(), r.PathValue("token"))
	if err != nil {
		handleError(w, err)
		return
	}
	defer reader.Close()

	serveDocument(w, r, doc, reader)
}

// Revoke deactivates a share link
// DELETE /api/documents/{id}/share/{shareID}
func (h *ShareHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	err := h.shares.Revoke(r.Context(), r.PathValue("id"), r.PathValue("shareID"))
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
