package handler

import (
	"log/slog"
	"net/http"

	"helsejournal/internal/httputil"
	"helsejournal/internal/service"
)

// NotificationHandler handles notification HTTP requests
type NotificationHandler struct {
	notifications *service.NotificationService
	logger        *slog.Logger
}

func NewNotificationHandler(notifications *service.NotificationService, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: logger}
}

// List returns the user's notification feed, newest first
// GET /api/notifications?unread_only=true
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	unreadOnly, err := httputil.QueryBool(r, "unread_only")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	feed, err := h.notifications.List(r.Context(), httputil.GetUserID(r), unreadOnly != nil && *unreadOnly)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, feed)
}

// MarkRead flags one notification as read
// POST /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	err := h.notifications.MarkRead(r.Context(), httputil.GetUserID(r), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllRead flags the whole feed as read
// POST /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notifications.MarkAllRead(r.Context(), httputil.GetUserID(r)); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
