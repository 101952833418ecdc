package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"helsejournal/internal/doctype"
	"helsejournal/internal/httputil"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// MetaHandler serves health, build info and the category registry.
type MetaHandler struct {
	db      pinger
	index   pinger
	version string
	logger  *slog.Logger
}

func NewMetaHandler(db, index pinger, version string, logger *slog.Logger) *MetaHandler {
	return &MetaHandler{db: db, index: index, version: version, logger: logger}
}

// Health reports dependency status. A down search index degrades the
// status but the service stays up: search falls back to the database.
// GET /health
func (h *MetaHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	body := map[string]string{
		"status":   "ok",
		"database": "ok",
		"search":   "ok",
	}

	if err := h.db.Ping(ctx); err != nil {
		status = http.StatusServiceUnavailable
		body["status"] = "unhealthy"
		body["database"] = "unreachable"
	}
	if err := h.index.Ping(ctx); err != nil {
		body["search"] = "degraded"
		if body["status"] == "ok" {
			body["status"] = "degraded"
		}
	}

	httputil.RespondJSON(w, status, body)
}

// features advertises what this deployment serves, so clients can
// enable UI affordances without probing each endpoint.
var features = []string{
	"dark_mode",
	"multi_language",
	"tree_structure",
	"pdf_viewer",
	"full_text_search",
	"upload",
	"authentication",
	"notes",
	"notifications",
	"sharing",
	"backup",
	"responsive",
}

var languages = []string{"en", "no"}

// Info returns service identity, version and capabilities
// GET /api/info
func (h *MetaHandler) Info(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"name":      "helsejournal",
		"version":   h.version,
		"features":  features,
		"languages": languages,
	})
}

// Categories returns the document category registry
// GET /api/categories
func (h *MetaHandler) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := doctype.Categories()
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{"categories": cats})
}
