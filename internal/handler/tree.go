package handler

import (
	"log/slog"
	"net/http"

	"helsejournal/internal/httputil"
	"helsejournal/internal/service"
)

// TreeHandler handles HTTP requests for the document tree
type TreeHandler struct {
	tree   *service.TreeService
	logger *slog.Logger
}

func NewTreeHandler(tree *service.TreeService, logger *slog.Logger) *TreeHandler {
	return &TreeHandler{tree: tree, logger: logger}
}

// Get returns the year → provider → document hierarchy
// GET /api/documents/tree
func (h *TreeHandler) Get(w http.ResponseWriter, r *http.Request) {
	tree, err := h.tree.Tree(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, tree)
}
