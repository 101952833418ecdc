package handler

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"helsejournal/internal/domain"
	"helsejournal/internal/httputil"
	"helsejournal/internal/service"
)

// DocumentHandler handles document HTTP requests
type DocumentHandler struct {
	documents *service.DocumentService
	search    *service.SearchService
	maxUpload int64
	logger    *slog.Logger
}

func NewDocumentHandler(documents *service.DocumentService, search *service.SearchService, maxUpload int64, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		search:    search,
		maxUpload: maxUpload,
		logger:    logger,
	}
}

// List returns document metadata filtered by query parameters
// GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseListFilter(r)
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	docs, err := h.documents.List(r.Context(), filter)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, docs)
}

func parseListFilter(r *http.Request) (domain.ListFilter, error) {
	var filter domain.ListFilter

	year, err := httputil.QueryInt(r, "year")
	if err != nil {
		return filter, err
	}
	favorite, err := httputil.QueryBool(r, "favorite")
	if err != nil {
		return filter, err
	}
	skip, err := httputil.QueryInt(r, "skip")
	if err != nil {
		return filter, err
	}
	limit, err := httputil.QueryInt(r, "limit")
	if err != nil {
		return filter, err
	}

	filter.Year = year
	filter.Hospital = r.URL.Query().Get("hospital")
	filter.Favorite = favorite
	if skip != nil {
		filter.Skip = *skip
	}
	filter.Limit = 100
	if limit != nil {
		filter.Limit = *limit
	}
	return filter, nil
}

// Upload stores a new PDF with its metadata
// POST /api/documents/upload (multipart/form-data)
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave headroom for the metadata fields next to the file.
	if err := r.ParseMultipartForm(h.maxUpload + 1<<20); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	content, err := readUpload(file, h.maxUpload)
	if err != nil {
		httputil.RespondError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}

	req := service.UploadRequest{
		UserID:       httputil.GetUserID(r),
		Filename:     header.Filename,
		Content:      content,
		Title:        r.FormValue("title"),
		Description:  formValuePtr(r, "description"),
		Hospital:     formValuePtr(r, "hospital"),
		Doctor:       formValuePtr(r, "doctor"),
		DocumentType: r.FormValue("document_type"),
	}

	if raw := r.FormValue("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "year must be an integer")
			return
		}
		req.Year = &year
	}
	if raw := r.FormValue("document_date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "document_date must be YYYY-MM-DD")
			return
		}
		req.DocumentDate = &date
	}

	doc, err := h.documents.Upload(r.Context(), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, doc)
}

// readUpload buffers the uploaded file, enforcing the size cap even
// when the client lies about Content-Length.
func readUpload(file multipart.File, maxSize int64) ([]byte, error) {
	content, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(content)) > maxSize {
		return nil, fmt.Errorf("file exceeds the %d byte limit", maxSize)
	}
	return content, nil
}

func formValuePtr(r *http.Request, name string) *string {
	value := strings.TrimSpace(r.FormValue(name))
	if value == "" {
		return nil
	}
	return &value
}

// Get returns one document with its metadata
// GET /api/documents/{id}
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

type updateDocumentBody struct {
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Year         *int    `json:"year"`
	ClearYear    bool    `json:"clear_year"`
	Hospital     *string `json:"hospital"`
	Doctor       *string `json:"doctor"`
	DocumentDate *string `json:"document_date"`
	DocumentType *string `json:"document_type"`
	IsArchived   *bool   `json:"is_archived"`
}

// Update edits document metadata
// PUT /api/documents/{id}
func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	var body updateDocumentBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req := service.UpdateRequest{
		Title:        body.Title,
		Description:  body.Description,
		Year:         body.Year,
		ClearYear:    body.ClearYear,
		Hospital:     body.Hospital,
		Doctor:       body.Doctor,
		DocumentType: body.DocumentType,
		IsArchived:   body.IsArchived,
	}
	if body.DocumentDate != nil {
		date, err := time.Parse("2006-01-02", *body.DocumentDate)
		if err != nil {
			httputil.RespondError(w, http.StatusBadRequest, "document_date must be YYYY-MM-DD")
			return
		}
		req.DocumentDate = &date
	}

	doc, err := h.documents.Update(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, doc)
}

// Delete removes a document, its file and its notes
// DELETE /api/documents/{id}
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.documents.Delete(r.Context(), r.PathValue("id")); err != nil {
		handleError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite flips the favorite flag
// POST /api/documents/{id}/favorite
func (h *DocumentHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	favorite, err := h.documents.ToggleFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, map[string]bool{"is_favorite": favorite})
}

// View streams the stored PDF inline
// GET /api/documents/{id}/view
func (h *DocumentHandler) View(w http.ResponseWriter, r *http.Request) {
	doc, reader, err := h.documents.File(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, err)
		return
	}
	defer reader.Close()

	serveDocument(w, r, doc, reader)
}

// serveDocument streams a PDF inline with range support.
func serveDocument(w http.ResponseWriter, r *http.Request, doc *domain.Document, reader io.ReadSeeker) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", doc.OriginalFilename))
	http.ServeContent(w, r, doc.OriginalFilename, doc.UpdatedAt, reader)
}

// Search runs a full-text query over the document collection
// GET /api/documents/search
func (h *DocumentHandler) Search(w http.ResponseWriter, r *http.Request) {
	year, err := httputil.QueryInt(r, "year")
	if err != nil {
		httputil.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	filters := domain.SearchFilters{
		Year:     year,
		Hospital: r.URL.Query().Get("hospital"),
	}

	results, err := h.search.Search(r.Context(), r.URL.Query().Get("q"), filters)
	if err != nil {
		handleError(w, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, results)
}
