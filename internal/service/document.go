package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"helsejournal/internal/domain"
	"helsejournal/internal/doctype"
	"helsejournal/internal/metrics"
)

const indexWriteTimeout = 10 * time.Second

var pdfMagic = []byte("%PDF")

// documentStore is the relational side of document CRUD.
type documentStore interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, filter domain.ListFilter) ([]domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
	ToggleFavorite(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}

// fileStore keeps the PDF bytes on disk under generated names.
type fileStore interface {
	GenerateFilename(originalName string) string
	Save(filename string, content []byte) error
	Open(filename string) (io.ReadSeekCloser, error)
	Path(filename string) (string, error)
	Remove(filename string) error
}

// textExtractor pulls searchable text out of a stored PDF.
type textExtractor interface {
	ExtractText(ctx context.Context, path string) (string, error)
}

// indexWriter mirrors document changes into the full-text index.
type indexWriter interface {
	IndexDocument(ctx context.Context, doc *domain.Document) error
	RemoveDocument(ctx context.Context, id string) error
}

// notificationWriter records an in-app alert for the uploading user.
type notificationWriter interface {
	Create(ctx context.Context, n *domain.Notification) error
}

// DocumentService owns the document lifecycle: upload, metadata edits,
// file streaming and deletion. Index writes are best-effort; the
// relational store is always updated first and never blocked on the
// index.
type DocumentService struct {
	store         documentStore
	files         fileStore
	extractor     textExtractor
	index         indexWriter
	notifications notificationWriter
	maxSize       int64
	logger        *slog.Logger
}

func NewDocumentService(store documentStore, files fileStore, extractor textExtractor, index indexWriter, notifications notificationWriter, maxSize int64, logger *slog.Logger) *DocumentService {
	return &DocumentService{
		store:         store,
		files:         files,
		extractor:     extractor,
		index:         index,
		notifications: notifications,
		maxSize:       maxSize,
		logger:        logger,
	}
}

// UploadRequest carries the file and the metadata supplied alongside it.
type UploadRequest struct {
	UserID       string
	Filename     string
	Content      []byte
	Title        string
	Description  *string
	Year         *int
	Hospital     *string
	Doctor       *string
	DocumentDate *time.Time
	DocumentType string
}

func (r UploadRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Filename, validation.Required),
		validation.Field(&r.Year, validation.Min(1900), validation.Max(2100)),
		validation.Field(&r.DocumentType, validation.By(validCategory)),
	)
}

func validCategory(value interface{}) error {
	id, _ := value.(string)
	if id == "" || doctype.Valid(id) {
		return nil
	}
	return fmt.Errorf("unknown document type %q", id)
}

// Upload stores a PDF and its metadata. The file is content-addressed
// by SHA-256; uploading the same bytes twice is rejected with a
// conflict naming the existing document. Text extraction failure does
// not fail the upload; the document is just marked unprocessed.
func (s *DocumentService) Upload(ctx context.Context, req UploadRequest) (*domain.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}
	if int64(len(req.Content)) > s.maxSize {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrValidation, s.maxSize)
	}
	if !bytes.HasPrefix(req.Content, pdfMagic) {
		return nil, fmt.Errorf("%w: only PDF files are accepted", domain.ErrValidation)
	}

	sum := sha256.Sum256(req.Content)
	hash := hex.EncodeToString(sum[:])

	storedName := s.files.GenerateFilename(req.Filename)
	if err := s.files.Save(storedName, req.Content); err != nil {
		return nil, fmt.Errorf("store file: %w", err)
	}

	text := s.extract(ctx, storedName)

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = req.Filename
	}
	docType := req.DocumentType
	if docType == "" {
		docType = domain.CategoryOther
	}

	doc := &domain.Document{
		Filename:         storedName,
		OriginalFilename: req.Filename,
		FileSize:         int64(len(req.Content)),
		FileHash:         hash,
		Title:            title,
		Description:      req.Description,
		Year:             req.Year,
		Hospital:         req.Hospital,
		Doctor:           req.Doctor,
		DocumentDate:     req.DocumentDate,
		DocumentType:     docType,
		ExtractedText:    text,
		IsProcessed:      text != "",
	}

	if err := s.store.Create(ctx, doc); err != nil {
		// The row was never written; don't leave the file behind.
		if removeErr := s.files.Remove(storedName); removeErr != nil {
			s.logger.Warn("remove orphaned upload", "filename", storedName, "error", removeErr)
		}
		return nil, err
	}

	s.indexAsync(ctx, doc)
	s.notifyUploaded(ctx, req.UserID, doc)
	return doc, nil
}

// notifyUploaded records an upload alert for the user. A failed insert
// is logged; the document itself is already stored.
func (s *DocumentService) notifyUploaded(ctx context.Context, userID string, doc *domain.Document) {
	if userID == "" {
		return
	}
	n := &domain.Notification{
		UserID:            userID,
		Title:             "New document uploaded",
		Message:           fmt.Sprintf("'%s' has been uploaded successfully", doc.Title),
		Type:              domain.NotificationSuccess,
		RelatedDocumentID: &doc.ID,
	}
	if err := s.notifications.Create(ctx, n); err != nil {
		s.logger.Warn("create upload notification", "document_id", doc.ID, "error", err)
	}
}

// extract runs text extraction on the stored file. Any failure is
// logged and swallowed; the caller treats empty text as unprocessed.
func (s *DocumentService) extract(ctx context.Context, storedName string) string {
	path, err := s.files.Path(storedName)
	if err != nil {
		s.logger.Warn("resolve file for extraction", "filename", storedName, "error", err)
		return ""
	}
	text, err := s.extractor.ExtractText(ctx, path)
	if err != nil {
		s.logger.Warn("text extraction failed", "filename", storedName, "error", err)
		return ""
	}
	return text
}

// indexAsync mirrors the document into the search index without
// blocking or failing the request.
func (s *DocumentService) indexAsync(ctx context.Context, doc *domain.Document) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexWriteTimeout)
		defer cancel()
		if err := s.index.IndexDocument(ctx, doc); err != nil {
			metrics.IndexWriteFailures.Inc()
			s.logger.Warn("index document", "document_id", doc.ID, "error", err)
		}
	}()
}

func (s *DocumentService) removeFromIndexAsync(ctx context.Context, id string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), indexWriteTimeout)
		defer cancel()
		if err := s.index.RemoveDocument(ctx, id); err != nil {
			metrics.IndexWriteFailures.Inc()
			s.logger.Warn("remove document from index", "document_id", id, "error", err)
		}
	}()
}

func (s *DocumentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.store.GetByID(ctx, id)
}

func (s *DocumentService) List(ctx context.Context, filter domain.ListFilter) ([]domain.Document, error) {
	return s.store.List(ctx, filter)
}

// UpdateRequest carries a partial metadata edit. Nil pointer fields
// are left unchanged. ClearYear moves the document back into the
// "Unsorted" branch of the tree.
type UpdateRequest struct {
	Title        *string
	Description  *string
	Year         *int
	ClearYear    bool
	Hospital     *string
	Doctor       *string
	DocumentDate *time.Time
	DocumentType *string
	IsArchived   *bool
}

func (r UpdateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Year, validation.Min(1900), validation.Max(2100)),
		validation.Field(&r.DocumentType, validation.By(func(v interface{}) error {
			if p, _ := v.(*string); p != nil {
				return validCategory(*p)
			}
			return nil
		})),
	)
}

// Update applies a metadata edit and re-indexes the document.
func (s *DocumentService) Update(ctx context.Context, id string, req UpdateRequest) (*domain.Document, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && strings.TrimSpace(*req.Title) != "" {
		doc.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		doc.Description = req.Description
	}
	if req.ClearYear {
		doc.Year = nil
	} else if req.Year != nil {
		doc.Year = req.Year
	}
	if req.Hospital != nil {
		doc.Hospital = req.Hospital
	}
	if req.Doctor != nil {
		doc.Doctor = req.Doctor
	}
	if req.DocumentDate != nil {
		doc.DocumentDate = req.DocumentDate
	}
	if req.DocumentType != nil && *req.DocumentType != "" {
		doc.DocumentType = *req.DocumentType
	}
	if req.IsArchived != nil {
		doc.IsArchived = *req.IsArchived
	}

	if err := s.store.Update(ctx, doc); err != nil {
		return nil, err
	}

	if doc.IsArchived {
		s.removeFromIndexAsync(ctx, doc.ID)
	} else {
		s.indexAsync(ctx, doc)
	}
	return doc, nil
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *DocumentService) ToggleFavorite(ctx context.Context, id string) (bool, error) {
	return s.store.ToggleFavorite(ctx, id)
}

// File opens the stored PDF for streaming along with its metadata.
func (s *DocumentService) File(ctx context.Context, id string) (*domain.Document, io.ReadSeekCloser, error) {
	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.files.Open(doc.Filename)
	if err != nil {
		return nil, nil, fmt.Errorf("open stored file: %w", err)
	}
	return doc, reader, nil
}

// Delete removes the document row, its file and its index entry. A
// failed file removal is logged, not returned; the row is already gone
// and the API result should say so.
func (s *DocumentService) Delete(ctx context.Context, id string) error {
	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	if err := s.files.Remove(doc.Filename); err != nil {
		s.logger.Warn("remove stored file", "filename", doc.Filename, "error", err)
	}
	s.removeFromIndexAsync(ctx, id)
	return nil
}
