package service

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"helsejournal/internal/domain"
)

type noteStore interface {
	Create(ctx context.Context, note *domain.Note) error
	ListByDocument(ctx context.Context, documentID string) ([]domain.Note, error)
	Delete(ctx context.Context, id, documentID string) error
}

type documentGetter interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// NoteService manages per-document annotations.
type NoteService struct {
	notes noteStore
	docs  documentGetter
}

func NewNoteService(notes noteStore, docs documentGetter) *NoteService {
	return &NoteService{notes: notes, docs: docs}
}

type CreateNoteRequest struct {
	Content    string
	PageNumber *int
}

func (r CreateNoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Content, validation.Required, validation.Length(1, 10000)),
		validation.Field(&r.PageNumber, validation.Min(1)),
	)
}

// Create attaches a note to a document.
func (s *NoteService) Create(ctx context.Context, documentID string, req CreateNoteRequest) (*domain.Note, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	// Surface a clean not-found before hitting the foreign key.
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	note := &domain.Note{
		DocumentID: documentID,
		Content:    req.Content,
		PageNumber: req.PageNumber,
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

// List returns a document's notes, newest first.
func (s *NoteService) List(ctx context.Context, documentID string) ([]domain.Note, error) {
	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}
	return s.notes.ListByDocument(ctx, documentID)
}

// Delete removes a note. The document ID scopes the delete so a note
// can only be removed through its own document.
func (s *NoteService) Delete(ctx context.Context, documentID, noteID string) error {
	return s.notes.Delete(ctx, noteID, documentID)
}
