package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"helsejournal/internal/domain"
)

const shareTokenBytes = 24

type shareStore interface {
	Create(ctx context.Context, link *domain.ShareLink) error
	GetActiveByToken(ctx context.Context, token string) (*domain.ShareLink, error)
	IncrementViews(ctx context.Context, id string) (int, error)
	Deactivate(ctx context.Context, id string) error
	GetByID(ctx context.Context, id, documentID string) (*domain.ShareLink, error)
}

type sharedFileOpener interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

type fileOpener interface {
	Open(filename string) (io.ReadSeekCloser, error)
}

// txRunner executes a function inside a database transaction carried
// in the context.
type txRunner interface {
	ExecTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ShareService creates and redeems unauthenticated share links.
type ShareService struct {
	links shareStore
	docs  sharedFileOpener
	files fileOpener
	tx    txRunner
	now   func() time.Time
}

func NewShareService(links shareStore, docs sharedFileOpener, files fileOpener, tx txRunner) *ShareService {
	return &ShareService{
		links: links,
		docs:  docs,
		files: files,
		tx:    tx,
		now:   time.Now,
	}
}

type CreateShareRequest struct {
	ExpiresInDays *int
	MaxViews      *int
}

func (r CreateShareRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ExpiresInDays, validation.Min(1), validation.Max(365)),
		validation.Field(&r.MaxViews, validation.Min(1)),
	)
}

// Create issues a new share link for a document. The token is opaque
// and unguessable; expiry and view budget are both optional.
func (s *ShareService) Create(ctx context.Context, documentID string, req CreateShareRequest) (*domain.ShareLink, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrValidation, err)
	}

	if _, err := s.docs.GetByID(ctx, documentID); err != nil {
		return nil, err
	}

	token, err := newShareToken()
	if err != nil {
		return nil, fmt.Errorf("generate share token: %w", err)
	}

	link := &domain.ShareLink{
		DocumentID: documentID,
		Token:      token,
		MaxViews:   req.MaxViews,
		IsActive:   true,
	}
	if req.ExpiresInDays != nil {
		expires := s.now().Add(time.Duration(*req.ExpiresInDays) * 24 * time.Hour)
		link.ExpiresAt = &expires
	}

	if err := s.links.Create(ctx, link); err != nil {
		return nil, err
	}
	return link, nil
}

// Access redeems a share token: it checks expiry and the view budget,
// counts the view, and opens the shared file. An expired or exhausted
// link is deactivated and reported as gone, distinct from a token that
// never existed.
func (s *ShareService) Access(ctx context.Context, token string) (*domain.Document, io.ReadSeekCloser, error) {
	var (
		link *domain.ShareLink
		gone bool
	)

	// Check and count inside one transaction so two concurrent views
	// cannot both pass a view budget with one slot left. The
	// deactivation of a dead link must commit, so "gone" is carried
	// out of the transaction instead of returned as its error.
	err := s.tx.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		link, err = s.links.GetActiveByToken(ctx, token)
		if err != nil {
			return err
		}

		if link.Expired(s.now()) || link.Exhausted() {
			gone = true
			return s.links.Deactivate(ctx, link.ID)
		}

		_, err = s.links.IncrementViews(ctx, link.ID)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	if gone {
		return nil, nil, fmt.Errorf("share link no longer valid: %w", domain.ErrGone)
	}

	doc, err := s.docs.GetByID(ctx, link.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.files.Open(doc.Filename)
	if err != nil {
		return nil, nil, fmt.Errorf("open shared file: %w", err)
	}
	return doc, reader, nil
}

// Revoke deactivates a share link belonging to the given document.
func (s *ShareService) Revoke(ctx context.Context, documentID, shareID string) error {
	link, err := s.links.GetByID(ctx, shareID, documentID)
	if err != nil {
		return err
	}
	return s.links.Deactivate(ctx, link.ID)
}

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
