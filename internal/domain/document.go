package domain

import "time"

// Document categories mirror the values accepted by the upload form.
const (
	CategoryLab          = "lab"
	CategoryPrescription = "prescription"
	CategoryReport       = "report"
	CategoryImaging      = "imaging"
	CategoryReferral     = "referral"
	CategoryOther        = "other"
)

// Document is the authoritative record of one uploaded PDF and its
// metadata. The extracted text lives on the row so the relational
// fallback search can reach it, but listings never load it.
type Document struct {
	ID               string     `json:"id"`
	Filename         string     `json:"filename"`
	OriginalFilename string     `json:"original_filename"`
	FileSize         int64      `json:"file_size"`
	FileHash         string     `json:"-"`
	Title            string     `json:"title"`
	Description      *string    `json:"description"`
	Year             *int       `json:"year"`
	Hospital         *string    `json:"hospital"`
	Doctor           *string    `json:"doctor"`
	DocumentDate     *time.Time `json:"document_date"`
	DocumentType     string     `json:"document_type,omitempty"`
	ExtractedText    string     `json:"-"`
	IsProcessed      bool       `json:"is_processed"`
	IsFavorite       bool       `json:"is_favorite"`
	IsArchived       bool       `json:"is_archived"`
	NoteCount        int        `json:"note_count"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DisplayTitle is what tree leaves and search results show: the title
// when set, otherwise the original filename.
func (d *Document) DisplayTitle() string {
	if d.Title != "" {
		return d.Title
	}
	return d.OriginalFilename
}

// ListFilter narrows document listings. Archived documents are always
// excluded; there is no filter to include them.
type ListFilter struct {
	Year     *int
	Hospital string
	Favorite *bool
	Skip     int
	Limit    int
}
