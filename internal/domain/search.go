package domain

// SearchFilters are the structured constraints attached to a free-text
// search. Zero values mean "no constraint".
type SearchFilters struct {
	Year     *int
	Hospital string
}

// IndexHit is one ranked candidate returned by the search index.
// The score is opaque: it is monotonic within a single query and
// carries no meaning across queries or index versions.
type IndexHit struct {
	DocumentID string
	Score      float64
	Snippet    string
}

// SearchResult is a display-ready search row: an index hit joined with
// the authoritative document metadata.
type SearchResult struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	OriginalFilename string  `json:"original_filename"`
	Year             *int    `json:"year"`
	Hospital         *string `json:"hospital"`
	Doctor           *string `json:"doctor"`
	Highlight        string  `json:"highlight,omitempty"`
	Score            float64 `json:"score"`
}
