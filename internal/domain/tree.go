package domain

// Tree node kinds.
const (
	TreeNodeYear     = "year"
	TreeNodeGroup    = "group"
	TreeNodeDocument = "document"
)

// TreeNode is one node of the year → hospital/doctor → document view.
// It is derived on every request and never persisted.
type TreeNode struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Children   []TreeNode `json:"children,omitempty"`
	DocumentID string     `json:"document_id,omitempty"`
	// Doctor is carried on document leaves for display when the
	// document grouped under its hospital.
	Doctor string `json:"doctor,omitempty"`
}
