package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helsejournal/internal/domain"
)

func strptr(s string) *string { return &s }
func intptr(n int) *int       { return &n }

func testDoc(id string, year *int, hospital, doctor *string, created time.Time) domain.Document {
	return domain.Document{
		ID:               id,
		OriginalFilename: id + ".pdf",
		Title:            "doc " + id,
		Year:             year,
		Hospital:         hospital,
		Doctor:           doctor,
		CreatedAt:        created,
	}
}

// countLeaves walks the tree and collects every document leaf.
func countLeaves(nodes []domain.TreeNode) []domain.TreeNode {
	var leaves []domain.TreeNode
	for _, node := range nodes {
		if node.Type == domain.TreeNodeDocument {
			leaves = append(leaves, node)
		}
		leaves = append(leaves, countLeaves(node.Children)...)
	}
	return leaves
}

func TestBuildTreeEmpty(t *testing.T) {
	tree := BuildTree(nil)
	assert.Empty(t, tree)
}

func TestBuildTreeEveryDocumentAppearsOnce(t *testing.T) {
	now := time.Now()
	docs := []domain.Document{
		testDoc("a", intptr(2023), strptr("Oslo Clinic"), nil, now),
		testDoc("b", intptr(2023), nil, strptr("Dr. Lund"), now),
		testDoc("c", intptr(2022), nil, nil, now),
		testDoc("d", nil, strptr("Bergen Hospital"), nil, now),
	}

	tree := BuildTree(docs)
	leaves := countLeaves(tree)
	require.Len(t, leaves, len(docs))

	seen := make(map[string]bool)
	for _, leaf := range leaves {
		assert.False(t, seen[leaf.DocumentID], "document %s appears twice", leaf.DocumentID)
		seen[leaf.DocumentID] = true
	}
	for _, doc := range docs {
		assert.True(t, seen[doc.ID], "document %s missing from tree", doc.ID)
	}
}

func TestBuildTreeYearOrdering(t *testing.T) {
	now := time.Now()
	docs := []domain.Document{
		testDoc("a", intptr(2021), strptr("X"), nil, now),
		testDoc("b", intptr(2023), strptr("X"), nil, now),
		testDoc("c", nil, nil, nil, now),
		testDoc("d", intptr(2022), strptr("X"), nil, now),
	}

	tree := BuildTree(docs)
	require.Len(t, tree, 4)

	assert.Equal(t, "2023", tree[0].Name)
	assert.Equal(t, "2022", tree[1].Name)
	assert.Equal(t, "2021", tree[2].Name)
	// Documents without a year always trail the real years.
	assert.Equal(t, "Unsorted", tree[3].Name)
	assert.Equal(t, "year:unsorted", tree[3].ID)
}

func TestBuildTreeGroupsByHospitalThenDoctor(t *testing.T) {
	now := time.Now()
	docs := []domain.Document{
		testDoc("a", intptr(2023), strptr("Oslo Clinic"), strptr("Dr. Berg"), now),
		testDoc("b", intptr(2023), nil, strptr("Dr. Lund"), now),
		testDoc("c", intptr(2023), nil, nil, now),
	}

	tree := BuildTree(docs)
	require.Len(t, tree, 1)
	groups := tree[0].Children
	require.Len(t, groups, 3)

	// Alphabetical, with the fallback bucket last.
	assert.Equal(t, "Dr. Lund", groups[0].Name)
	assert.Equal(t, "Oslo Clinic", groups[1].Name)
	assert.Equal(t, "Other", groups[2].Name)

	// A document that has both keeps the doctor as a leaf attribute.
	require.Len(t, groups[1].Children, 1)
	assert.Equal(t, "Dr. Berg", groups[1].Children[0].Doctor)
}

func TestBuildTreeGroupNamesCaseInsensitive(t *testing.T) {
	now := time.Now()
	docs := []domain.Document{
		testDoc("a", intptr(2023), strptr("Oslo Clinic"), nil, now),
		testDoc("b", intptr(2023), strptr("oslo clinic"), nil, now.Add(time.Minute)),
	}

	tree := BuildTree(docs)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Children, 1, "spelling variants must merge into one group")

	group := tree[0].Children[0]
	assert.Equal(t, "Oslo Clinic", group.Name, "first spelling encountered wins")
	assert.Len(t, group.Children, 2)
}

func TestBuildTreeLeafOrdering(t *testing.T) {
	base := time.Date(2023, 5, 1, 12, 0, 0, 0, time.UTC)
	docs := []domain.Document{
		testDoc("b", intptr(2023), strptr("X"), nil, base),
		testDoc("a", intptr(2023), strptr("X"), nil, base),
		testDoc("c", intptr(2023), strptr("X"), nil, base.Add(time.Hour)),
	}

	tree := BuildTree(docs)
	leaves := tree[0].Children[0].Children
	require.Len(t, leaves, 3)

	// Newest first, equal timestamps break on document ID.
	assert.Equal(t, "c", leaves[0].DocumentID)
	assert.Equal(t, "a", leaves[1].DocumentID)
	assert.Equal(t, "b", leaves[2].DocumentID)
}

func TestBuildTreeNodeIDs(t *testing.T) {
	now := time.Now()
	docs := []domain.Document{
		testDoc("doc-1", intptr(2023), strptr("Oslo Clinic"), nil, now),
	}

	tree := BuildTree(docs)
	require.Len(t, tree, 1)
	assert.Equal(t, "year:2023", tree[0].ID)

	group := tree[0].Children[0]
	assert.Equal(t, "year:2023/group:oslo clinic", group.ID)

	leaf := group.Children[0]
	assert.Equal(t, "doc:doc-1", leaf.ID)
}

func TestBuildTreeUnsortedGetsGroups(t *testing.T) {
	now := time.Now()
	docs := []domain.Document{
		testDoc("a", nil, strptr("Bergen Hospital"), nil, now),
		testDoc("b", nil, nil, nil, now),
	}

	tree := BuildTree(docs)
	require.Len(t, tree, 1)
	require.Equal(t, "Unsorted", tree[0].Name)

	groups := tree[0].Children
	require.Len(t, groups, 2)
	assert.Equal(t, "Bergen Hospital", groups[0].Name)
	assert.Equal(t, "Other", groups[1].Name)
	assert.Equal(t, "year:unsorted/group:other", groups[1].ID)
}
