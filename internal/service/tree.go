package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"helsejournal/internal/domain"
)

const (
	unsortedYearName = "Unsorted"
	unsortedYearID   = "year:unsorted"
	otherGroupName   = "Other"
)

// documentLister loads the full non-archived document set for a tree
// snapshot.
type documentLister interface {
	ListAll(ctx context.Context) ([]domain.Document, error)
}

// TreeService projects the flat document collection into the
// year -> provider -> document hierarchy served to browsers.
type TreeService struct {
	docs documentLister
}

func NewTreeService(docs documentLister) *TreeService {
	return &TreeService{docs: docs}
}

// Tree returns a fresh projection of the current document set. The
// tree is derived on every call; nothing is persisted.
func (s *TreeService) Tree(ctx context.Context) ([]domain.TreeNode, error) {
	docs, err := s.docs.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents for tree: %w", err)
	}
	return BuildTree(docs), nil
}

// BuildTree groups documents by year, then by provider within each
// year. Every document appears exactly once as a leaf:
//
//   - documents without a year fall into a trailing "Unsorted" year
//   - within a year, documents group under the hospital name when set,
//     else under the doctor name, else under a shared "Other" bucket
//
// Year nodes are ordered newest first. Provider groups are ordered
// alphabetically (case-insensitive) with "Other" always last. Leaves
// are ordered by creation time, newest first, with the document ID as
// a tie-break so equal timestamps still produce a stable tree.
func BuildTree(docs []domain.Document) []domain.TreeNode {
	byYear := make(map[int][]domain.Document)
	var unsorted []domain.Document

	for _, doc := range docs {
		if doc.Year == nil {
			unsorted = append(unsorted, doc)
			continue
		}
		byYear[*doc.Year] = append(byYear[*doc.Year], doc)
	}

	years := make([]int, 0, len(byYear))
	for year := range byYear {
		years = append(years, year)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))

	tree := make([]domain.TreeNode, 0, len(years)+1)
	for _, year := range years {
		yearID := fmt.Sprintf("year:%d", year)
		tree = append(tree, domain.TreeNode{
			ID:       yearID,
			Name:     fmt.Sprintf("%d", year),
			Type:     domain.TreeNodeYear,
			Children: buildGroups(yearID, byYear[year]),
		})
	}

	if len(unsorted) > 0 {
		tree = append(tree, domain.TreeNode{
			ID:       unsortedYearID,
			Name:     unsortedYearName,
			Type:     domain.TreeNodeYear,
			Children: buildGroups(unsortedYearID, unsorted),
		})
	}

	return tree
}

// groupName picks the provider bucket for a document: hospital first,
// then doctor, then the shared fallback bucket.
func groupName(doc domain.Document) string {
	if doc.Hospital != nil && strings.TrimSpace(*doc.Hospital) != "" {
		return strings.TrimSpace(*doc.Hospital)
	}
	if doc.Doctor != nil && strings.TrimSpace(*doc.Doctor) != "" {
		return strings.TrimSpace(*doc.Doctor)
	}
	return otherGroupName
}

func buildGroups(yearID string, docs []domain.Document) []domain.TreeNode {
	byGroup := make(map[string][]domain.Document)
	display := make(map[string]string)

	for _, doc := range docs {
		name := groupName(doc)
		key := strings.ToLower(name)
		if _, seen := display[key]; !seen {
			// First spelling encountered wins for display.
			display[key] = name
		}
		byGroup[key] = append(byGroup[key], doc)
	}

	keys := make([]string, 0, len(byGroup))
	for key := range byGroup {
		keys = append(keys, key)
	}
	otherKey := strings.ToLower(otherGroupName)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == otherKey {
			return false
		}
		if keys[j] == otherKey {
			return true
		}
		return keys[i] < keys[j]
	})

	groups := make([]domain.TreeNode, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, domain.TreeNode{
			ID:       fmt.Sprintf("%s/group:%s", yearID, key),
			Name:     display[key],
			Type:     domain.TreeNodeGroup,
			Children: buildLeaves(byGroup[key]),
		})
	}
	return groups
}

func buildLeaves(docs []domain.Document) []domain.TreeNode {
	sorted := make([]domain.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})

	leaves := make([]domain.TreeNode, 0, len(sorted))
	for _, doc := range sorted {
		leaf := domain.TreeNode{
			ID:         "doc:" + doc.ID,
			Name:       doc.DisplayTitle(),
			Type:       domain.TreeNodeDocument,
			DocumentID: doc.ID,
		}
		if doc.Doctor != nil && strings.TrimSpace(*doc.Doctor) != "" {
			leaf.Doctor = strings.TrimSpace(*doc.Doctor)
		}
		leaves = append(leaves, leaf)
	}
	return leaves
}
