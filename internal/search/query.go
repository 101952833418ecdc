package search

import (
	"fmt"
	"strings"

	"helsejournal/internal/domain"
)

// buildQuery assembles the FT.SEARCH query string: structured filters
// first, then the free-text part over the indexed text fields.
func buildQuery(query string, filters domain.SearchFilters) string {
	var parts []string

	if filters.Year != nil {
		parts = append(parts, fmt.Sprintf("@year:[%d %d]", *filters.Year, *filters.Year))
	}
	if filters.Hospital != "" {
		parts = append(parts, fmt.Sprintf("@hospital_tag:{%s}", EscapeQuery(strings.ToLower(filters.Hospital))))
	}

	parts = append(parts, fmt.Sprintf("@title|hospital|doctor|content:(%s)", EscapeQuery(query)))

	return strings.Join(parts, " ")
}

// EscapeQuery neutralizes RediSearch query syntax in user input.
func EscapeQuery(s string) string {
	return queryEscaper.Replace(s)
}

var queryEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	`"`, `\"`,
	`@`, `\@`,
	`{`, `\{`,
	`}`, `\}`,
	`(`, `\(`,
	`)`, `\)`,
	`|`, `\|`,
	`-`, `\-`,
	`~`, `\~`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`:`, `\:`,
)
