package repo

import (
	"fmt"
	"strings"
)

// FilterAll is the sentinel meaning "do not filter on this dimension".
const FilterAll = "all"

// ListFilter carries the optional list/search parameters. Zero values mean
// "no filter"; Limit and Offset are expected to be normalized by the caller.
type ListFilter struct {
	Search   string
	Status   string
	Priority string
	Limit    int
	Offset   int
}

const ticketColumns = "id, title, description, priority, status, created_at, updated_at"

// buildListQuery assembles the filtered, ordered, paginated SELECT. Filters
// combine with AND on top of an always-true base predicate; the search term
// matches title or description case-insensitively as a substring.
func buildListQuery(f ListFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT " + ticketColumns + " FROM tickets WHERE 1=1")

	var args []any
	n := 1

	if f.Search != "" {
		fmt.Fprintf(&sb, " AND (LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", n, n)
		args = append(args, "%"+strings.ToLower(f.Search)+"%")
		n++
	}
	if f.Status != "" && f.Status != FilterAll {
		fmt.Fprintf(&sb, " AND status = $%d", n)
		args = append(args, f.Status)
		n++
	}
	if f.Priority != "" && f.Priority != FilterAll {
		fmt.Fprintf(&sb, " AND priority = $%d", n)
		args = append(args, f.Priority)
		n++
	}

	fmt.Fprintf(&sb, " ORDER BY created_at DESC LIMIT $%d OFFSET $%d", n, n+1)
	args = append(args, f.Limit, f.Offset)

	return sb.String(), args
}
