package supabase

import (
	"strings"

	"ideas-backend/internal/domain/idea"

	"github.com/supabase-community/postgrest-go"
)

var newestFirst = &postgrest.OrderOpts{Ascending: false}

// applyListFilter adds the search and tag filters shared by the list queries.
func applyListFilter(q *postgrest.FilterBuilder, filter idea.ListFilter) *postgrest.FilterBuilder {
	if filter.Search != "" {
		q = q.Or(searchExpression(filter.Search), "")
	}
	if len(filter.Tags) > 0 {
		q = q.Contains(idea.ColumnTags, filter.Tags)
	}
	return q.Order(idea.ColumnCreatedAt, newestFirst)
}

// searchExpression builds a case-insensitive substring match on name OR description.
// The pattern is double quoted so commas and parentheses in the term stay literal.
func searchExpression(term string) string {
	pattern := quoteFilterValue("%" + term + "%")
	return idea.ColumnName + ".ilike." + pattern + "," + idea.ColumnDescription + ".ilike." + pattern
}

func quoteFilterValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
