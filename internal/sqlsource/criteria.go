package sqlsource

import (
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-catalog-browser/catalog"
	"github.com/goliatone/go-catalog-browser/pagination"
)

// matching restricts a select to rows satisfying filters.
func matching(filters catalog.Filters) repository.SelectCriteria {
	f := filters.Normalized()
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		if f.Category != "" {
			q = q.Where("?TableAlias.category = ?", f.Category)
		}
		if f.Tag != "" {
			q = q.Where("?TableAlias.tags LIKE ? ESCAPE '\\'", "%"+tagSeparator+escapeLike(f.Tag)+tagSeparator+"%")
		}
		if f.Search != "" {
			pattern := "%" + escapeLike(f.Search) + "%"
			q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.
					Where("LOWER(?TableAlias.title) LIKE ? ESCAPE '\\'", pattern).
					WhereOr("LOWER(?TableAlias.description) LIKE ? ESCAPE '\\'", pattern)
			})
		}
		return q
	}
}

// newestFirst orders rows by last update, newest first.
func newestFirst() repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.OrderExpr("?TableAlias.updated_at DESC").OrderExpr("?TableAlias.id ASC")
	}
}

// paginate selects one page of pageSize rows.
func paginate(page, pageSize int) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(pageSize).Offset(pagination.Offset(page, pageSize))
	}
}

func limit(n int) repository.SelectCriteria {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Limit(n)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
