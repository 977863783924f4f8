package persistence

import (
	"strings"

	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list query may be ordered by
type sortColumns struct {
	allowed  map[string]struct{}
	fallback string
}

func newSortColumns(fallback string, columns ...string) sortColumns {
	allowed := make(map[string]struct{}, len(columns)+1)
	allowed[fallback] = struct{}{}
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return sortColumns{allowed: allowed, fallback: fallback}
}

var employeeSortColumns = newSortColumns("created_at",
	"id", "updated_at", "first_name", "last_name", "cin", "position", "hired_at")

// column returns field when whitelisted and the fallback otherwise
func (s sortColumns) column(field string) string {
	field = strings.TrimSpace(field)
	if _, ok := s.allowed[field]; ok {
		return field
	}
	return s.fallback
}

// orderBy builds a quoted ORDER BY term. Anything but "asc" sorts descending.
func (s sortColumns) orderBy(field, dir string) clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Name: s.column(field)},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}
