package shared

// Page size bounds applied by Filter.Normalized
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter holds the paging, ordering and search options of a list query.
// Repositories whitelist OrderBy themselves.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter lists the first page, newest first
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: DefaultPageSize, OrderBy: "created_at", OrderDir: "desc"}
}

// Normalized clamps Page to at least 1 and PageSize into [1, MaxPageSize],
// using DefaultPageSize when unset
func (f Filter) Normalized() Filter {
	f.Page = max(f.Page, 1)
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	f.PageSize = min(f.PageSize, MaxPageSize)
	return f
}

// Offset returns the number of rows to skip for the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated is one page of a list result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated wraps items with the page metadata for total rows
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	p := Paginated[T]{Items: items, Total: total, Page: page, PageSize: pageSize}
	if pageSize > 0 {
		p.TotalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return p
}
