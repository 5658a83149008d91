package domain

// DefaultPageLimit is the page size used when none is specified.
const DefaultPageLimit = 20

// MaxPageLimit is the largest page size a caller may request.
const MaxPageLimit = 100

// PageRequest holds 1-based page/limit pagination parameters.
type PageRequest struct {
	Page  int
	Limit int
}

// NewPageRequest applies defaults for absent (nil) parameters.
func NewPageRequest(page, limit *int) PageRequest {
	p := PageRequest{Page: 1, Limit: DefaultPageLimit}
	if page != nil {
		p.Page = *page
	}
	if limit != nil {
		p.Limit = *limit
	}
	return p
}

// Valid reports whether page ≥ 1 and 1 ≤ limit ≤ MaxPageLimit.
func (p PageRequest) Valid() bool {
	return p.Page >= 1 && p.Limit >= 1 && p.Limit <= MaxPageLimit
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Pagination is the metadata returned alongside a page of results.
type Pagination struct {
	CurrentPage int   `json:"current_page"`
	Limit       int   `json:"limit"`
	TotalRows   int64 `json:"total_rows"`
	TotalPages  int64 `json:"total_pages"`
}

// NewPagination computes total pages as ceil(total/limit).
func NewPagination(p PageRequest, total int64) Pagination {
	pages := int64(0)
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Pagination{
		CurrentPage: p.Page,
		Limit:       p.Limit,
		TotalRows:   total,
		TotalPages:  pages,
	}
}
