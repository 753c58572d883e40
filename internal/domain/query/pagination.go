package query

import "github.com/zatekoja/tuitioncentres/backend/internal/domain/entities"

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Window is the slice of the ordered result set an executor should return
type Window struct {
	Offset int
	Limit  int
}

// NewWindow returns the window for a 1-based page, ahead of the count. Inputs
// are expected to be validated; non-positive values fall back to the first page
// of DefaultLimit.
func NewWindow(page, limit int) Window {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return Paginate(0, page, limit).Window()
}

// Page is pagination metadata derived from a filtered total
type Page struct {
	Page       int
	Limit      int
	Total      int
	TotalPages int
	Skip       int
}

// Paginate computes pagination metadata. page and limit are echoed as given, so
// a page past the end stays visible to the caller. TotalPages is 0 when total is 0.
func Paginate(total, page, limit int) Page {
	p := Page{Page: page, Limit: limit, Total: total}
	if limit > 0 && total > 0 {
		p.TotalPages = (total + limit - 1) / limit
	}
	if page > 1 && limit > 0 {
		p.Skip = (page - 1) * limit
	}
	return p
}

// Window is the executor window for this page
func (p Page) Window() Window {
	return Window{Offset: p.Skip, Limit: p.Limit}
}

// Metadata returns the public pagination block
func (p Page) Metadata() entities.Pagination {
	return entities.Pagination{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      p.Total,
		TotalPages: p.TotalPages,
	}
}
