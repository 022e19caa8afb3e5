package domain

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Pagination is returned alongside every paged listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// Page normalises page/limit query values.
type Page struct {
	Number int
	Size   int
}

// NewPage clamps raw values into a usable page.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Paginate builds the pagination block for total matching rows.
func (p Page) Paginate(total int) Pagination {
	pages := 0
	if p.Size > 0 {
		pages = (total + p.Size - 1) / p.Size
	}
	return Pagination{Total: total, Page: p.Number, Limit: p.Size, Pages: pages}
}
