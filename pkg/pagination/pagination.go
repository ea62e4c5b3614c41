// Package pagination carves bounded pages out of ordered result sets.
//
// A requested page below 1 is treated as 1, a page size above the configured
// maximum is clamped to it, and a page past the end yields the last page
// instead of an empty result.
package pagination

// Meta describes a page relative to the full result set.
type Meta struct {
	TotalCount   int64 `json:"total_count"`
	NextPage     int   `json:"next_page"`
	PreviousPage int   `json:"previous_page"`
}

// Window is a resolved page: where to slice and what to report.
type Window struct {
	Page   int
	Offset int
	Limit  int
	Meta   Meta
}

// Paginator holds the page-size policy.
type Paginator struct {
	defaultSize int
	maxSize     int
}

// New creates a Paginator. Non-positive bounds fall back to 1.
func New(defaultSize, maxSize int) *Paginator {
	if maxSize < 1 {
		maxSize = 1
	}
	if defaultSize < 1 {
		defaultSize = 1
	}
	if defaultSize > maxSize {
		defaultSize = maxSize
	}
	return &Paginator{defaultSize: defaultSize, maxSize: maxSize}
}

// DefaultSize is the page size used when the caller supplies none.
func (p *Paginator) DefaultSize() int { return p.defaultSize }

// MaxSize is the upper bound for any page.
func (p *Paginator) MaxSize() int { return p.maxSize }

// PageSize normalises a requested page size against the policy.
func (p *Paginator) PageSize(requested int) int {
	switch {
	case requested < 1:
		return p.defaultSize
	case requested > p.maxSize:
		return p.maxSize
	default:
		return requested
	}
}

// Window resolves the requested page against a result set of total items.
func (p *Paginator) Window(total int64, page, pageSize int) Window {
	size := p.PageSize(pageSize)
	if page < 1 {
		page = 1
	}
	if total < 0 {
		total = 0
	}

	// An empty set still has one (empty) first page.
	numPages := int((total + int64(size) - 1) / int64(size))
	if numPages < 1 {
		numPages = 1
	}

	next := page + 1
	switch {
	case page > numPages:
		page = numPages
		next = numPages
	case page == numPages:
		next = page
	}

	// previous_page follows next_page rather than the requested page.
	prev := next - 2
	if prev < 1 {
		prev = 1
	}

	return Window{
		Page:   page,
		Offset: (page - 1) * size,
		Limit:  size,
		Meta: Meta{
			TotalCount:   total,
			NextPage:     next,
			PreviousPage: prev,
		},
	}
}

// Paginate slices an in-memory ordered set.
func Paginate[T any](p *Paginator, items []T, page, pageSize int) ([]T, Meta) {
	w := p.Window(int64(len(items)), page, pageSize)
	start := w.Offset
	if start > len(items) {
		start = len(items)
	}
	end := start + w.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], w.Meta
}
