package query

// PageRef points at an adjacent page.
type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Pagination describes the pages around the current window. Absent neighbours
// are nil and omitted from JSON.
type Pagination struct {
	Next     *PageRef `json:"next,omitempty"`
	Previous *PageRef `json:"previous,omitempty"`
}

// Paginate compares the window with the number of matching documents.
func Paginate(w Window, total int) Pagination {
	var p Pagination
	if w.EndIndex < total {
		p.Next = &PageRef{Page: w.Page + 1, Limit: w.Limit}
	}
	if w.StartIndex > 0 {
		p.Previous = &PageRef{Page: w.Page - 1, Limit: w.Limit}
	}
	return p
}
