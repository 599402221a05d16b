package domain

// ResultPage is one page of a ranked search result.
type ResultPage struct {
	Items      []Product `json:"items"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int       `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// HasNext reports whether another page follows this one.
func (p ResultPage) HasNext() bool {
	return p.Page < p.TotalPages
}
