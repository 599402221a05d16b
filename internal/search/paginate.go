package search

// Page is one slice of a ranked sequence plus its totals.
type Page[T any] struct {
	Items      []T
	TotalCount int
	TotalPages int
}

// Paginate slices ranked into the requested page by pure index arithmetic.
// Callers validate page and pageSize; a start index past the end yields an
// empty page with correct totals, not an error.
func Paginate[T any](ranked []T, page, pageSize int) Page[T] {
	total := len(ranked)
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := (page - 1) * pageSize
	if start >= total {
		return Page[T]{Items: []T{}, TotalCount: total, TotalPages: totalPages}
	}
	end := min(start+pageSize, total)

	return Page[T]{Items: ranked[start:end], TotalCount: total, TotalPages: totalPages}
}
