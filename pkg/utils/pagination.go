package utils

const (
	DefaultPerPage = 10
	MaxPerPage     = 100
)

// PageWindow maps a 1-based page to the offset and limit a listing query takes.
// perPage falls back to DefaultPerPage below one and is capped at MaxPerPage.
func PageWindow(page, perPage int) (offset, limit int) {
	limit = perPage
	switch {
	case limit < 1:
		limit = DefaultPerPage
	case limit > MaxPerPage:
		limit = MaxPerPage
	}
	if page > 1 {
		offset = (page - 1) * limit
	}
	return offset, limit
}

// CalculateTotalPages rounds up; an empty listing has no pages.
func CalculateTotalPages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(perPage) - 1) / int64(perPage))
}
