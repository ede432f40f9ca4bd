package feed

import "github.com/yatube/backend/internal/models"

// PageSize is the fixed number of posts per page. It is deliberately not
// caller-adjustable.
const PageSize = 10

// Page is one fixed-size window of an ordered post listing.
type Page struct {
	Items  []models.Post `json:"items"`
	Number int           `json:"page"`
	Total  int64         `json:"total"`
	Pages  int           `json:"pages"`
}

// window converts a 1-based page index into an offset. Page indexes below 1
// are treated as page 1; pages past the end simply produce an offset beyond
// the result set and come back empty.
func window(page int) (number, offset int) {
	if page < 1 {
		page = 1
	}
	return page, (page - 1) * PageSize
}

// pageCount returns the number of pages needed for total items. An empty
// listing still has one (empty) page.
func pageCount(total int64) int {
	if total <= 0 {
		return 1
	}
	return int((total + PageSize - 1) / PageSize)
}
