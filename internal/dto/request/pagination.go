package request

import (
	"net/url"

	"cinema-reservation/pkg/utils"
)

// PaginatedRequest selects one page of the caller's bookings, newest first.
type PaginatedRequest struct {
	Page    int `json:"page" validate:"min=1"`
	PerPage int `json:"per_page" validate:"min=1,max=100"`
}

// PaginationFromQuery reads ?page=&per_page=, defaulting missing or malformed values.
func PaginationFromQuery(query url.Values) *PaginatedRequest {
	return &PaginatedRequest{
		Page:    utils.QueryInt(query, "page", 1),
		PerPage: utils.QueryInt(query, "per_page", utils.DefaultPerPage),
	}
}

func (p PaginatedRequest) Offset() int {
	offset, _ := utils.PageWindow(p.Page, p.PerPage)
	return offset
}

func (p PaginatedRequest) Limit() int {
	_, limit := utils.PageWindow(p.Page, p.PerPage)
	return limit
}
