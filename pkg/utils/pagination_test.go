package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	cases := []struct {
		name          string
		page, perPage int
		offset, limit int
	}{
		{"first page", 1, 10, 0, 10},
		{"third page", 3, 20, 40, 20},
		{"page below one reads the first", 0, 10, 0, 10},
		{"missing per page", 2, 0, 10, 10},
		{"per page capped", 2, 500, 100, 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			offset, limit := PageWindow(tc.page, tc.perPage)
			assert.Equal(t, tc.offset, offset)
			assert.Equal(t, tc.limit, limit)
		})
	}
}

func TestCalculateTotalPages(t *testing.T) {
	assert.Equal(t, 0, CalculateTotalPages(0, 10))
	assert.Equal(t, 1, CalculateTotalPages(10, 10))
	assert.Equal(t, 2, CalculateTotalPages(11, 10))
	assert.Equal(t, 0, CalculateTotalPages(5, 0))
}

func TestQueryInt(t *testing.T) {
	query := url.Values{"page": {"3"}, "per_page": {"-2"}, "sort": {"new"}}

	assert.Equal(t, 3, QueryInt(query, "page", 1))
	assert.Equal(t, 10, QueryInt(query, "per_page", 10))
	assert.Equal(t, 1, QueryInt(query, "sort", 1))
	assert.Equal(t, 7, QueryInt(query, "missing", 7))
}
