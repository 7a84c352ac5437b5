package api

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 10
	maxPageSize     = 30
)

// pagination reads page/page_size query params per spec §4.5: 1-indexed
// page, page_size in [1,30], default 10. Out-of-range or unparseable
// values fall back to their defaults rather than erroring — the listing
// endpoints have no documented 400 case for pagination params.
func pagination(r *http.Request) (page, pageSize int) {
	page = 1
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v >= 1 {
		page = v
	}
	pageSize = defaultPageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v >= 1 && v <= maxPageSize {
		pageSize = v
	}
	return page, pageSize
}
