package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Params struct {
	Page  int
	Limit int
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// FromQuery reads page and limit, falling back to defaults for missing or
// out-of-range values instead of failing the request.
func FromQuery(q url.Values) Params {
	p := Params{Page: 1, Limit: DefaultLimit}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n >= 1 {
		p.Limit = min(n, MaxLimit)
	}
	return p
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Params) Meta(total int) Meta {
	pages := 0
	if p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}
