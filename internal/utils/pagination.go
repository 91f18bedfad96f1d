package utils

import (
	"strconv"

	"github.com/harentsoaR/hospital-api/internal/apperr"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a 1-based page request.
type Page struct {
	Page  int64
	Limit int64
}

// NewPage parses page and limit query values. Missing or non-positive values
// fall back to the defaults; limit is capped at MaxLimit.
func NewPage(page, limit string) Page {
	p, _ := strconv.ParseInt(page, 10, 64)
	if p <= 0 {
		p = DefaultPage
	}
	l, _ := strconv.ParseInt(limit, 10, 64)
	if l <= 0 {
		l = DefaultLimit
	}
	if l > MaxLimit {
		l = MaxLimit
	}
	return Page{Page: p, Limit: l}
}

func (p Page) Skip() int64 { return (p.Page - 1) * p.Limit }

type Meta struct {
	PerPage     int64 `json:"per_page"`
	CurrentPage int64 `json:"current_page"`
	LastPage    int64 `json:"last_page"`
	Total       int64 `json:"total"`
}

// NewMeta computes last_page = ceil(total/limit) and rejects pages past it.
// An empty result set (last_page 0) is never out of range.
func NewMeta(p Page, total int64) (*Meta, error) {
	lastPage := (total + p.Limit - 1) / p.Limit
	if p.Page > lastPage && lastPage > 0 {
		return nil, apperr.ErrPageOutOfRange
	}
	return &Meta{PerPage: p.Limit, CurrentPage: p.Page, LastPage: lastPage, Total: total}, nil
}
