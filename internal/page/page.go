// Package page holds the zero-based paging request read from query strings
// and the page envelope returned by list endpoints.
package page

import (
	"math"
	"net/url"
	"strconv"
)

const (
	// DefaultSize is used when size is missing or out of range.
	DefaultSize = 20
	// MaxSize is the largest size a client may ask for.
	MaxSize = 100
)

// Request is a zero-based page request.
type Request struct {
	Number int
	Size   int
}

// Offset returns the number of rows to skip.
func (r Request) Offset() int {
	return r.Number * r.Size
}

// FromQuery reads page and size from a query string, falling back to
// page 0 and DefaultSize for missing or out-of-range values. A page whose
// offset would not fit in an int32 also falls back to page 0.
func FromQuery(q url.Values) Request {
	size, err := strconv.Atoi(q.Get("size"))
	if err != nil || size <= 0 || size > MaxSize {
		size = DefaultSize
	}
	number, err := strconv.Atoi(q.Get("page"))
	if err != nil || number < 0 || number > math.MaxInt32/size {
		number = 0
	}
	return Request{Number: number, Size: size}
}

// Pageable echoes the request that produced a page.
type Pageable struct {
	PageNumber int `json:"pageNumber"`
	PageSize   int `json:"pageSize"`
	Offset     int `json:"offset"`
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Content       []T      `json:"content"`
	TotalElements int      `json:"totalElements"`
	TotalPages    int      `json:"totalPages"`
	Pageable      Pageable `json:"pageable"`
}

// New builds a page; a nil content slice is rendered as an empty list.
func New[T any](content []T, total int, req Request) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if req.Size > 0 {
		totalPages = (total + req.Size - 1) / req.Size
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Pageable: Pageable{
			PageNumber: req.Number,
			PageSize:   req.Size,
			Offset:     req.Offset(),
		},
	}
}

// Map converts the content of p with fn, keeping the paging metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := make([]U, len(p.Content))
	for i, v := range p.Content {
		out[i] = fn(v)
	}
	return Page[U]{
		Content:       out,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Pageable:      p.Pageable,
	}
}
