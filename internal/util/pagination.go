package util

import (
	"strconv"

	"github.com/Skotchmaster/marketplace/internal/transport"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Calculate turns a 1-based page and a page size into an offset/limit pair.
func Calculate(page, size int) (from, limit int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}
	from = (page - 1) * size
	return from, size
}

func ParseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func Meta(page, limit int, total int64) transport.PageMeta {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit
	return transport.PageMeta{
		Page:       page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}

func NewPage[T any](items []T, page, limit int, total int64) transport.Page[T] {
	if items == nil {
		items = []T{}
	}
	return transport.Page[T]{Data: items, Meta: Meta(page, limit, total)}
}
