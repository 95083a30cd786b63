package model

import (
	"strings"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type Order struct {
	Field string
	Desc  bool
}

// ListQuery is the structured form of a collection request.
type ListQuery struct {
	Filters  map[string]string
	Search   string
	Ordering []Order
	Page     int
	PageSize int

	// Owner restricts the result to records belonging to one account.
	Owner *uuid.UUID
}

// ParseOrdering reads a comma separated list where a leading '-' means descending.
func ParseOrdering(raw string) []Order {
	var orders []Order
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		desc := strings.HasPrefix(part, "-")
		orders = append(orders, Order{Field: strings.TrimPrefix(part, "-"), Desc: desc})
	}
	return orders
}

// SearchTerms splits a free-text query into the terms that must each match some field.
func SearchTerms(search string) []string {
	return strings.Fields(search)
}

// Limit returns the row limit and offset for the requested page.
func (q ListQuery) Limit() (limit, offset int) {
	if q.PageSize <= 0 {
		return 0, 0
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	return q.PageSize, (page - 1) * q.PageSize
}
