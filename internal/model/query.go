package model

import (
	"errors"
	"strings"
)

// ErrInvalidQuery is returned when a query is rejected before the pipeline
// runs. It is the only error HandleQuery surfaces to the caller.
var ErrInvalidQuery = errors.New("invalid query: product must not be empty")

// Query is a single product search request. Immutable once accepted.
type Query struct {
	Product    string   `json:"product"`              // Product category, e.g. "vacuum cleaner"
	Attributes []string `json:"attributes,omitempty"` // Desired attributes, e.g. ["cheap", "cordless"]
}

// NewQuery validates the raw input and builds a Query.
// The product is trimmed; an empty result is an InvalidQuery.
func NewQuery(product string, attributes []string) (Query, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return Query{}, ErrInvalidQuery
	}

	attrs := make([]string, 0, len(attributes))
	for _, a := range attributes {
		a = strings.TrimSpace(a)
		if a != "" {
			attrs = append(attrs, a)
		}
	}

	return Query{Product: product, Attributes: attrs}, nil
}

// Terms returns the product plus attributes, lowercased, for relevance matching.
func (q Query) Terms() []string {
	terms := []string{strings.ToLower(q.Product)}
	for _, a := range q.Attributes {
		terms = append(terms, strings.ToLower(a))
	}
	return terms
}
