package repositories

import (
	"context"

	"github.com/campushub/portal/backend/internal/domain/entities"
)

// Operator is the comparison a Predicate applies.
type Operator string

const (
	// OpSubstring matches when the field contains Value, ignoring case.
	OpSubstring Operator = "substring"
	OpEq        Operator = "eq"
	OpGte       Operator = "gte"
	OpLte       Operator = "lte"
	// OpIn matches when the field equals any element of Value ([]string).
	OpIn Operator = "in"
)

// Predicate is a single condition on one field.
type Predicate struct {
	Field string      `json:"field"`
	Op    Operator    `json:"op"`
	Value interface{} `json:"value"`
}

// AnyOf holds when at least one of its predicates holds.
type AnyOf []Predicate

// Condition holds when every group holds. An empty Condition matches all records.
type Condition []AnyOf

// And appends predicates as separate, required groups.
func (c Condition) And(preds ...Predicate) Condition {
	for _, p := range preds {
		c = append(c, AnyOf{p})
	}
	return c
}

// Or appends one group that holds when any of preds holds. No-op for an empty list.
func (c Condition) Or(preds ...Predicate) Condition {
	if len(preds) == 0 {
		return c
	}
	return append(c, AnyOf(preds))
}

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderBy sorts a collection query on one field.
type OrderBy struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// CollectionQuery asks one collection for matching records.
type CollectionQuery struct {
	Collection string    `json:"collection"`
	Where      Condition `json:"where"`
	OrderBy    OrderBy   `json:"order_by"`
	// Limit caps the number of records. Zero means no cap.
	Limit int `json:"limit,omitempty"`
}

// RecordStore finds records in a named collection.
type RecordStore interface {
	// QueryCollection returns the records matching q.Where in q.OrderBy order.
	// Transport and backend failures are returned as STORE errors.
	QueryCollection(ctx context.Context, q CollectionQuery) ([]entities.Record, error)
}
