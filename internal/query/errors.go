// Package query evaluates predicates, projections and aggregations
// over VCF record streams.
package query

import "fmt"

// UnknownFieldError reports a predicate or projection that references
// a field that does not exist on the schema, or a field absent on a
// particular record.
type UnknownFieldError struct {
	Name   string
	Detail string
}

func (e *UnknownFieldError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unknown field %q", e.Name)
	}
	return fmt.Sprintf("unknown field %q: %s", e.Name, e.Detail)
}

// InvalidPredicateError reports malformed predicate syntax.
type InvalidPredicateError struct {
	Expr    string
	Message string
}

func (e *InvalidPredicateError) Error() string {
	return fmt.Sprintf("invalid predicate %q: %s", e.Expr, e.Message)
}
