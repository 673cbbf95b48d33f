// Package graphql builds the read-only catalog schema the storefront
// exposes on POST /api/graphql.
package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"
)

// NewSchema wraps query as the root of a query-only schema. The catalog
// has no mutations; writes go through the REST admin endpoints.
func NewSchema(query *graphql.Object) (graphql.Schema, error) {
	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: query})
	if err != nil {
		return graphql.Schema{}, fmt.Errorf("graphql: build schema: %w", err)
	}
	return schema, nil
}
