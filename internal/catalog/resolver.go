package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Identifiers carries the product identity hints a caller may supply.
// Any subset may be present.
type Identifiers struct {
	ProductID   *int64
	SKU         string
	ProductName string
}

// Lookup is the read-only product store surface the resolver needs.
// Implementations return nil (not an error) when nothing matches; SKU and
// name matches are exact and case-insensitive.
type Lookup interface {
	ProductIDBySKU(ctx context.Context, sku string) (*int64, error)
	ProductIDByName(ctx context.Context, name string) (*int64, error)
	ProductName(ctx context.Context, id int64) (*string, error)
}

// Resolver maps caller-supplied identifiers to a canonical product id.
type Resolver struct {
	lookup Lookup
}

// NewResolver builds a Resolver over the given lookup.
func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup}
}

// Resolve picks a product id with fixed precedence: an explicit product id
// wins unconditionally, then an exact SKU match, then an exact name match.
// No fuzzy matching; a miss on every identifier yields nil.
func (r *Resolver) Resolve(ctx context.Context, ids Identifiers) (*int64, error) {
	if ids.ProductID != nil {
		return ids.ProductID, nil
	}

	if sku := strings.TrimSpace(ids.SKU); sku != "" {
		id, err := r.lookup.ProductIDBySKU(ctx, sku)
		if err != nil {
			return nil, fmt.Errorf("resolve by sku: %w", err)
		}
		if id != nil {
			return id, nil
		}
	}

	if name := strings.TrimSpace(ids.ProductName); name != "" {
		id, err := r.lookup.ProductIDByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve by name: %w", err)
		}
		if id != nil {
			return id, nil
		}
	}

	return nil, nil
}

// NameOf returns the canonical display name for a resolved product id, or
// nil when the id is unknown.
func (r *Resolver) NameOf(ctx context.Context, id *int64) (*string, error) {
	if id == nil {
		return nil, nil
	}
	name, err := r.lookup.ProductName(ctx, *id)
	if err != nil {
		return nil, fmt.Errorf("product name: %w", err)
	}
	return name, nil
}
