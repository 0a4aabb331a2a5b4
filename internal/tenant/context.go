// Package tenant binds the requesting organization to the request
// context. The binding is an immutable context value created fresh per
// request; there is no process-wide or gin-keyed mutable slot, so
// concurrent requests cannot observe each other's tenant.
package tenant

import (
	"context"

	"github.com/taskhive/backend/internal/models"
)

type ctxKey struct{}

// NewContext returns a copy of ctx carrying org as the active tenant.
func NewContext(ctx context.Context, org *models.Organization) context.Context {
	return context.WithValue(ctx, ctxKey{}, org)
}

// FromContext returns the active tenant, or ok=false when the request
// carried no resolvable organization slug.
func FromContext(ctx context.Context) (*models.Organization, bool) {
	org, ok := ctx.Value(ctxKey{}).(*models.Organization)
	if !ok || org == nil {
		return nil, false
	}
	return org, true
}
