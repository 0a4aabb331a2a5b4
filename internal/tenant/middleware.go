package tenant

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/taskhive/backend/internal/models"
)

// HeaderSlug is the request header carrying the tenant-scoping token.
const HeaderSlug = "X-Organization-Slug"

// OrganizationLookup resolves a slug to an organization. Implemented
// by organizations.Repository.
type OrganizationLookup interface {
	GetBySlug(ctx context.Context, slug string) (*models.Organization, error)
}

// Resolver returns middleware that resolves X-Organization-Slug to an
// organization and binds it onto the request context. A missing header
// or an unknown slug binds nothing; handlers decide later whether an
// unbound tenant is an authorization failure (mutations) or an empty
// result (reads).
func Resolver(lookup OrganizationLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		s := c.GetHeader(HeaderSlug)
		if s == "" {
			c.Next()
			return
		}
		org, err := lookup.GetBySlug(c.Request.Context(), s)
		if err != nil || org == nil {
			c.Next()
			return
		}
		c.Request = c.Request.WithContext(NewContext(c.Request.Context(), org))
		c.Next()
	}
}
