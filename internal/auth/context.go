package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/partbridge/marketplace-api/internal/domain"
)

// UserContext holds authenticated user information
type UserContext struct {
	UserID      uuid.UUID
	DisplayName string
	Email       string
	Role        domain.UserRole
	CompanyName string
}

type contextKey string

const userContextKey contextKey = "userContext"

// WithUserContext adds user context to the context
func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// FromContext extracts user context from the context
func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext extracts user context or panics
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

// IsAdmin reports whether the user is a marketplace admin
func (u *UserContext) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// IsCustomer reports whether the user is a buying customer
func (u *UserContext) IsCustomer() bool {
	return u.Role == domain.RoleCustomer
}

// IsSupplier reports whether the user is a supplier
func (u *UserContext) IsSupplier() bool {
	return u.Role == domain.RoleSupplier
}

// HasRole checks if the user has one of the given roles
func (u *UserContext) HasRole(roles ...domain.UserRole) bool {
	for _, role := range roles {
		if u.Role == role {
			return true
		}
	}
	return false
}

// OwnerScope returns the user ID to scope list queries by, or nil for
// admins who see everything.
func (u *UserContext) OwnerScope() *uuid.UUID {
	if u.IsAdmin() {
		return nil
	}
	id := u.UserID
	return &id
}
