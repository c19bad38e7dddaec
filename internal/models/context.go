package models

import (
	"context"
)

type ownerContextKey struct{}

// WithOwner attaches the authenticated owner id to a context.
func WithOwner(ctx context.Context, ownerId string) context.Context {
	return context.WithValue(ctx, ownerContextKey{}, ownerId)
}

// OwnerFromContext retrieves the owner id from context. The second return
// is false when no owner was attached or the id is empty.
func OwnerFromContext(ctx context.Context) (string, bool) {
	ownerId, _ := ctx.Value(ownerContextKey{}).(string)
	return ownerId, ownerId != ""
}
