// Package identity carries the authenticated user id through request contexts.
// The id is asserted by the gateway in the X-User-ID header.
package identity

import "context"

// HeaderUserID is the request header holding the caller's user id
const HeaderUserID = "X-User-ID"

type userIDKey struct{}

// ContextWithUser returns a copy of ctx carrying userID
func ContextWithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserFromContext returns the caller's user id, or "" when unauthenticated
func UserFromContext(ctx context.Context) string {
	userID, _ := ctx.Value(userIDKey{}).(string)
	return userID
}
