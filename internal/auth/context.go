// Package auth provides bearer-token authentication middleware for the
// Sales Tracker API.
package auth

import "context"

// ctxKey is a private type for context keys defined in this package.
type ctxKey int

// userIDKey carries the authenticated user's ID through the request context.
const userIDKey ctxKey = iota

// WithUserID returns a context carrying the authenticated user's ID.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserID extracts the authenticated user's ID from the context.
// The second return value is false when the request never passed
// through the middleware.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}
