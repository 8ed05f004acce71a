package auth

import (
	"context"
	"log/slog"

	"github.com/splitr-app/splitr/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	userIDKey contextKey = "user_id"
	emailKey  contextKey = "email"
)

// WithIdentity returns a context carrying the authenticated user's id and
// email. Set by the HTTP auth middleware after token validation.
func WithIdentity(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, emailKey, email)
}

// UserIDFrom extracts the authenticated user id from the context.
// Returns empty string if the request carried no valid identity.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey).(string)
	return id
}

// EmailFrom extracts the authenticated email from the context.
func EmailFrom(ctx context.Context) string {
	email, _ := ctx.Value(emailKey).(string)
	return email
}

// UserGetter is the single read the resolver needs from storage.
type UserGetter interface {
	GetUser(ctx context.Context, userID string) (*models.User, error)
}

// Resolver maps a request context to the current User record. It never
// returns an error: an absent session, an unresolvable id, or a storage
// fault all yield nil, which downstream read operations translate into
// their documented zero-valued defaults.
type Resolver struct {
	store UserGetter
}

// NewResolver creates a resolver backed by the given user storage.
func NewResolver(store UserGetter) *Resolver {
	return &Resolver{store: store}
}

// CurrentUser returns the authenticated user, or nil.
func (r *Resolver) CurrentUser(ctx context.Context) *models.User {
	userID := UserIDFrom(ctx)
	if userID == "" {
		return nil
	}

	user, err := r.store.GetUser(ctx, userID)
	if err != nil {
		slog.Warn("failed to resolve current user", "user_id", userID, "error", err)
		return nil
	}
	return user
}
