package auth

import (
	"context"
	"net/http"

	"github.com/manterx/codesnip/internal/model"
)

// CookieName is the name of the HttpOnly cookie carrying the JWT.
const CookieName = "token"

// UserLoader is the subset of the user repository the middleware needs.
// Declared here (at the point of use) so this package doesn't depend on the
// repository package.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// contextKey is an unexported type for context keys in this package: only
// this package can create a key of this type, so no other package can read
// or shadow the actor value.
type contextKey string

const actorKey contextKey = "actor"

// RequireActor enforces authentication on protected routes.
//
// It reads the JWT from the cookie, validates it, and loads the user's
// CURRENT database row into the request context. Loading fresh (rather than
// trusting a role baked into the token) means a role change or account
// deletion takes effect on the very next request.
//
// Missing/invalid token, or a token whose user no longer exists, ends the
// request with 401.
func RequireActor(tokens *TokenService, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, err := loadActor(r, tokens, users)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				http.Error(w, `{"error":"unauthorized","message":"valid authentication required"}`, http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}

// OptionalActor attaches the actor if a valid token is present but does NOT
// block anonymous requests. Handlers on public routes use ActorFromContext
// to check whether a user is signed in.
func OptionalActor(tokens *TokenService, users UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor, err := loadActor(r, tokens, users); err == nil {
				r = r.WithContext(ContextWithActor(r.Context(), actor))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ContextWithActor returns a context carrying the given user as the actor.
func ContextWithActor(ctx context.Context, actor *model.User) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFromContext retrieves the authenticated user from the request context.
// Returns (nil, false) if the request is anonymous.
func ActorFromContext(ctx context.Context) (*model.User, bool) {
	actor, ok := ctx.Value(actorKey).(*model.User)
	return actor, ok && actor != nil
}

// loadActor reads the JWT cookie, validates it, and fetches the user row.
func loadActor(r *http.Request, tokens *TokenService, users UserLoader) (*model.User, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, err
	}

	userID, err := tokens.Validate(cookie.Value)
	if err != nil {
		return nil, err
	}

	return users.GetByID(r.Context(), userID)
}
