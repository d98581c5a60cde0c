package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/tavolaworks/tavola/internal/domain"
)

// Authentication is delegated to the gateway in front of this service. The
// gateway strips these headers from inbound traffic and re-adds them after
// verifying the caller, so their presence is trusted here.
const (
	UserIDHeader    = "X-User-Id"
	UserRoleHeader  = "X-User-Role"
	UserEmailHeader = "X-User-Email"

	// PrincipalContextKey is the context key for the authenticated principal
	PrincipalContextKey contextKey = "principal"
)

// WithPrincipal extracts the gateway-asserted identity headers into a
// domain.Principal on the request context. Requests without the headers pass
// through anonymously; guards that need an identity use RequireRole.
func WithPrincipal() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(UserIDHeader)
			if rawID == "" {
				next.ServeHTTP(w, r)
				return
			}

			userID, err := uuid.Parse(rawID)
			if err != nil {
				respondUnauthorized(w, r)
				return
			}

			role := domain.Role(r.Header.Get(UserRoleHeader))
			if !domain.ValidRole(role) {
				respondUnauthorized(w, r)
				return
			}

			principal := domain.Principal{
				UserID: userID,
				Email:  r.Header.Get(UserEmailHeader),
				Role:   role,
			}

			ctx := context.WithValue(r.Context(), PrincipalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetPrincipal retrieves the authenticated principal from the context.
// Returns false when the request is anonymous.
func GetPrincipal(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(PrincipalContextKey).(domain.Principal)
	return p, ok
}

// RequireRole rejects requests whose principal is missing or whose role is
// not in the allowed set. Admin passes every role guard.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	allowed := make(map[domain.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok {
				respondUnauthorized(w, r)
				return
			}
			if principal.Role != domain.RoleAdmin && !allowed[principal.Role] {
				respondForbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
