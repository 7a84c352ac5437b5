package authcore

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext retrieves the user id the Middleware injected. It
// panics if called outside a request the Middleware has processed —
// every handler registered behind Middleware can rely on it being set.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	id, ok := ctx.Value(userIDKey).(uuid.UUID)
	if !ok {
		panic("authcore: UserIDFromContext called outside an authenticated request")
	}
	return id
}

// Middleware requires a valid `Authorization: Bearer <access>` header and
// injects the bearer's user_id into the downstream request context (spec
// §4.1). onReject is called, instead of next, for any rejection — it lets
// the caller map to the HTTP response shape used elsewhere in pkg/api
// without this package depending on it.
func Middleware(signer *Signer, onReject func(w http.ResponseWriter, r *http.Request, err error)) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				onReject(w, r, Unauthorized.New("missing Authorization header"))
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				onReject(w, r, Unauthorized.New("expected Bearer scheme"))
				return
			}

			claims, err := signer.ValidateAccess(strings.TrimSpace(parts[1]))
			if err != nil {
				onReject(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
