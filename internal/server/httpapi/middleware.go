package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/Smartsec916/Observe-and-Report-sub001/internal/server/models"
)

type contextKey string

const identityContextKey contextKey = "identity"

// authMiddleware gates every guarded route behind a valid session. Any
// resolve failure (missing, tampered or expired token) maps to 401 so
// client UIs can redirect to login without interpreting business errors.
func (r *Router) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token := bearerToken(req)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			return
		}
		ident, err := r.services.Auth.Resolve(req.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
			return
		}
		ctx := context.WithValue(req.Context(), identityContextKey, ident)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func bearerToken(req *http.Request) string {
	authz := req.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authz, "Bearer ")
}

func getIdentity(ctx context.Context) (models.Identity, bool) {
	ident, ok := ctx.Value(identityContextKey).(models.Identity)
	return ident, ok
}
