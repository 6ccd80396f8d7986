package middleware

import (
	"context"
	"net/http"
	"strings"

	"petsoft/internal/platform/session"
)

type ctxKey string

const claimsKey ctxKey = "claims"

// Claims es la identidad resuelta del caller para este request.
type Claims struct {
	UserID string
}

// AuthContext:
// - Si sessions != nil => resuelve la cookie de sesión y setea claims.
// - Si sessions == nil => modo dev: header X-Debug-User-ID setea claims.
// - Sin sesión válida el request sigue igual; los handlers deciden si exigen auth.
//   La resolución es read-only y falla cerrado (sin claims).
func AuthContext(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Dev mode: permitir inyectar user sin sesiones reales
			if sessions == nil {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					ctx := context.WithValue(r.Context(), claimsKey, Claims{UserID: uid})
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}

				next.ServeHTTP(w, r)
				return
			}

			userID, err := sessions.Resolve(r.Context(), r)
			if err != nil {
				// sin sesión (o backend con problemas): seguimos anónimos,
				// el handler devolverá 401 si la ruta exige auth
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, Claims{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaims(ctx context.Context) (Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return Claims{}, false
	}
	c, ok := v.(Claims)
	if !ok || strings.TrimSpace(c.UserID) == "" {
		return Claims{}, false
	}
	return c, true
}
