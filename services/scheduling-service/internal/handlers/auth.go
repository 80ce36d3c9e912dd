package handlers

import (
	"net/http"
	"strings"

	"github.com/rafid-karim/counselhub/libs/auth"
	"github.com/rafid-karim/counselhub/services/scheduling-service/internal/booking"
)

// RequireAuth verifies the bearer token and rewrites the identity headers
// from its claims. With a JWKS client configured, RS256 tokens are verified
// against the platform keyset; HS256 is the shared-secret fallback. Inbound
// identity headers are always stripped so they cannot be forged.
func RequireAuth(next http.Handler, jwtSecret string, jwksClient *auth.JWKSClient) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") || len(strings.TrimSpace(authHeader)) <= len("Bearer ") {
			http.Error(w, "missing or invalid Authorization header", http.StatusUnauthorized)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		var claims *auth.Claims
		var err error

		if jwksClient != nil {
			header, headerErr := auth.ParseHeader(token)
			if headerErr != nil {
				http.Error(w, "invalid token header", http.StatusUnauthorized)
				return
			}
			if header.Alg == "RS256" && header.Kid != "" {
				pub, keyErr := jwksClient.Get(header.Kid)
				if keyErr != nil {
					http.Error(w, "invalid token key", http.StatusUnauthorized)
					return
				}
				claims, err = auth.VerifyRS256(token, pub)
			} else {
				claims, err = auth.ParseAndVerifyHS256(token, jwtSecret)
			}
		} else {
			claims, err = auth.ParseAndVerifyHS256(token, jwtSecret)
		}
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		r.Header.Del("X-User-Id")
		r.Header.Del("X-Role")
		r.Header.Set("X-User-Id", claims.Sub)
		r.Header.Set("X-Role", claims.Role)
		next.ServeHTTP(w, r)
	})
}

// actorFrom reads the identity headers set by RequireAuth (or by the edge
// gateway when this service runs behind one).
func actorFrom(r *http.Request) booking.Actor {
	return booking.Actor{
		ID:   strings.TrimSpace(r.Header.Get("X-User-Id")),
		Role: strings.TrimSpace(r.Header.Get("X-Role")),
	}
}
