package authMiddlware

import (
	"context"
	"net/http"

	resp "refresh_service/internal/lib/api/response"

	"github.com/go-chi/render"
)

type contextKey string

const SubjectKey contextKey = "subject"

type TokenParser interface {
	ParseToken(authHeader string) (string, error)
}

// New guards a route with a bearer token. A nil parser lets every request
// through, which is how the trigger runs when no secret is configured.
func New(parser TokenParser) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if parser == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Missing authorization"))
				return
			}

			subject, err := parser.ParseToken(authHeader)
			if err != nil {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Invalid token"))
				return
			}

			ctx := context.WithValue(r.Context(), SubjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
