package health

import (
	"net/http"

	resp "refresh_service/internal/lib/api/response"

	"github.com/go-chi/render"
)

func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, resp.OK())
	}
}
