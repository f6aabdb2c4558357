package refresh

import (
	"context"
	"log/slog"
	"net/http"

	resp "refresh_service/internal/lib/api/response"
	sl "refresh_service/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

const startedMessage = "Product update started successfully!"

// Starter launches a refresh pass without waiting for it.
type Starter interface {
	Start(ctx context.Context) (string, error)
}

// New acknowledges the trigger right away. The pass keeps running after the
// response is written and its outcome is only logged.
func New(log *slog.Logger, starter Starter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.refresh.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		runID, err := starter.Start(r.Context())
		if err != nil {
			log.Error("Error triggering update", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error(err.Error()))

			return
		}

		log.Info("Product update started", slog.String("run_id", runID))

		render.Status(r, http.StatusOK)
		render.JSON(w, r, resp.Started(startedMessage))
	}
}
