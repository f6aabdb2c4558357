package refresh_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"refresh_service/internal/http-server/handlers/refresh"
	resp "refresh_service/internal/lib/api/response"

	"github.com/stretchr/testify/require"
)

type stubStarter struct {
	err   error
	calls int
	ctx   context.Context
}

func (s *stubStarter) Start(ctx context.Context) (string, error) {
	s.calls++
	s.ctx = ctx
	if s.err != nil {
		return "", s.err
	}
	return "run-1", nil
}

func serve(t *testing.T, starter refresh.Starter) (*httptest.ResponseRecorder, resp.Response) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/update-products", nil)

	refresh.New(log, starter).ServeHTTP(rec, req)

	var body resp.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestTriggerStarted(t *testing.T) {
	starter := &stubStarter{}

	rec, body := serve(t, starter)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, resp.StatusStarted, body.Status)
	require.Equal(t, "Product update started successfully!", body.Message)
	require.Equal(t, 1, starter.calls)
}

func TestTriggerError(t *testing.T) {
	starter := &stubStarter{err: errors.New("updater is not configured")}

	rec, body := serve(t, starter)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, resp.StatusError, body.Status)
	require.Equal(t, "updater is not configured", body.Message)
}
