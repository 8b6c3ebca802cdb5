package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func healthy(name string) Checker {
	return NewFuncChecker(name, func(context.Context) error { return nil })
}

func failing(name, msg string) Checker {
	return NewFuncChecker(name, func(context.Context) error { return errors.New(msg) })
}

func serve(t *testing.T, h http.HandlerFunc, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestHealthHandler(t *testing.T) {
	handler := NewHandler("orders", "v1.0.0")
	handler.RegisterChecker("storage", healthy("storage"))

	w := serve(t, handler.ServeHTTP, "/healthz")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var response Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, StatusHealthy, response.Status)
	require.Equal(t, "orders", response.Service)
	require.Equal(t, "v1.0.0", response.Version)
	require.Len(t, response.Checks, 1)
	require.Equal(t, "storage", response.Checks[0].Name)
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := NewHandler("orders", "v1.0.0")
	handler.RegisterChecker("storage", healthy("storage"))
	handler.RegisterChecker("kafka", failing("kafka", "broker unavailable"))

	w := serve(t, handler.ServeHTTP, "/healthz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var response Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	require.Equal(t, StatusUnhealthy, response.Status)
	// Проверки отсортированы по имени.
	require.Equal(t, "kafka", response.Checks[0].Name)
	require.Equal(t, "broker unavailable", response.Checks[0].Message)
}

func TestEvaluate_DegradedDoesNotFail(t *testing.T) {
	handler := NewHandler("orders", "dev")
	handler.RegisterChecker("storage", NewCapacityChecker("storage", func() int { return 11 }, 10))
	handler.RegisterChecker("api", healthy("api"))

	require.Equal(t, StatusDegraded, handler.Evaluate(context.Background()).Status)
	require.Equal(t, http.StatusOK, serve(t, handler.ServeHTTP, "/healthz").Code)
	require.Equal(t, http.StatusOK, serve(t, handler.ReadinessHandler, "/readyz").Code)

	handler.RegisterChecker("api", failing("api", "down"))
	require.Equal(t, StatusUnhealthy, handler.Evaluate(context.Background()).Status)
}

func TestEvaluate_FillsMissingName(t *testing.T) {
	handler := NewHandler("orders", "dev")
	handler.RegisterChecker("anonymous", NewFuncChecker("", func(context.Context) error { return nil }))

	response := handler.Evaluate(context.Background())
	require.Equal(t, "anonymous", response.Checks[0].Name)
}

func TestEvaluate_CheckReceivesDeadline(t *testing.T) {
	handler := NewHandler("orders", "dev")
	var hadDeadline bool
	handler.RegisterChecker("deadline", NewFuncChecker("deadline", func(ctx context.Context) error {
		_, hadDeadline = ctx.Deadline()
		return nil
	}))

	handler.Evaluate(context.Background())
	require.True(t, hadDeadline)
}

func TestLivenessHandler(t *testing.T) {
	w := serve(t, LivenessHandler, "/livez")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	handler := NewHandler("orders", "v1.0.0")
	handler.RegisterChecker("storage", healthy("storage"))

	w := serve(t, handler.ReadinessHandler, "/readyz")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ready", w.Body.String())
}

func TestReadinessHandler_NotReady(t *testing.T) {
	handler := NewHandler("orders", "v1.0.0")
	handler.RegisterChecker("storage", failing("storage", "not ready"))

	w := serve(t, handler.ReadinessHandler, "/readyz")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.Equal(t, "not ready", w.Body.String())
}

func TestFuncChecker(t *testing.T) {
	checker := NewFuncChecker("slow", func(context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return nil
	})

	check := checker.Check(context.Background())
	require.Equal(t, StatusHealthy, check.Status)
	require.GreaterOrEqual(t, check.DurationMs, int64(10))
}

func TestFuncChecker_Error(t *testing.T) {
	check := failing("test", "test error").Check(context.Background())
	require.Equal(t, StatusUnhealthy, check.Status)
	require.Equal(t, "test error", check.Message)
}

func TestCapacityChecker(t *testing.T) {
	size := 5
	checker := NewCapacityChecker("storage", func() int { return size }, 10)

	check := checker.Check(context.Background())
	require.Equal(t, StatusHealthy, check.Status)
	require.Equal(t, "5 records", check.Message)

	size = 20
	check = checker.Check(context.Background())
	require.Equal(t, StatusDegraded, check.Status)
	require.Equal(t, "20 records exceeds soft limit 10", check.Message)

	unlimited := NewCapacityChecker("storage", func() int { return 1_000_000 }, 0)
	require.Equal(t, StatusHealthy, unlimited.Check(context.Background()).Status)
}
