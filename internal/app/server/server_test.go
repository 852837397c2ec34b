package server

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"perfeval/internal/domain/auth"
	"perfeval/internal/domain/evaluation"
	"perfeval/internal/platform/config"
	"perfeval/internal/platform/metrics"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeLogin struct{}

func (fakeLogin) Login(context.Context, string, string) (auth.LoginResult, error) {
	return auth.LoginResult{}, auth.ErrInvalidCredentials
}

type emptyStore struct{}

func (emptyStore) GetPeriod(context.Context, string) (evaluation.Period, error) {
	return evaluation.Period{}, evaluation.ErrPeriodNotFound
}

func (emptyStore) LoadSnapshot(context.Context, string, string) (evaluation.SummaryInput, error) {
	return evaluation.SummaryInput{}, evaluation.ErrPeriodNotFound
}

func (emptyStore) CountPeriodEmployees(context.Context, string) (int, error) { return 0, nil }

func (emptyStore) ListPeriodEmployeeIDs(context.Context, string, int, int) ([]string, error) {
	return nil, nil
}

func testConfig() config.Config {
	return config.Config{
		JWTSecret:       "secret",
		MaxBodyBytes:    4096,
		MetricsEnabled:  true,
		RateLimitWindow: time.Minute,
	}
}

func testRouter(ping error) (http.Handler, *metrics.Collector) {
	collector := metrics.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRouter(testConfig(), Deps{
		Logger:     logger,
		DB:         fakePinger{err: ping},
		Metrics:    collector,
		Auth:       fakeLogin{},
		Evaluation: evaluation.NewService(emptyStore{}, logger, collector, 2),
		Perms:      auth.StaticPermissions{},
	}), collector
}

func TestHealthAndReadiness(t *testing.T) {
	tests := []struct {
		name string
		path string
		ping error
		want int
	}{
		{name: "healthz", path: "/healthz", want: http.StatusOK},
		{name: "ready", path: "/readyz", want: http.StatusOK},
		{name: "db down", path: "/readyz", ping: errors.New("refused"), want: http.StatusServiceUnavailable},
		{name: "unknown route", path: "/nope", want: http.StatusNotFound},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			router, _ := testRouter(tc.ping)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Fatal("expected request id header")
			}
		})
	}
}

func TestMetricsRequiresPermissionAndCounts(t *testing.T) {
	router, collector := testRouter(nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	token, err := auth.GenerateToken("secret", auth.Claims{UserID: "ops", RoleName: auth.RoleSystemAdmin}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	snapshot := collector.Snapshot()
	if snapshot["requestsTotal"].(uint64) < 2 {
		t.Fatalf("expected requests to be recorded, got %v", snapshot["requestsTotal"])
	}
}

func TestEvaluationRoutesMounted(t *testing.T) {
	router, _ := testRouter(nil)
	token, err := auth.GenerateToken("secret", auth.Claims{UserID: "hr", RoleName: auth.RoleHR}, time.Hour)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/v1/evaluation/periods/0b8f6a3e-6c0e-4a53-9d52-6f1d2c3b4a11/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown period, got %d: %s", rec.Code, rec.Body.String())
	}
}
