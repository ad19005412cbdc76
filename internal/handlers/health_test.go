package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubHealthChecker struct {
	err error
}

func (s stubHealthChecker) Health(ctx context.Context) error { return s.err }

func TestHealthHandler_Healthy(t *testing.T) {
	handler := NewHealthHandler(stubHealthChecker{}, stubHealthChecker{})

	rr := httptest.NewRecorder()
	handler.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
}

func TestHealthHandler_UnhealthyPostgres(t *testing.T) {
	handler := NewHealthHandler(stubHealthChecker{err: errors.New("down")}, stubHealthChecker{})

	rr := httptest.NewRecorder()
	handler.Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}

func TestHealthHandler_Live(t *testing.T) {
	handler := NewHealthHandler(stubHealthChecker{err: errors.New("down")}, stubHealthChecker{err: errors.New("down")})

	rr := httptest.NewRecorder()
	handler.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if rr.Code != http.StatusOK {
		t.Fatal("liveness must not depend on backends")
	}
}
