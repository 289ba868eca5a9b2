package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func getHealth(t *testing.T, h *HealthHandler) (int, map[string]string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode health body: %v", err)
	}
	return rec.Code, body
}

func TestHealth_AllBackendsUp(t *testing.T) {
	ok := func(context.Context) error { return nil }
	code, body := getHealth(t, NewHealthHandler(ok, ok))

	if code != http.StatusOK {
		t.Errorf("status = %d, want 200", code)
	}
	if body["status"] != "OK" {
		t.Errorf("status field = %q, want OK", body["status"])
	}
	if body["message"] != "Service is healthy." {
		t.Errorf("message = %q", body["message"])
	}
}

func TestHealth_ReportsUnreachableBackends(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }
	ok := func(context.Context) error { return nil }

	// Only the cache down.
	code, body := getHealth(t, NewHealthHandler(ok, down))
	if code != http.StatusOK {
		t.Errorf("status = %d, want 200 (still serving)", code)
	}
	if !strings.Contains(body["message"], "cache") {
		t.Errorf("message = %q, want cache named", body["message"])
	}

	// Both down.
	_, body = getHealth(t, NewHealthHandler(down, down))
	if !strings.Contains(body["message"], "database") || !strings.Contains(body["message"], "cache") {
		t.Errorf("message = %q, want both backends named", body["message"])
	}
}

func TestHealth_NilCacheCheckSkipped(t *testing.T) {
	ok := func(context.Context) error { return nil }
	_, body := getHealth(t, NewHealthHandler(ok, nil))
	if body["message"] != "Service is healthy." {
		t.Errorf("message = %q, want healthy with cache disabled", body["message"])
	}
}
