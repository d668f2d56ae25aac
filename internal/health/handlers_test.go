package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/noah-isme/invoice-generator/internal/health"
)

type stubChecker struct {
	err error
}

func (s stubChecker) PingStore(_ context.Context, _ time.Duration) error {
	return s.err
}

type stubPinger struct {
	deadline bool
}

func (p *stubPinger) Ping(ctx context.Context) error {
	_, p.deadline = ctx.Deadline()
	return nil
}

func TestLive(t *testing.T) {
	handler := health.Handler{}
	rr := httptest.NewRecorder()
	handler.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	if body := rr.Body.String(); body != "ok" {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestReadySuccess(t *testing.T) {
	handler := health.Handler{Checker: stubChecker{}, StoreTimeout: 50 * time.Millisecond}
	rr := httptest.NewRecorder()
	handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rr.Code)
	}
	var status map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if status["store"] != "ok" {
		t.Fatalf("unexpected status %#v", status)
	}
}

func TestReadyFailure(t *testing.T) {
	handler := health.Handler{Checker: stubChecker{err: errors.New("redis down")}, StoreTimeout: 10 * time.Millisecond}
	rr := httptest.NewRecorder()
	handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rr.Code)
	}
}

func TestStoreCheckerAppliesTimeout(t *testing.T) {
	pinger := &stubPinger{}
	checker := health.StoreChecker{Store: pinger}
	if err := checker.PingStore(context.Background(), time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !pinger.deadline {
		t.Fatal("expected ping to run with a deadline")
	}
}
