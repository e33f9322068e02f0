package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/fleetfeast/internal/domain"
	healthcheck "github.com/vladislavdragonenkov/fleetfeast/internal/health"
	"github.com/vladislavdragonenkov/fleetfeast/internal/version"
)

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("engine unreachable") }

func get(t *testing.T, handler http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func newMemoryRuntime(t *testing.T) *Runtime {
	t.Helper()
	cfg := DefaultConfig()
	cfg.StorageDriver = StorageDriverMemory
	cfg.PickupTimezone = "UTC"
	rt, err := NewRuntime(context.Background(), cfg, log.WithField("test", "ops"))
	if err != nil {
		t.Fatalf("new runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close() })
	return rt
}

func TestOpsRouter_RuntimeChecks(t *testing.T) {
	rt := newMemoryRuntime(t)
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	rt.RegisterCheckers(healthHandler, 512)
	router := newOpsRouter(healthHandler)

	w := get(t, router, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for /healthz, got %d", w.Code)
	}

	var resp healthcheck.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode /healthz: %v", err)
	}
	if resp.Status != healthcheck.StatusHealthy {
		t.Fatalf("expected healthy, got %s", resp.Status)
	}
	for _, name := range []string{"storage", "writer"} {
		if resp.Checks[name].Status != healthcheck.StatusHealthy {
			t.Fatalf("expected %s check healthy, got %+v", name, resp.Checks[name])
		}
	}

	if w := get(t, router, "/livez"); w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("unexpected /livez: %d %q", w.Code, w.Body.String())
	}
	if w := get(t, router, "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("expected /readyz 200, got %d", w.Code)
	}
}

func TestOpsRouter_ReadinessFollowsStorage(t *testing.T) {
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", healthcheck.StorageChecker("storage", failingPinger{}))
	router := newOpsRouter(healthHandler)

	if w := get(t, router, "/readyz"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected /readyz 503, got %d", w.Code)
	}
	if w := get(t, router, "/healthz"); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected /healthz 503, got %d", w.Code)
	}
}

func TestOpsRouter_BacklogDegradesButStaysReady(t *testing.T) {
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("writer", healthcheck.NewBacklogChecker("writer", func() int { return 10 }, 5))
	router := newOpsRouter(healthHandler)

	if w := get(t, router, "/readyz"); w.Code != http.StatusOK {
		t.Fatalf("expected /readyz 200 while degraded, got %d", w.Code)
	}

	w := get(t, router, "/healthz")
	var resp healthcheck.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode /healthz: %v", err)
	}
	if resp.Status != healthcheck.StatusDegraded {
		t.Fatalf("expected degraded, got %s", resp.Status)
	}
}

func TestOpsRouter_MetricsExposeWriterCollectors(t *testing.T) {
	rt := newMemoryRuntime(t)
	outcome := rt.Repos.Plates.InsertAndWait(context.Background(), domain.Plate{
		Name:     "Tortilla",
		Category: domain.CategorySecond,
		Price:    7.25,
	})
	if !outcome.OK() {
		t.Fatalf("insert plate: %+v", outcome)
	}

	w := get(t, newOpsRouter(healthcheck.NewHandler(version.GetVersion())), "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200 for /metrics, got %d", w.Code)
	}
	body := w.Body.String()
	for _, name := range []string{"fleetfeast_writes_total", "fleetfeast_writer_queue_depth"} {
		if !strings.Contains(body, name) {
			t.Fatalf("/metrics does not expose %s", name)
		}
	}
}

func TestOpsRouter_RejectsWrongMethod(t *testing.T) {
	router := newOpsRouter(healthcheck.NewHandler(version.GetVersion()))

	req := httptest.NewRequest(http.MethodPost, "/livez", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}

	if w := get(t, router, "/unknown"); w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
}

func TestStartMetricsServer_StopsOnCancel(t *testing.T) {
	logger := log.WithField("test", "http-shutdown")
	port := findFreePort(t)

	ctx, cancel := context.WithCancel(context.Background())
	srv := startMetricsServer(ctx, fmt.Sprintf(":%d", port), logger, healthcheck.NewHandler(version.GetVersion()))
	if srv == nil {
		t.Fatal("startMetricsServer should not return nil")
	}

	url := fmt.Sprintf("http://localhost:%d/livez", port)
	var resp *http.Response
	var err error
	for i := 0; i < 20; i++ {
		if resp, err = http.Get(url); err == nil {
			break
		}
		time.Sleep(25 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("server should be running: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) != "ok" {
		t.Fatalf("expected 'ok' from /livez, got %q", body)
	}

	cancel()
	time.Sleep(200 * time.Millisecond)

	if _, err := http.Get(url); err == nil {
		t.Error("server should be stopped after context cancellation")
	}
}

func TestShutdownHTTP_NilServer(_ *testing.T) {
	// Не должно паниковать
	shutdownHTTP(nil, log.WithField("test", "http-nil"))
}

// findFreePort находит свободный порт для тестов
func findFreePort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer listener.Close()

	return listener.Addr().(*net.TCPAddr).Port
}
