package observe

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/1broseidon/gridstart/internal/daemon"
	"github.com/1broseidon/gridstart/internal/grid"
)

type fakeSource struct {
	snap *grid.Snapshot
}

func (f fakeSource) Status() daemon.Status { return daemon.Status{RootPID: 9, Cells: 4} }

func (f fakeSource) Snapshot() (grid.Snapshot, error) {
	if f.snap == nil {
		return grid.Snapshot{}, daemon.ErrNoGrid
	}
	return *f.snap, nil
}

func get(t *testing.T, srv *httptest.Server, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(NewRouter(fakeSource{}))
	defer srv.Close()

	code, body := get(t, srv, "/healthz")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var st daemon.Status
	if err := json.Unmarshal([]byte(body), &st); err != nil || st.RootPID != 9 {
		t.Fatalf("unexpected body %q (%v)", body, err)
	}
}

func TestGridBeforeAndAfterEngine(t *testing.T) {
	srv := httptest.NewServer(NewRouter(fakeSource{}))
	code, _ := get(t, srv, "/grid")
	srv.Close()
	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 before the grid exists, got %d", code)
	}

	srv = httptest.NewServer(NewRouter(fakeSource{snap: &grid.Snapshot{Rows: 1, Cols: 2}}))
	defer srv.Close()
	code, body := get(t, srv, "/grid")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var snap grid.Snapshot
	if err := json.Unmarshal([]byte(body), &snap); err != nil || snap.Cols != 2 {
		t.Fatalf("unexpected body %q (%v)", body, err)
	}
}

func TestMetricsExposesGridCounters(t *testing.T) {
	srv := httptest.NewServer(NewRouter(fakeSource{}))
	defer srv.Close()

	code, body := get(t, srv, "/metrics")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(body, "gridstart_occupied_cells") {
		t.Fatalf("grid gauge missing from /metrics")
	}
}

func TestServeRefusesNonLoopback(t *testing.T) {
	err := Serve(context.Background(), "0.0.0.0:0", fakeSource{}, nil)
	if !errors.Is(err, errNotLoopback) {
		t.Fatalf("expected loopback error, got %v", err)
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", fakeSource{}, nil) }()
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Serve: %v", err)
	}
}
