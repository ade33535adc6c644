package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandler_nilMetrics(t *testing.T) {
	var m *Metrics
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	m.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rr.Code)
	}
	if got := rr.Body.String(); !strings.Contains(got, "metrics unavailable") {
		t.Fatalf("expected body to mention metrics unavailable, got %q", got)
	}
}

func TestNilMetrics_methodsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.ObserveReconcile(1, 2, 3, time.Millisecond)
	m.IncCameraCommand(CameraFit)
	m.IncViewportFit(FitIssued)
	m.IncWidgetMount()
}

func TestHandler_exposesRegisteredMetrics(t *testing.T) {
	m := New()
	m.ObserveHTTPRequest(http.MethodGet, "/readyz", http.StatusOK, 12*time.Millisecond)
	m.ObserveReconcile(3, 1, 2, 50*time.Microsecond)
	m.IncCameraCommand(CameraCenter)
	m.IncViewportFit(FitCancelled)
	m.IncWidgetMount()

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)

	m.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	body := rr.Body.String()
	for _, want := range []string{
		"iqamahs_http_requests_total{method=\"GET\",path=\"/readyz\",status=\"200\"} 1",
		"iqamahs_map_markers_placed_total 3",
		"iqamahs_map_markers_removed_total 1",
		"iqamahs_map_markers 2",
		"iqamahs_map_camera_commands_total{command=\"center\"} 1",
		"iqamahs_map_viewport_fits_total{outcome=\"cancelled\"} 1",
		"iqamahs_map_reconcile_duration_seconds_count 1",
		"iqamahs_map_widget_mounts_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output; body=%s", want, body)
		}
	}
}
