package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"iqamahs/core-go/internal/canvas"
	"iqamahs/core-go/internal/directory"
	"iqamahs/core-go/internal/logging"
	"iqamahs/core-go/internal/mapview"
	"iqamahs/core-go/internal/masjid"
	"iqamahs/core-go/internal/metrics"
)

type testEnv struct {
	h       *Handler
	browser *directory.Browser
	host    *canvas.Host
	clock   *mapview.ManualClock
}

func newTestEnv(t *testing.T, start bool) testEnv {
	t.Helper()
	all, err := masjid.Bundled()
	if err != nil {
		t.Fatalf("load bundled dataset: %v", err)
	}
	clock := mapview.NewManualClock()
	host := canvas.NewHost(nil)
	m := metrics.New()
	log := logging.NewLogger("debug")
	b := directory.NewBrowser(log, directory.NewState(all), host.Factory, canvas.NewPane(100, 30), mapview.Options{
		Clock:   clock,
		Metrics: m,
	})
	t.Cleanup(b.Close)
	if start {
		b.Start()
		clock.Advance(mapview.DefaultFitDelay)
	}
	return testEnv{h: NewHandler(log, b, host, m), browser: b, host: host, clock: clock}
}

func (e testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.h.Router().ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &v); err != nil {
		t.Fatalf("failed to decode body as json: %v\nbody=%s", err, rr.Body.String())
	}
	return v
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, rr)
	e, ok := body["error"].(map[string]any)
	if !ok {
		t.Fatalf("expected error envelope, got %v", body)
	}
	code, _ := e["code"].(string)
	return code
}

func TestReadyz_UnavailableUntilMounted(t *testing.T) {
	env := newTestEnv(t, false)

	rr := env.do(t, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "map_unavailable" {
		t.Fatalf("expected map_unavailable, got %q", code)
	}

	env.browser.Start()
	rr = env.do(t, http.MethodGet, "/readyz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	rr = env.do(t, http.MethodGet, "/healthz", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestMasjids_List_OK(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodGet, "/api/v1/masjids", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("expected json content-type, got %q", got)
	}

	body := decodeBody(t, rr)
	list, _ := body["masjids"].([]any)
	if len(list) != 10 {
		t.Fatalf("expected 10 masjids, got %d", len(list))
	}
	if body["selected"] != nil {
		t.Fatalf("expected no selection, got %v", body["selected"])
	}
	if body["view"] != "map" {
		t.Fatalf("expected map view, got %v", body["view"])
	}
}

func TestSearch_FiltersMarkers(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodPost, "/api/v1/search", `{"query":"pearland"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	list, _ := body["masjids"].([]any)
	if len(list) != 1 {
		t.Fatalf("expected 1 match, got %d", len(list))
	}

	ids := env.browser.Map().MarkerIDs()
	if len(ids) != 1 || ids[0] != 5 {
		t.Fatalf("expected marker for masjid 5 only, got %v", ids)
	}
	if !env.browser.Map().FitPending() {
		t.Fatalf("expected a viewport fit to be scheduled")
	}
}

func TestSearch_RejectsUnknownFields(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodPost, "/api/v1/search", `{"query":"x","limit":3}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "invalid_request" {
		t.Fatalf("expected invalid_request, got %q", code)
	}
}

func TestSelection_SelectAndClear(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodPut, "/api/v1/selection/3", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	sel, _ := body["selected"].(map[string]any)
	if sel == nil || sel["id"] != float64(3) {
		t.Fatalf("expected masjid 3 selected, got %v", body["selected"])
	}
	if body["popup"] != true {
		t.Fatalf("expected popup to be visible")
	}

	m := env.host.Current()
	if m == nil {
		t.Fatalf("expected a mounted map")
	}
	_, zoom := m.Camera()
	if zoom != mapview.DefaultSelectZoom {
		t.Fatalf("expected zoom %d, got %v", mapview.DefaultSelectZoom, zoom)
	}

	rr = env.do(t, http.MethodDelete, "/api/v1/selection", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if body := decodeBody(t, rr); body["selected"] != nil {
		t.Fatalf("expected selection cleared, got %v", body["selected"])
	}
}

func TestSelection_NotFound(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodPut, "/api/v1/selection/999", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
	if code := errorCode(t, rr); code != "not_found" {
		t.Fatalf("expected not_found, got %q", code)
	}

	rr = env.do(t, http.MethodPut, "/api/v1/selection/abc", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestView_ToggleUnmountsMap(t *testing.T) {
	env := newTestEnv(t, true)

	rr := env.do(t, http.MethodPut, "/api/v1/view/list", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	rr = env.do(t, http.MethodGet, "/api/v1/map", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 while list view is shown, got %d", rr.Code)
	}

	rr = env.do(t, http.MethodPut, "/api/v1/view/globe", "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "invalid_view" {
		t.Fatalf("expected invalid_view, got %q", code)
	}

	rr = env.do(t, http.MethodPut, "/api/v1/view/map", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr = env.do(t, http.MethodGet, "/api/v1/map", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 after remount, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	ids, _ := body["marker_ids"].([]any)
	if len(ids) != 10 {
		t.Fatalf("expected 10 markers after remount, got %d", len(ids))
	}
}

func TestMap_ClickBackgroundClearsSelection(t *testing.T) {
	env := newTestEnv(t, true)

	if rr := env.do(t, http.MethodPut, "/api/v1/selection/2", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	rr := env.do(t, http.MethodPost, "/api/v1/map/click", `{"x":0,"y":0}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	dir, _ := body["directory"].(map[string]any)
	if dir == nil || dir["selected"] != nil {
		t.Fatalf("expected selection cleared, got %v", body["directory"])
	}

	rr = env.do(t, http.MethodPost, "/api/v1/map/click", `{"x":1}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing y, got %d", rr.Code)
	}
}

func TestMap_ClickMarkerSelects(t *testing.T) {
	env := newTestEnv(t, true)

	m := env.host.Current()
	if m == nil {
		t.Fatalf("expected a mounted map")
	}
	var target masjid.Masjid
	for _, mj := range env.browser.State().Snapshot().Filtered {
		if mj.ID == 9 {
			target = mj
		}
	}
	col, row := m.CellOf(target.Location)

	rr := env.do(t, http.MethodPost, "/api/v1/map/click", `{"x":`+strconv.Itoa(col)+`,"y":`+strconv.Itoa(row)+`}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	sel := env.browser.State().Snapshot().Selected
	if sel == nil || sel.ID != 9 {
		t.Fatalf("expected masjid 9 selected, got %v", sel)
	}
}

func TestMetrics_CountsRequests(t *testing.T) {
	env := newTestEnv(t, true)
	env.do(t, http.MethodGet, "/api/v1/masjids", "")

	rr := env.do(t, http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	out := rr.Body.String()
	for _, want := range []string{
		`iqamahs_http_requests_total{method="GET",path="/api/v1/masjids",status="200"} 1`,
		"iqamahs_map_markers 10",
		"iqamahs_map_widget_mounts_total 1",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected metrics output to contain %q", want)
		}
	}
}
