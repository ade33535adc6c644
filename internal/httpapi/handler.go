// Package httpapi serves a local inspection API over a running browser. It is
// meant for debugging and scripted checks of the map engine.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"iqamahs/core-go/internal/canvas"
	"iqamahs/core-go/internal/directory"
	"iqamahs/core-go/internal/masjid"
	"iqamahs/core-go/internal/metrics"
)

type Handler struct {
	log     zerolog.Logger
	browser *directory.Browser
	host    *canvas.Host
	metrics *metrics.Metrics
}

func NewHandler(log zerolog.Logger, browser *directory.Browser, host *canvas.Host, m *metrics.Metrics) *Handler {
	return &Handler{log: log, browser: browser, host: host, metrics: m}
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(15 * time.Second))
	r.Use(h.accessLog)

	// Health
	r.Get("/healthz", h.handleHealthz)
	r.Get("/readyz", h.handleReadyZ)
	r.Handle("/metrics", h.metrics.Handler())

	// API
	r.Route("/api", func(r chi.Router) {
		r.Route("/v1", func(r chi.Router) {
			r.Get("/masjids", h.handleListMasjids)
			r.Post("/search", h.handleSearch)

			r.Route("/selection", func(r chi.Router) {
				r.Delete("/", h.handleClearSelection)
				r.Put("/{id}", h.handleSelect)
			})

			r.Put("/view/{mode}", h.handleSetView)

			r.Route("/map", func(r chi.Router) {
				r.Get("/", h.handleMapSnapshot)
				r.Post("/click", h.handleMapClick)
			})
		})
	})

	return r
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.ObserveHTTPRequest(r.Method, route, status, time.Since(start))

		h.log.Info().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Int64("duration_ms", time.Since(start).Milliseconds()).
			Msg("http_request")
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, msg string, details map[string]any) {
	resp := map[string]any{
		"error": map[string]any{
			"code":    code,
			"message": msg,
		},
	}
	if details != nil {
		resp["error"].(map[string]any)["details"] = details
	}
	h.writeJSON(w, status, resp)
}

func decodeJSONStrict(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return errors.New("unexpected extra data after JSON body")
		}
		return err
	}
	return nil
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *Handler) handleReadyZ(w http.ResponseWriter, r *http.Request) {
	if !h.browser.Map().Ready() {
		h.writeError(w, http.StatusServiceUnavailable, "map_unavailable", "map widget not mounted", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"ready": true})
}

type directoryState struct {
	Query    string          `json:"query"`
	Input    string          `json:"input"`
	View     string          `json:"view"`
	Masjids  []masjid.Masjid `json:"masjids"`
	Selected *masjid.Masjid  `json:"selected"`
	Popup    bool            `json:"popup"`
}

func toDirectoryState(s directory.Snapshot) directoryState {
	list := s.Filtered
	if list == nil {
		list = []masjid.Masjid{}
	}
	return directoryState{
		Query:    s.Query,
		Input:    s.Input,
		View:     string(s.View),
		Masjids:  list,
		Selected: s.Selected,
		Popup:    s.PopupVisible(),
	}
}

func (h *Handler) handleListMasjids(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, toDirectoryState(h.browser.State().Snapshot()))
}

type searchRequest struct {
	Query string `json:"query"`
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", map[string]any{"error": err.Error()})
		return
	}
	state := h.browser.State()
	state.Search(req.Query)
	h.writeJSON(w, http.StatusOK, toDirectoryState(state.Snapshot()))
}

func (h *Handler) handleSelect(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_id", "masjid id must be an integer", nil)
		return
	}
	state := h.browser.State()
	if err := state.SelectID(id); err != nil {
		if errors.Is(err, directory.ErrUnknownMasjid) {
			h.writeError(w, http.StatusNotFound, "not_found", "masjid not found", map[string]any{"id": id})
			return
		}
		h.log.Error().Err(err).Int("masjid_id", id).Msg("select failed")
		h.writeError(w, http.StatusInternalServerError, "internal_error", "failed to select masjid", nil)
		return
	}
	h.writeJSON(w, http.StatusOK, toDirectoryState(state.Snapshot()))
}

func (h *Handler) handleClearSelection(w http.ResponseWriter, r *http.Request) {
	state := h.browser.State()
	state.ClearSelection()
	h.writeJSON(w, http.StatusOK, toDirectoryState(state.Snapshot()))
}

func (h *Handler) handleSetView(w http.ResponseWriter, r *http.Request) {
	view, err := directory.ParseView(chi.URLParam(r, "mode"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_view", "view must be map or list", nil)
		return
	}
	state := h.browser.State()
	if err := state.SetView(view); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_view", err.Error(), nil)
		return
	}
	h.writeJSON(w, http.StatusOK, toDirectoryState(state.Snapshot()))
}

type mapState struct {
	canvas.Snapshot
	MarkerIDs  []int `json:"marker_ids"`
	FitPending bool  `json:"fit_pending"`
}

func (h *Handler) currentMap(w http.ResponseWriter) *canvas.Map {
	m := h.host.Current()
	if m == nil {
		h.writeError(w, http.StatusServiceUnavailable, "map_unavailable", "map widget not mounted", nil)
	}
	return m
}

func (h *Handler) mapState(m *canvas.Map) mapState {
	ctrl := h.browser.Map()
	return mapState{
		Snapshot:   m.Snapshot(),
		MarkerIDs:  ctrl.MarkerIDs(),
		FitPending: ctrl.FitPending(),
	}
}

func (h *Handler) handleMapSnapshot(w http.ResponseWriter, r *http.Request) {
	m := h.currentMap(w)
	if m == nil {
		return
	}
	h.writeJSON(w, http.StatusOK, h.mapState(m))
}

type clickRequest struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

func (h *Handler) handleMapClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeJSONStrict(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body", map[string]any{"error": err.Error()})
		return
	}
	if req.X == nil || req.Y == nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "x and y are required", nil)
		return
	}
	m := h.currentMap(w)
	if m == nil {
		return
	}
	m.Click(*req.X, *req.Y)
	h.writeJSON(w, http.StatusOK, map[string]any{
		"directory": toDirectoryState(h.browser.State().Snapshot()),
		"map":       h.mapState(m),
	})
}
