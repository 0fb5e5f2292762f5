package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jobpulse/jobpulse/server/internal/analytics"
	"github.com/jobpulse/jobpulse/server/internal/metrics"
)

// Handler is the HTTP handler for the analytics API.
// It computes reports from the engine's current table on every request.
type Handler struct {
	engine  *analytics.Engine
	metrics *metrics.Registry
	mux     *http.ServeMux
}

// New creates a Handler wired to the given engine and metrics registry and
// registers all routes.
func New(eng *analytics.Engine, reg *metrics.Registry) http.Handler {
	h := &Handler{engine: eng, metrics: reg, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/analytics", h.analytics)
	h.mux.HandleFunc("/api/health", h.health)
	h.mux.HandleFunc("/metrics", h.metricsText)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
	h.mux.ServeHTTP(sw, r)
	h.metrics.ObserveRequest(routeLabel(r.URL.Path), sw.code)
}

// --- route handlers ---------------------------------------------------------

// analytics returns GET /api/analytics, the full ranked report.
func (h *Handler) analytics(w http.ResponseWriter, r *http.Request) {
	if !readOnly(r) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	report, tbl, err := h.engine.Report()
	if err != nil {
		jsonErr(w, http.StatusServiceUnavailable, "dataset unavailable")
		return
	}
	h.metrics.ObserveReport(time.Since(start))

	// The report is a pure function of the table, so the table fingerprint
	// plus the media type identifies the representation.
	asCBOR := wantsCBOR(r)
	etag := `"` + tbl.Fingerprint + `"`
	if asCBOR {
		etag = `"` + tbl.Fingerprint + `-cbor"`
	}
	w.Header().Add("Vary", "Accept")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatch(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	resp := NewAnalyticsResponse(report)
	if asCBOR {
		cborResp(w, http.StatusOK, resp)
		return
	}
	jsonResp(w, http.StatusOK, resp)
}

// metricsText returns GET /metrics in the Prometheus text format.
func (h *Handler) metricsText(w http.ResponseWriter, r *http.Request) {
	if !readOnly(r) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	h.metrics.Handler().ServeHTTP(w, r)
}

// health returns GET /api/health: whether a dataset is loaded and its shape.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	if !readOnly(r) {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	tbl := h.engine.Table()
	if tbl == nil {
		jsonResp(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		return
	}
	jsonResp(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Source:      tbl.Source,
		Rows:        tbl.Len(),
		Columns:     tbl.Columns(),
		Fingerprint: tbl.Fingerprint,
		LoadedAt:    tbl.LoadedAt.UTC().Format(time.RFC3339),
	})
}

// --- helpers ----------------------------------------------------------------

func readOnly(r *http.Request) bool {
	return r.Method == http.MethodGet || r.Method == http.MethodHead
}

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// etagMatch implements the weak comparison of If-None-Match against etag.
func etagMatch(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		// A tag Compress suffixed validates the same underlying body.
		candidate = strings.Replace(candidate, gzipETagSuffix+`"`, `"`, 1)
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}

// routeLabel bounds the metrics path label to the registered routes.
func routeLabel(path string) string {
	switch path {
	case "/api/analytics", "/api/health", "/metrics":
		return path
	default:
		return "other"
	}
}

// statusWriter captures the response code for request metrics.
type statusWriter struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.code = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
