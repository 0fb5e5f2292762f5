package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/gzip"

	"github.com/jobpulse/jobpulse/server/internal/analytics"
	"github.com/jobpulse/jobpulse/server/internal/api"
	"github.com/jobpulse/jobpulse/server/internal/dataset"
	"github.com/jobpulse/jobpulse/server/internal/metrics"
)

// --- test helpers -----------------------------------------------------------

var header = []string{"job_skills", "job level", "job_type", "company", "search_city", "job_summary"}

func sampleTable() *dataset.Table {
	return dataset.FromRecords(header, [][]string{
		{"Python, SQL", "Mid senior", "Onsite", "Acme", "Austin", "We are the best team. Join us!"},
		{"python", "Associate", "Remote", "Acme", "Boston", "Join a growing team."},
		{"SQL, Excel", "Mid senior", "Onsite", "Globex", "Austin", ""},
	})
}

func newHandler(tbl *dataset.Table) (http.Handler, *metrics.Registry) {
	reg := metrics.New()
	return api.New(analytics.NewEngine(dataset.NewStore(tbl)), reg), reg
}

func do(t *testing.T, h http.Handler, method, path string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, h, http.MethodGet, path, nil)
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- /api/analytics ---------------------------------------------------------

func TestAnalytics_Shape(t *testing.T) {
	h, _ := newHandler(sampleTable())
	rr := get(t, h, "/api/analytics")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q", ct)
	}

	var raw map[string][]map[string]interface{}
	decode(t, rr, &raw)

	wantKeys := map[string]string{
		"top_skills":        "skill",
		"job_levels":        "level",
		"job_types":         "job_type",
		"top_companies":     "company",
		"top_search_cities": "city",
		"top_summary_words": "word",
	}
	if len(raw) != len(wantKeys) {
		t.Errorf("top-level keys: got %d, want %d", len(raw), len(wantKeys))
	}
	for key, labelKey := range wantKeys {
		list, ok := raw[key]
		if !ok {
			t.Errorf("missing key %q", key)
			continue
		}
		for _, entry := range list {
			if _, ok := entry[labelKey]; !ok {
				t.Errorf("%s entry %v: missing %q", key, entry, labelKey)
			}
			if _, ok := entry["count"]; !ok {
				t.Errorf("%s entry %v: missing count", key, entry)
			}
		}
	}
}

func TestAnalytics_Values(t *testing.T) {
	h, _ := newHandler(sampleTable())
	rr := get(t, h, "/api/analytics")

	var resp api.AnalyticsResponse
	decode(t, rr, &resp)

	wantSkills := []api.SkillCount{{"python", 2}, {"sql", 2}, {"excel", 1}}
	if !reflect.DeepEqual(resp.TopSkills, wantSkills) {
		t.Errorf("top_skills: got %v, want %v", resp.TopSkills, wantSkills)
	}
	wantWords := []api.WordCount{{"join", 2}, {"team", 2}, {"best", 1}, {"growing", 1}}
	if !reflect.DeepEqual(resp.TopSummaryWords, wantWords) {
		t.Errorf("top_summary_words: got %v, want %v", resp.TopSummaryWords, wantWords)
	}
	if len(resp.JobTypes) != 2 || resp.JobTypes[0] != (api.JobTypeCount{JobType: "onsite", Count: 2}) {
		t.Errorf("job_types: got %v", resp.JobTypes)
	}
}

func TestAnalytics_EmptyTable(t *testing.T) {
	h, _ := newHandler(dataset.FromRecords(header, nil))
	rr := get(t, h, "/api/analytics")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if strings.Contains(body, "null") {
		t.Errorf("empty lists must encode as []: %s", body)
	}
	var raw map[string][]interface{}
	decode(t, rr, &raw)
	for key, list := range raw {
		if len(list) != 0 {
			t.Errorf("%s: got %v, want empty", key, list)
		}
	}
}

func TestAnalytics_NoDataset(t *testing.T) {
	h, _ := newHandler(nil)
	rr := get(t, h, "/api/analytics")

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", rr.Code)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["error"] == "" {
		t.Error("expected error message in body")
	}
}

func TestAnalytics_MethodNotAllowed(t *testing.T) {
	h, _ := newHandler(sampleTable())
	for _, m := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		if rr := do(t, h, m, "/api/analytics", nil); rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s: got %d, want 405", m, rr.Code)
		}
	}
}

func TestAnalytics_ETag(t *testing.T) {
	tbl := sampleTable()
	h, _ := newHandler(tbl)

	rr := get(t, h, "/api/analytics")
	etag := rr.Header().Get("ETag")
	if etag != `"`+tbl.Fingerprint+`"` {
		t.Fatalf("ETag: got %q, want quoted fingerprint", etag)
	}

	rr = do(t, h, http.MethodGet, "/api/analytics", map[string]string{"If-None-Match": etag})
	if rr.Code != http.StatusNotModified {
		t.Errorf("matching If-None-Match: got %d, want 304", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Errorf("304 body: got %q, want empty", rr.Body.String())
	}

	rr = do(t, h, http.MethodGet, "/api/analytics", map[string]string{"If-None-Match": `"stale", W/` + etag})
	if rr.Code != http.StatusNotModified {
		t.Errorf("list with weak match: got %d, want 304", rr.Code)
	}

	rr = do(t, h, http.MethodGet, "/api/analytics", map[string]string{"If-None-Match": `"stale"`})
	if rr.Code != http.StatusOK {
		t.Errorf("stale If-None-Match: got %d, want 200", rr.Code)
	}
}

func TestAnalytics_Idempotent(t *testing.T) {
	h, _ := newHandler(sampleTable())
	first := get(t, h, "/api/analytics").Body.String()
	second := get(t, h, "/api/analytics").Body.String()
	if first != second {
		t.Errorf("responses differ:\n%s\n%s", first, second)
	}
}

func TestAnalytics_CBOR(t *testing.T) {
	h, _ := newHandler(sampleTable())

	rr := do(t, h, http.MethodGet, "/api/analytics", map[string]string{"Accept": api.ContentTypeCBOR})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != api.ContentTypeCBOR {
		t.Errorf("Content-Type: got %q", ct)
	}
	var fromCBOR api.AnalyticsResponse
	if err := cbor.Unmarshal(rr.Body.Bytes(), &fromCBOR); err != nil {
		t.Fatalf("decode CBOR: %v", err)
	}

	var fromJSON api.AnalyticsResponse
	decode(t, get(t, h, "/api/analytics"), &fromJSON)

	if !reflect.DeepEqual(fromCBOR, fromJSON) {
		t.Errorf("CBOR and JSON reports differ:\n%v\n%v", fromCBOR, fromJSON)
	}

	// Keys follow the json tags.
	var generic map[string]interface{}
	if err := cbor.Unmarshal(rr.Body.Bytes(), &generic); err != nil {
		t.Fatalf("decode CBOR map: %v", err)
	}
	if _, ok := generic["top_search_cities"]; !ok {
		t.Errorf("CBOR keys: got %v", generic)
	}
}

func TestAnalytics_Negotiation(t *testing.T) {
	h, _ := newHandler(sampleTable())

	tests := []struct {
		accept string
		want   string
	}{
		{"", "application/json"},
		{"application/json", "application/json"},
		{"application/cbor", api.ContentTypeCBOR},
		{"application/cbor;q=0, application/json", "application/json"},
		{"application/cbor;q=0", "application/json"},
		{"application/json;q=0.5, application/cbor", api.ContentTypeCBOR},
		{"application/cbor;q=0.4, application/json;q=0.9", "application/json"},
		{"*/*", "application/json"},
		{"text/html, application/*;q=0.8, application/cbor;q=0.9", api.ContentTypeCBOR},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			rr := do(t, h, http.MethodGet, "/api/analytics", map[string]string{"Accept": tt.accept})
			if rr.Code != http.StatusOK {
				t.Fatalf("status: got %d, want 200", rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != tt.want {
				t.Errorf("Content-Type: got %q, want %q", ct, tt.want)
			}
		})
	}
}

func TestAnalytics_RepresentationValidators(t *testing.T) {
	tbl := sampleTable()
	h, _ := newHandler(tbl)

	asJSON := get(t, h, "/api/analytics")
	asCBOR := do(t, h, http.MethodGet, "/api/analytics", map[string]string{"Accept": api.ContentTypeCBOR})

	for name, rr := range map[string]*httptest.ResponseRecorder{"json": asJSON, "cbor": asCBOR} {
		if vary := rr.Header().Values("Vary"); !containsToken(vary, "Accept") {
			t.Errorf("%s: Vary: got %v, want Accept", name, vary)
		}
	}

	jsonTag, cborTag := asJSON.Header().Get("ETag"), asCBOR.Header().Get("ETag")
	if jsonTag == cborTag {
		t.Fatalf("JSON and CBOR share ETag %q", jsonTag)
	}
	if want := `"` + tbl.Fingerprint + `-cbor"`; cborTag != want {
		t.Errorf("CBOR ETag: got %q, want %q", cborTag, want)
	}

	// The JSON tag must not validate a CBOR request, and vice versa.
	rr := do(t, h, http.MethodGet, "/api/analytics", map[string]string{
		"Accept":        api.ContentTypeCBOR,
		"If-None-Match": jsonTag,
	})
	if rr.Code != http.StatusOK {
		t.Errorf("CBOR request with JSON ETag: got %d, want 200", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/api/analytics", map[string]string{"If-None-Match": cborTag})
	if rr.Code != http.StatusOK {
		t.Errorf("JSON request with CBOR ETag: got %d, want 200", rr.Code)
	}
	rr = do(t, h, http.MethodGet, "/api/analytics", map[string]string{
		"Accept":        api.ContentTypeCBOR,
		"If-None-Match": cborTag,
	})
	if rr.Code != http.StatusNotModified {
		t.Errorf("CBOR request with CBOR ETag: got %d, want 304", rr.Code)
	}
	if !containsToken(rr.Header().Values("Vary"), "Accept") {
		t.Error("304 response missing Vary: Accept")
	}
}

func containsToken(values []string, token string) bool {
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.EqualFold(strings.TrimSpace(part), token) {
				return true
			}
		}
	}
	return false
}

func TestAnalytics_Concurrent(t *testing.T) {
	h, _ := newHandler(sampleTable())
	want := get(t, h, "/api/analytics").Body.String()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/analytics", nil))
			if rr.Body.String() != want {
				t.Error("concurrent response differs")
			}
		}()
	}
	wg.Wait()
}

// --- compression ------------------------------------------------------------

func TestCompress(t *testing.T) {
	var rows [][]string
	for i := 0; i < 25; i++ {
		rows = append(rows, []string{fmt.Sprintf("a rather long and descriptive skill name %02d", i)})
	}
	h, _ := newHandler(dataset.FromRecords([]string{"job_skills"}, rows))
	gz, err := api.Compress(h)
	if err != nil {
		t.Fatalf("Compress: %v", err)
	}

	rr := do(t, gz, http.MethodGet, "/api/analytics", map[string]string{"Accept-Encoding": "gzip"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	if enc := rr.Header().Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("Content-Encoding: got %q, want gzip", enc)
	}
	gzipTag := rr.Header().Get("ETag")

	zr, err := gzip.NewReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	var resp api.AnalyticsResponse
	if err := json.NewDecoder(zr).Decode(&resp); err != nil {
		t.Fatalf("decode gzipped JSON: %v", err)
	}
	if len(resp.TopSkills) != analytics.LimitSkills {
		t.Errorf("top_skills: got %d entries, want %d", len(resp.TopSkills), analytics.LimitSkills)
	}

	// Without Accept-Encoding the body is plain JSON.
	rr = get(t, gz, "/api/analytics")
	if enc := rr.Header().Get("Content-Encoding"); enc != "" {
		t.Errorf("Content-Encoding without gzip accept: got %q", enc)
	}
	plainTag := rr.Header().Get("ETag")

	// The two encodings are different bytes, so they need different strong tags.
	if gzipTag == plainTag {
		t.Errorf("gzip and identity share ETag %q", plainTag)
	}
	if !strings.HasSuffix(gzipTag, `-gzip"`) {
		t.Errorf("gzip ETag: got %q, want -gzip suffix", gzipTag)
	}

	// A client revalidating its gzip copy still gets 304.
	rr = do(t, gz, http.MethodGet, "/api/analytics", map[string]string{
		"Accept-Encoding": "gzip",
		"If-None-Match":   gzipTag,
	})
	if rr.Code != http.StatusNotModified {
		t.Errorf("If-None-Match with gzip ETag: got %d, want 304", rr.Code)
	}
}

// --- /api/health ------------------------------------------------------------

func TestHealth(t *testing.T) {
	tbl := sampleTable()
	h, _ := newHandler(tbl)
	rr := get(t, h, "/api/health")

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "ok" || resp.Rows != 3 {
		t.Errorf("health: got %+v", resp)
	}
	if !reflect.DeepEqual(resp.Columns, header) {
		t.Errorf("columns: got %v, want %v", resp.Columns, header)
	}
	if resp.Fingerprint != tbl.Fingerprint {
		t.Errorf("fingerprint: got %q, want %q", resp.Fingerprint, tbl.Fingerprint)
	}
}

func TestHealth_NoDataset(t *testing.T) {
	h, _ := newHandler(nil)
	rr := get(t, h, "/api/health")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: got %d, want 503", rr.Code)
	}
	var resp api.HealthResponse
	decode(t, rr, &resp)
	if resp.Status != "unavailable" {
		t.Errorf("status field: got %q", resp.Status)
	}
}

// --- metrics ----------------------------------------------------------------

func TestRequestsAreCounted(t *testing.T) {
	h, _ := newHandler(sampleTable())
	get(t, h, "/api/analytics")
	get(t, h, "/api/analytics")
	get(t, h, "/nope")

	rr := get(t, h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, want := range []string{
		`jobpulse_http_requests_total{code="200",path="/api/analytics"} 2`,
		`jobpulse_http_requests_total{code="404",path="other"} 1`,
		`jobpulse_report_duration_seconds_count 2`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q:\n%s", want, body)
		}
	}
}

func TestMetrics_MethodNotAllowed(t *testing.T) {
	h, _ := newHandler(sampleTable())

	rr := do(t, h, http.MethodPost, "/metrics", nil)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status: got %d, want 405", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}
	var resp map[string]string
	decode(t, rr, &resp)
	if resp["error"] != "method not allowed" {
		t.Errorf("error: got %q", resp["error"])
	}
}
