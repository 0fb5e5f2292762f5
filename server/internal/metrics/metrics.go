// Package metrics keeps the service counters and serves them in the
// Prometheus text exposition format.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metric family names.
const (
	RequestsTotal  = "jobpulse_http_requests_total"
	ReportDuration = "jobpulse_report_duration_seconds"
	DatasetRows    = "jobpulse_dataset_rows"
	ReloadsTotal   = "jobpulse_dataset_reloads_total"
)

type requestKey struct {
	path string
	code int
}

// Registry accumulates service metrics. All methods are safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	requests  map[requestKey]uint64
	reports   uint64
	reportSum float64
	rows      int
	reloads   map[string]uint64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		requests: make(map[requestKey]uint64),
		reloads:  make(map[string]uint64),
	}
}

// ObserveRequest counts one served request.
func (r *Registry) ObserveRequest(path string, code int) {
	r.mu.Lock()
	r.requests[requestKey{path, code}]++
	r.mu.Unlock()
}

// ObserveReport records how long one report took to compute.
func (r *Registry) ObserveReport(d time.Duration) {
	r.mu.Lock()
	r.reports++
	r.reportSum += d.Seconds()
	r.mu.Unlock()
}

// SetDataset records the row count of the table being served.
func (r *Registry) SetDataset(rows int) {
	r.mu.Lock()
	r.rows = rows
	r.mu.Unlock()
}

// ObserveReload counts a dataset reload attempt by outcome.
func (r *Registry) ObserveReload(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	r.mu.Lock()
	r.reloads[result]++
	r.mu.Unlock()
}

// Gather snapshots the registry as metric families, sorted by name and
// with label sets in a stable order. Families with no samples are omitted.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := make([]requestKey, 0, len(r.requests))
	for k := range r.requests {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].path != keys[j].path {
			return keys[i].path < keys[j].path
		}
		return keys[i].code < keys[j].code
	})
	requests := &dto.MetricFamily{
		Name: proto.String(RequestsTotal),
		Help: proto.String("HTTP requests served, by path and status code."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range keys {
		requests.Metric = append(requests.Metric, &dto.Metric{
			Label: []*dto.LabelPair{
				{Name: proto.String("code"), Value: proto.String(strconv.Itoa(k.code))},
				{Name: proto.String("path"), Value: proto.String(k.path)},
			},
			Counter: &dto.Counter{Value: proto.Float64(float64(r.requests[k]))},
		})
	}

	reloads := &dto.MetricFamily{
		Name: proto.String(ReloadsTotal),
		Help: proto.String("Dataset reload attempts, by result."),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, result := range []string{"failure", "success"} {
		reloads.Metric = append(reloads.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: proto.String("result"), Value: proto.String(result)}},
			Counter: &dto.Counter{Value: proto.Float64(float64(r.reloads[result]))},
		})
	}

	families := []*dto.MetricFamily{
		reloads,
		{
			Name: proto.String(DatasetRows),
			Help: proto.String("Rows in the dataset currently served."),
			Type: dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{
				Gauge: &dto.Gauge{Value: proto.Float64(float64(r.rows))},
			}},
		},
		requests,
		{
			Name: proto.String(ReportDuration),
			Help: proto.String("Time spent computing analytics reports."),
			Type: dto.MetricType_SUMMARY.Enum(),
			Metric: []*dto.Metric{{
				Summary: &dto.Summary{
					SampleCount: proto.Uint64(r.reports),
					SampleSum:   proto.Float64(r.reportSum),
				},
			}},
		},
	}

	// The text format rejects families without samples.
	out := families[:0]
	for _, mf := range families {
		if len(mf.Metric) > 0 {
			out = append(out, mf)
		}
	}
	return out
}

// WriteText encodes all families in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range r.Gather() {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Handler serves the registry at GET /metrics.
func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet && req.Method != http.MethodHead {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
		r.WriteText(w) //nolint:errcheck
	})
}
