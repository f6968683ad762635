// Package metrics keeps process-local counters and renders them in the
// Prometheus text exposition format on /metrics.
package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	analysesStarted  atomic.Uint64
	visionRetries    atomic.Uint64
	visionCacheHits  atomic.Uint64
	schemaViolations atomic.Uint64
	httpPanics       atomic.Uint64

	analysesCompleted = newLabeled("status")
	analysesFailed    = newLabeled("reason")
	httpResponses     = newLabeled("class")

	analysisLatency = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 20000, 30000})
)

func IncAnalysisStarted() { analysesStarted.Add(1) }

// IncAnalysisCompleted counts a finished analysis by its condition status.
func IncAnalysisCompleted(status string) { analysesCompleted.inc(status) }

// IncAnalysisFailed counts a failed analysis; reason is a short fixed token
// such as "upstream", "timeout" or "inventory".
func IncAnalysisFailed(reason string) { analysesFailed.inc(reason) }

func IncVisionRetry() { visionRetries.Add(1) }

func IncVisionCacheHit() { visionCacheHits.Add(1) }

// IncSchemaViolation counts model output that decoded but did not match the
// documented shape.
func IncSchemaViolation() { schemaViolations.Add(1) }

func IncHTTPPanic() { httpPanics.Add(1) }

// ObserveHTTPResponse counts a response by status class (2xx, 4xx, ...).
func ObserveHTTPResponse(status int) {
	httpResponses.inc(strconv.Itoa(status/100) + "xx")
}

// ObserveAnalysisDurationMs records end-to-end analysis latency.
func ObserveAnalysisDurationMs(ms float64) {
	analysisLatency.observe(max(ms, 0))
}

func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4", []byte(Render()))
	}
}

// Render writes every series in exposition format.
func Render() string {
	var buf bytes.Buffer
	counter(&buf, "analysis_started_total", "Tire analyses started", analysesStarted.Load())
	analysesCompleted.write(&buf, "analysis_completed_total", "Tire analyses completed, by condition status")
	analysesFailed.write(&buf, "analysis_failed_total", "Tire analyses failed, by reason")
	counter(&buf, "vision_retries_total", "Vision calls retried after a transient failure", visionRetries.Load())
	counter(&buf, "vision_cache_hits_total", "Vision responses served from cache", visionCacheHits.Load())
	counter(&buf, "analysis_schema_violations_total", "Model responses not matching the documented shape", schemaViolations.Load())
	httpResponses.write(&buf, "http_responses_total", "HTTP responses, by status class")
	counter(&buf, "http_panics_total", "Handler panics recovered", httpPanics.Load())
	analysisLatency.write(&buf, "analysis_duration_ms", "Analysis duration in milliseconds")
	return buf.String()
}

func counter(buf *bytes.Buffer, name, help string, v uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", name, help, name, name, v)
}

// labeled is a counter family with a single label.
type labeled struct {
	label  string
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeled(label string) *labeled {
	return &labeled{label: label, values: make(map[string]uint64)}
}

func (l *labeled) inc(value string) {
	if value == "" {
		value = "unknown"
	}
	l.mu.Lock()
	l.values[value]++
	l.mu.Unlock()
}

func (l *labeled) get(value string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.values[value]
}

func (l *labeled) write(buf *bytes.Buffer, name, help string) {
	l.mu.Lock()
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	snapshot := make([]uint64, len(keys))
	for i, k := range keys {
		snapshot[i] = l.values[k]
	}
	l.mu.Unlock()

	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s counter\n", name, help, name)
	for i, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, l.label, k, snapshot[i])
	}
}

type histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []uint64 // per bucket, not cumulative
	sum    float64
	total  uint64
}

func newHistogram(bounds []float64) *histogram {
	return &histogram{bounds: bounds, counts: make([]uint64, len(bounds))}
}

func (h *histogram) observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total++
	h.sum += v
	if i := sort.SearchFloat64s(h.bounds, v); i < len(h.bounds) {
		h.counts[i]++
	}
}

func (h *histogram) write(buf *bytes.Buffer, name, help string) {
	h.mu.Lock()
	counts := append([]uint64(nil), h.counts...)
	sum, total := h.sum, h.total
	h.mu.Unlock()

	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s histogram\n", name, help, name)
	var running uint64
	for i, bound := range h.bounds {
		running += counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=%q} %d\n", name, strconv.FormatFloat(bound, 'f', -1, 64), running)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, total)
	fmt.Fprintf(buf, "%s_sum %s\n", name, strconv.FormatFloat(sum, 'f', -1, 64))
	fmt.Fprintf(buf, "%s_count %d\n", name, total)
}
