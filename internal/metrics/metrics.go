package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "goals",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "goals",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "goals",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	storageBackend = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "goals",
			Subsystem: "storage",
			Name:      "backend_info",
			Help:      "Storage backend selected at startup (value is always 1).",
		},
		[]string{"backend"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		storageBackend,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

func SetStorageBackend(name string) {
	storageBackend.Reset()
	storageBackend.WithLabelValues(name).Set(1)
}

func RequestStarted() {
	httpInFlight.Inc()
}

// RequestFinished records a completed request and releases its in-flight slot.
func RequestFinished(method, path string, status int, duration time.Duration) {
	httpInFlight.Dec()

	p := CanonicalPath(path)
	m := strings.ToUpper(method)
	httpRequests.WithLabelValues(m, p, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(m, p).Observe(duration.Seconds())
}

// unmatchedPath labels every request that does not hit a known route.
const unmatchedPath = "other"

var staticPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// CanonicalPath collapses ids out of API paths to keep label cardinality low.
// Unknown paths share a single label.
func CanonicalPath(raw string) string {
	if staticPaths[raw] {
		return raw
	}

	parts := strings.Split(strings.Trim(raw, "/"), "/")
	if len(parts) < 2 || parts[0] != "api" {
		return unmatchedPath
	}

	switch {
	case len(parts) == 3 && parts[1] == "auth" && parts[2] == "user":
		return "/api/auth/user"
	case len(parts) == 4 && parts[1] == "auth" && parts[2] == "user":
		return "/api/auth/user/:uid"
	case len(parts) == 2 && parts[1] == "goals":
		return "/api/goals"
	case len(parts) == 3 && parts[1] == "goals":
		return "/api/goals/:id"
	case len(parts) == 4 && parts[1] == "goals" && parts[3] == "export":
		return "/api/goals/:userId/export"
	case len(parts) == 3 && parts[1] == "statistics":
		return "/api/statistics/:userId"
	case len(parts) == 3 && parts[1] == "categories":
		return "/api/categories/:userId"
	default:
		return unmatchedPath
	}
}
