package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_http_requests_total",
		Help: "HTTP requests by service, route and status code",
	}, []string{"service", "route", "code"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "projecthub_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	}, []string{"service", "route"})

	// GraphRejections counts task graph mutations refused by integrity checks.
	GraphRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_graph_rejections_total",
		Help: "Task graph mutations rejected by graph (hierarchy, dependency) and reason",
	}, []string{"graph", "reason"})

	// UserDeletions counts deletion requests by outcome.
	UserDeletions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_user_deletions_total",
		Help: "User deletion requests by result (deleted, blocked, cleanup_failed, rejected, error)",
	}, []string{"result"})

	// CleanupRows counts rows deactivated or unassigned by user cleanup.
	CleanupRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "projecthub_cleanup_rows_total",
		Help: "Rows touched by user cleanup per service",
	}, []string{"service"})
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records request counts and latency labelled by the matched mux route.
func Middleware(service string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := "unmatched"
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			httpRequestsTotal.WithLabelValues(service, route, strconv.Itoa(rec.status)).Inc()
			httpRequestDuration.WithLabelValues(service, route).Observe(time.Since(start).Seconds())
		})
	}
}
