// Package metrics records compile, GitHub and publish activity as
// Prometheus metrics. A nil *Recorder is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "readmepro"

// Recorder owns the metric collectors. It satisfies github.Observer.
type Recorder struct {
	reg             *prom.Registry
	compileTotal    prom.Counter
	compileDuration prom.Histogram
	githubRequests  *prom.CounterVec
	publishTotal    *prom.CounterVec
}

// New creates a Recorder and registers its collectors on reg, or on a fresh
// registry when reg is nil.
func New(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		reg: reg,
		compileTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "compile_total",
			Help:      "Number of README compilations",
		}),
		compileDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "compile_duration_seconds",
			Help:      "Duration of README compilations",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05},
		}),
		githubRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "github_requests_total",
			Help:      "GitHub API requests by operation and result",
		}, []string{"op", "result"}),
		publishTotal: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "publish_total",
			Help:      "README publish attempts by result",
		}, []string{"result"}),
	}
	reg.MustRegister(r.compileTotal, r.compileDuration, r.githubRequests, r.publishTotal)
	return r
}

// ObserveCompile records one compilation that took d.
func (r *Recorder) ObserveCompile(d time.Duration) {
	if r == nil {
		return
	}
	r.compileTotal.Inc()
	r.compileDuration.Observe(d.Seconds())
}

func (r *Recorder) ObserveGitHubRequest(op, result string) {
	if r == nil {
		return
	}
	r.githubRequests.WithLabelValues(op, result).Inc()
}

// IncPublish records a publish attempt; result is "success" or "failed".
func (r *Recorder) IncPublish(result string) {
	if r == nil {
		return
	}
	r.publishTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
