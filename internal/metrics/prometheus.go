//go:build !noprom

package metrics

import (
	"fmt"
	"net/http"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	stmtTotal    *prom.CounterVec
	stmtSeconds  *prom.HistogramVec
	registrySize *prom.GaugeVec
}

func (p *promRecorder) IncStmtTotal(op string, success bool) {
	p.stmtTotal.WithLabelValues(op, fmt.Sprintf("%t", success)).Inc()
}

func (p *promRecorder) ObserveStmtSeconds(op string, success bool, seconds float64) {
	p.stmtSeconds.WithLabelValues(op, fmt.Sprintf("%t", success)).Observe(seconds)
}

func (p *promRecorder) SetRegistrySize(conn string, n int) {
	p.registrySize.WithLabelValues(conn).Set(float64(n))
}

func enablePrometheus(addr string) error {
	registry := prom.NewRegistry()
	p := &promRecorder{
		stmtTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "stmt_ops_total",
			Help: "Total number of statement operations",
		}, []string{"op", "success"}),
		stmtSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "stmt_op_seconds",
			Help:    "Statement operation duration in seconds",
			Buckets: prom.DefBuckets,
		}, []string{"op", "success"}),
		registrySize: prom.NewGaugeVec(prom.GaugeOpts{
			Name: "stmt_registry_size",
			Help: "Live prepared statements per connection",
		}, []string{"conn"}),
	}

	registry.MustRegister(p.stmtTotal, p.stmtSeconds, p.registrySize)
	SetRecorder(p)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() { _ = http.ListenAndServe(addr, mux) }()
	return nil
}
