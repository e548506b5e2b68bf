package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequestsTotal counts calls to the shipping API and the maps provider.
	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "envios",
		Subsystem: "upstream",
		Name:      "requests_total",
		Help:      "Outbound HTTP requests by host, method and status code",
	}, []string{"host", "method", "status"}) // status "error" on transport failure

	// UpstreamDuration measures outbound request latency.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "envios",
		Subsystem: "upstream",
		Name:      "request_duration_seconds",
		Help:      "Outbound HTTP request latency",
		Buckets:   prometheus.DefBuckets,
	}, []string{"host", "method"})

	// QuotesTotal counts quote requests by outcome.
	QuotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "envios",
		Subsystem: "quote",
		Name:      "requests_total",
		Help:      "Quote requests by result",
	}, []string{"result"}) // ok / invalid / error

	// ReceiptBytes records receipt sizes before and after compression.
	ReceiptBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "envios",
		Subsystem: "receipt",
		Name:      "bytes",
		Help:      "Receipt image size in bytes",
		Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 10),
	}, []string{"stage"}) // original / compressed

	// ActiveSessions is the number of sessions held in memory.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "envios",
		Subsystem: "session",
		Name:      "active",
		Help:      "Sessions currently held in memory",
	})

	// SessionLogoutsTotal counts logouts by reason.
	SessionLogoutsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "envios",
		Subsystem: "session",
		Name:      "logouts_total",
		Help:      "Session terminations by reason",
	}, []string{"reason"}) // explicit / expired
)

// ObserveUpstream records one outbound request. A status of 0 means the transport failed.
func ObserveUpstream(host, method string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	UpstreamRequestsTotal.WithLabelValues(host, method, label).Inc()
	UpstreamDuration.WithLabelValues(host, method).Observe(d.Seconds())
}
