package bugzilla

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK              = "ok"
	resultConnectionError = "connection_error"
	resultError           = "error"
)

var requestsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "newbugs_bugzilla_requests_total",
	Help: "Requests made to the Bugzilla REST API, by result",
}, []string{"result"})

var requestDurationMetric = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "newbugs_bugzilla_request_millis",
	Help:    "Milliseconds spent waiting on the Bugzilla REST API",
	Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
})

var bugsYieldedMetric = promauto.NewCounter(prometheus.CounterOpts{
	Name: "newbugs_bugs_yielded_total",
	Help: "Bug records handed to callers after link annotation",
})
