package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kevinxiao27/vlist/ot"
	"github.com/kevinxiao27/vlist/vlist"
)

const namespace = "vlist"

// Recorder holds the service's Prometheus collectors. A Recorder built with
// a nil Registerer works but exports nothing.
type Recorder struct {
	// submissions counts processed operations.
	// Labels: kind (submitted op kind), outcome
	submissions *prometheus.CounterVec

	// processSeconds measures ProcessOperation latency.
	processSeconds prometheus.Histogram

	// version tracks the current version of each list.
	// Labels: list
	version *prometheus.GaugeVec

	// subscriberDrops counts subscribers dropped for falling behind.
	// Labels: list
	subscriberDrops *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		submissions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "submissions_total",
			Help:      "Operations processed, by submitted kind and outcome",
		}, []string{"kind", "outcome"}),
		processSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "process_seconds",
			Help:      "Time spent reconciling and committing one operation",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		}),
		version: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "list",
			Name:      "version",
			Help:      "Current version of each list",
		}, []string{"list"}),
		subscriberDrops: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hub",
			Name:      "subscriber_drops_total",
			Help:      "Subscribers dropped because their buffer was full",
		}, []string{"list"}),
	}
}

func (r *Recorder) RecordSubmission(kind ot.OpType, outcome vlist.Outcome, took time.Duration) {
	r.submissions.WithLabelValues(string(kind), outcome.String()).Inc()
	r.processSeconds.Observe(took.Seconds())
}

func (r *Recorder) RecordVersion(listID string, version int) {
	r.version.WithLabelValues(listID).Set(float64(version))
}

func (r *Recorder) RecordDrop(listID string) {
	r.subscriberDrops.WithLabelValues(listID).Inc()
}
