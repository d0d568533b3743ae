package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	uplinksQueued = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "loractl",
			Subsystem: "uplink",
			Name:      "queued_total",
			Help:      "Payloads accepted into the transmit queue.",
		},
	)
	uplinksDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loractl",
			Subsystem: "uplink",
			Name:      "delivered_total",
			Help:      "Uplinks acknowledged by the module, by attempt count.",
		},
		[]string{"attempts"},
	)
	uplinksDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loractl",
			Subsystem: "uplink",
			Name:      "dropped_total",
			Help:      "Payloads dropped without delivery.",
		},
		[]string{"reason"},
	)
	uplinkDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "loractl",
			Subsystem: "uplink",
			Name:      "attempt_sequence_seconds",
			Help:      "Duration of one delivery attempt sequence.",
			Buckets:   prometheus.DefBuckets,
		},
	)
	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "loractl",
			Subsystem: "queue",
			Name:      "depth",
			Help:      "Uplinks waiting in the transmit queue.",
		},
	)
	joinOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loractl",
			Subsystem: "join",
			Name:      "outcomes_total",
			Help:      "OTAA join attempts by terminal outcome.",
		},
		[]string{"outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			uplinksQueued, uplinksDelivered, uplinksDropped,
			uplinkDuration, queueDepth, joinOutcomes,
		)
	})
}

func RecordQueued(depth int) {
	RegisterMetrics()
	uplinksQueued.Inc()
	queueDepth.Set(float64(depth))
}

func RecordDelivered(attempts int, duration time.Duration) {
	RegisterMetrics()
	uplinksDelivered.WithLabelValues(strconv.Itoa(attempts)).Inc()
	uplinkDuration.Observe(duration.Seconds())
}

// RecordDrop counts a payload lost for one of: not_joined,
// payload_invalid, queue_full, retries_exhausted.
func RecordDrop(reason string) {
	RegisterMetrics()
	uplinksDropped.WithLabelValues(reason).Inc()
}

func RecordQueueDepth(depth int) {
	RegisterMetrics()
	queueDepth.Set(float64(depth))
}

// RecordJoin counts one join attempt outcome: accepted, rejected,
// config_failed or timeout.
func RecordJoin(outcome string) {
	RegisterMetrics()
	joinOutcomes.WithLabelValues(outcome).Inc()
}
