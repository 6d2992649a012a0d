package monitoring

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ticketStates = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "raffle_ticket_states",
			Help: "Current number of tickets per derived state",
		},
		[]string{"state"},
	)

	reconcilePasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_reconcile_passes_total",
			Help: "Reconciliation passes by trigger and outcome",
		},
		[]string{"trigger", "status"},
	)

	reconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "raffle_reconcile_duration_seconds",
			Help:    "Duration of full reconciliation passes",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
	)

	pendingWrites = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "raffle_pending_writes",
			Help: "Local optimistic writes not yet confirmed remotely",
		},
	)

	conflictsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_conflicts_detected_total",
			Help: "Validation rejections by intended operation",
		},
		[]string{"intent"},
	)

	expiredClaims = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_expired_claims_total",
			Help: "Reservations and assignments expired by the sweep",
		},
		[]string{"kind"},
	)

	changeFeedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "raffle_changefeed_events_total",
			Help: "Change feed notifications by collection and action",
		},
		[]string{"collection", "action"},
	)
)

type Monitor struct{}

func NewMonitor() *Monitor {
	return &Monitor{}
}

func (m *Monitor) TrackReconcile(trigger, outcome string, duration time.Duration) {
	reconcilePasses.WithLabelValues(trigger, outcome).Inc()
	if outcome == "success" {
		reconcileDuration.Observe(duration.Seconds())
	}
}

func (m *Monitor) TrackConflict(intent string) {
	conflictsDetected.WithLabelValues(intent).Inc()
}

func (m *Monitor) TrackExpired(kind string) {
	expiredClaims.WithLabelValues(kind).Inc()
}

func (m *Monitor) TrackFeedEvent(collection, action string) {
	changeFeedEvents.WithLabelValues(collection, action).Inc()
}

func (m *Monitor) SetPendingWrites(count int) {
	pendingWrites.Set(float64(count))
}

func (m *Monitor) SetTicketStates(counts map[string]int) {
	for state, count := range counts {
		ticketStates.WithLabelValues(state).Set(float64(count))
	}
}

// ServeMetrics exposes /metrics on its own port.
func ServeMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	log.Printf("Metrics server listening on :%s", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Printf("Metrics server stopped: %v", err)
	}
}
