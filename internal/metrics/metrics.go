package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "questboard"

// Registry is the process-wide Prometheus registry.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// SchedulerPasses counts completed notification scan passes.
var SchedulerPasses = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "scheduler_passes_total",
	Help:      "Completed notification scheduler passes",
})

// NotificationsSent counts due-time announcements delivered.
var NotificationsSent = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "notifications_sent_total",
	Help:      "Due-time announcements sent",
})

// NotificationsMissed counts events whose due time fell outside the grace
// window and were permanently skipped.
var NotificationsMissed = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "notifications_missed_total",
	Help:      "Due events skipped because they exceeded the grace window",
})

// BoardPublishes counts board upserts by outcome (edited, created, failed).
var BoardPublishes = promauto.With(Registry).NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "board_publishes_total",
	Help:      "Board message upserts by outcome",
}, []string{"outcome"})

// StoreWriteFailures counts background durable writes that errored.
var StoreWriteFailures = promauto.With(Registry).NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Name:      "store_write_failures_total",
	Help:      "Background durable writes that failed",
})

// Handler serves the registry for the ops listener.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
