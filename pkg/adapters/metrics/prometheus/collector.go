package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector implements ports.MetricsCollector using Prometheus
type Collector struct {
	operations      *prometheus.CounterVec
	participants    *prometheus.GaugeVec
	capacity        *prometheus.GaugeVec
	eventsPublished *prometheus.CounterVec
	storeHealthy    prometheus.Gauge
}

// NewCollector creates a collector registering its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		operations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signup_operations_total",
				Help: "Total number of directory operations by outcome",
			},
			[]string{"operation", "result"},
		),
		participants: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signup_activity_participants",
				Help: "Current number of participants per activity",
			},
			[]string{"activity"},
		),
		capacity: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "signup_activity_capacity",
				Help: "Maximum number of participants per activity",
			},
			[]string{"activity"},
		),
		eventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signup_events_published_total",
				Help: "Total number of roster events handed to the event bus",
			},
			[]string{"topic", "status"},
		),
		storeHealthy: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "signup_store_healthy",
				Help: "1 when the activity store answered the last ping",
			},
		),
	}
}

// RecordOperation counts a directory operation and its result
func (c *Collector) RecordOperation(operation, result string) {
	c.operations.WithLabelValues(operation, result).Inc()
}

// SetRoster records the roster size and capacity of an activity
func (c *Collector) SetRoster(activity string, participants, capacity int) {
	c.participants.WithLabelValues(activity).Set(float64(participants))
	c.capacity.WithLabelValues(activity).Set(float64(capacity))
}

// RecordEventPublished counts an event publication attempt
func (c *Collector) RecordEventPublished(topic string, ok bool) {
	status := "ok"
	if !ok {
		status = "failed"
	}
	c.eventsPublished.WithLabelValues(topic, status).Inc()
}

// SetStoreHealthy records the last store ping outcome
func (c *Collector) SetStoreHealthy(healthy bool) {
	if healthy {
		c.storeHealthy.Set(1)
		return
	}
	c.storeHealthy.Set(0)
}
