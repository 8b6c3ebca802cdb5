package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OrderMetrics содержит метрики жизненного цикла заказов.
// Все методы безопасны для nil-получателя: сервис может работать без метрик.
type OrderMetrics struct {
	// Счётчики операций
	ordersCreated   prometheus.Counter
	ordersUpdated   prometheus.Counter
	ordersCancelled prometheus.Counter
	rejected        *prometheus.CounterVec

	// Текущее количество заказов по статусам
	ordersByStatus *prometheus.GaugeVec

	operationDuration *prometheus.HistogramVec

	timelineEvents  prometheus.Counter
	eventsPublished *prometheus.CounterVec
}

// NewOrderMetrics создаёт метрики в глобальном реестре Prometheus.
func NewOrderMetrics() *OrderMetrics {
	return NewOrderMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewOrderMetricsWithRegisterer создаёт метрики в указанном реестре (удобно для тестов).
func NewOrderMetricsWithRegisterer(registerer prometheus.Registerer) *OrderMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &OrderMetrics{
		ordersCreated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_created_total",
			Help: "Total number of orders created",
		}),
		ordersUpdated: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_updated_total",
			Help: "Total number of accepted order updates",
		}),
		ordersCancelled: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_cancelled_total",
			Help: "Total number of orders moved to cancelled",
		}),
		rejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_rejected_total",
			Help: "Total number of rejected order operations",
		}, []string{"operation", "reason"}),
		ordersByStatus: registerGaugeVec(registerer, prometheus.GaugeOpts{
			Name: "orders_by_status",
			Help: "Number of stored orders per status",
		}, []string{"status"}),
		operationDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "orders_operation_duration_seconds",
			Help:    "Duration of order lifecycle operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"operation"}),
		timelineEvents: registerCounter(registerer, prometheus.CounterOpts{
			Name: "orders_timeline_events_total",
			Help: "Total number of timeline events recorded",
		}),
		eventsPublished: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "orders_events_published_total",
			Help: "Total number of order events handed to the publisher",
		}, []string{"result"}),
	}
}

// RecordOrderCreated учитывает новый заказ в статусе status.
func (m *OrderMetrics) RecordOrderCreated(status string) {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
	m.ordersByStatus.WithLabelValues(status).Inc()
}

// RecordOrderUpdated учитывает принятое изменение заказа.
func (m *OrderMetrics) RecordOrderUpdated() {
	if m == nil {
		return
	}
	m.ordersUpdated.Inc()
}

// RecordStatusChange переносит заказ между статусами в gauge.
func (m *OrderMetrics) RecordStatusChange(from, to string) {
	if m == nil || from == to {
		return
	}
	m.ordersByStatus.WithLabelValues(from).Dec()
	m.ordersByStatus.WithLabelValues(to).Inc()
	if to == "cancelled" {
		m.ordersCancelled.Inc()
	}
}

// RecordRejected учитывает отклонённую операцию.
func (m *OrderMetrics) RecordRejected(operation, reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(operation, reason).Inc()
}

// RecordOperationDuration записывает время выполнения операции.
func (m *OrderMetrics) RecordOperationDuration(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTimelineEvent увеличивает счётчик событий timeline.
func (m *OrderMetrics) RecordTimelineEvent() {
	if m == nil {
		return
	}
	m.timelineEvents.Inc()
}

// RecordEventPublished учитывает результат публикации события.
func (m *OrderMetrics) RecordEventPublished(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.eventsPublished.WithLabelValues(result).Inc()
}
