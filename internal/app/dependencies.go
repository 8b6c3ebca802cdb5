package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/orders/internal/metrics"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
	"github.com/vladislavdragonenkov/orders/internal/storage/memory"
)

const (
	publishBreakerFailures = 5
	publishBreakerReset    = 30 * time.Second
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Repo         domain.OrderRepository
	TimelineRepo domain.TimelineRepository
	Producer     *kafka.Producer
	Publisher    domain.EventPublisher
	OrderMetrics *metrics.OrderMetrics
	HTTPMetrics  *metrics.HTTPMetrics
	Logger       *log.Entry
}

// NewDependencies собирает хранилища, метрики и, при наличии брокеров, Kafka producer.
// Недоступная Kafka не мешает запуску: сервис работает без публикации событий.
func NewDependencies(cfg Config, registerer prometheus.Registerer, logger *log.Entry) *Dependencies {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	producer, _ := initKafkaProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	var publisher domain.EventPublisher
	if producer != nil {
		breaker := kafka.NewCircuitBreaker(publishBreakerFailures, publishBreakerReset, logger.WithField("component", "circuit-breaker"))
		publisher = kafka.NewResilientPublisher(producer, kafka.DefaultRetryConfig(), breaker, logger.WithField("component", "publisher"))
	}

	return &Dependencies{
		Repo:         memory.NewOrderRepository(),
		TimelineRepo: memory.NewTimelineRepository(),
		Producer:     producer,
		Publisher:    publisher,
		OrderMetrics: metrics.NewOrderMetricsWithRegisterer(registerer),
		HTTPMetrics:  metrics.NewHTTPMetricsWithRegisterer(registerer),
		Logger:       logger,
	}
}

// OrderService строит сервис жизненного цикла заказов поверх зависимостей.
func (d *Dependencies) OrderService() *orders.Service {
	return orders.NewService(
		d.Repo,
		d.TimelineRepo,
		d.Publisher,
		d.OrderMetrics,
		d.Logger.WithField("layer", "service"),
	)
}

// Close освобождает внешние ресурсы.
func (d *Dependencies) Close() {
	closeKafka(d.Producer, d.Logger)
}
