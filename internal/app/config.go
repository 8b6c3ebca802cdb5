package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/messaging/kafka"
)

const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr        string
	MetricsAddr     string
	ShutdownTimeout time.Duration

	// При пустом KafkaBrokers события не публикуются.
	KafkaBrokers []string
	KafkaTopic   string

	LogLevel  string
	LogFormat string

	// StorageSoftLimit: порог числа заказов, после которого /healthz отдаёт degraded. 0 отключает порог.
	StorageSoftLimit int
}

// DefaultConfig возвращает базовые адреса API и метрик.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:         ":5000",
		MetricsAddr:      ":9090",
		ShutdownTimeout:  5 * time.Second,
		KafkaTopic:       kafka.TopicOrderEvents,
		LogLevel:         "info",
		LogFormat:        LogFormatText,
		StorageSoftLimit: 1_000_000,
	}
}

// Validate проверяет согласованность настроек и возвращает все найденные проблемы разом.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPAddr) == "" {
		errs = append(errs, errors.New("http addr is required"))
	}
	if strings.TrimSpace(c.MetricsAddr) == "" {
		errs = append(errs, errors.New("metrics addr is required"))
	}
	if c.HTTPAddr != "" && c.HTTPAddr == c.MetricsAddr {
		errs = append(errs, fmt.Errorf("http and metrics addr must differ: %s", c.HTTPAddr))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown timeout must be > 0, got %s", c.ShutdownTimeout))
	}
	if len(c.KafkaBrokers) > 0 && strings.TrimSpace(c.KafkaTopic) == "" {
		errs = append(errs, errors.New("kafka topic is required when brokers are set"))
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		errs = append(errs, fmt.Errorf("log format must be %q or %q, got %q", LogFormatText, LogFormatJSON, c.LogFormat))
	}
	if c.StorageSoftLimit < 0 {
		errs = append(errs, fmt.Errorf("storage soft limit must be >= 0, got %d", c.StorageSoftLimit))
	}
	return errors.Join(errs...)
}

// ParseBrokers разбирает список брокеров через запятую, отбрасывая пустые элементы.
func ParseBrokers(raw string) []string {
	var brokers []string
	for _, b := range strings.Split(raw, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
