package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orders/internal/domain"
)

// ErrCircuitOpen возвращается, пока circuit breaker не пропускает публикацию.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// RetryConfig задаёт повторы публикации.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultRetryConfig возвращает конфигурацию по умолчанию.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  50 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}
}

// CircuitState описывает состояние circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "closed"
	}
}

// CircuitBreaker размыкается после maxFailures подряд и пропускает одну пробную
// попытку после resetTimeout.
type CircuitBreaker struct {
	mu           sync.Mutex
	maxFailures  int
	resetTimeout time.Duration
	now          func() time.Time

	failures    int
	lastFailure time.Time
	state       CircuitState
	logger      *log.Entry
}

// NewCircuitBreaker создаёт circuit breaker.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, logger *log.Entry) *CircuitBreaker {
	if logger == nil {
		logger = log.New().WithField("component", "circuit-breaker")
	}
	if maxFailures <= 0 {
		maxFailures = 1
	}
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		now:          time.Now,
		state:        CircuitClosed,
		logger:       logger,
	}
}

// State возвращает текущее состояние.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// allow решает, можно ли выполнять попытку.
func (cb *CircuitBreaker) allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != CircuitOpen {
		return true
	}
	if cb.now().Sub(cb.lastFailure) > cb.resetTimeout {
		cb.state = CircuitHalfOpen
		cb.logger.Info("circuit breaker half-open")
		return true
	}
	return false
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		if cb.state != CircuitClosed {
			cb.logger.Info("circuit breaker closed")
		}
		cb.state = CircuitClosed
		cb.failures = 0
		return
	}

	cb.failures++
	cb.lastFailure = cb.now()
	if cb.state == CircuitHalfOpen || cb.failures >= cb.maxFailures {
		if cb.state != CircuitOpen {
			cb.logger.WithField("failures", cb.failures).Warn("circuit breaker opened")
		}
		cb.state = CircuitOpen
	}
}

// ResilientPublisher добавляет к публикации повторы с экспоненциальной задержкой
// и circuit breaker, чтобы недоступный брокер не тормозил каждый запрос API.
type ResilientPublisher struct {
	next    domain.EventPublisher
	retry   RetryConfig
	breaker *CircuitBreaker
	logger  *log.Entry
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewResilientPublisher оборачивает next. breaker может быть nil.
func NewResilientPublisher(next domain.EventPublisher, retry RetryConfig, breaker *CircuitBreaker, logger *log.Entry) *ResilientPublisher {
	if logger == nil {
		logger = log.New().WithField("component", "resilient-publisher")
	}
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	if retry.BackoffFactor < 1 {
		retry.BackoffFactor = 1
	}
	return &ResilientPublisher{next: next, retry: retry, breaker: breaker, logger: logger, sleep: sleepCtx}
}

// Publish отправляет событие, повторяя временные ошибки.
// Отмена контекста прерывает ожидание между попытками.
func (p *ResilientPublisher) Publish(ctx context.Context, event domain.OrderEvent) error {
	if p.breaker != nil && !p.breaker.allow() {
		return ErrCircuitOpen
	}

	var lastErr error
	delay := p.retry.InitialDelay
	for attempt := 1; attempt <= p.retry.MaxAttempts; attempt++ {
		lastErr = p.next.Publish(ctx, event)
		if lastErr == nil {
			if attempt > 1 {
				p.logger.WithFields(log.Fields{
					"order_id": event.Order.ID,
					"attempt":  attempt,
				}).Info("event published after retry")
			}
			break
		}
		if !retryable(lastErr) || attempt == p.retry.MaxAttempts {
			break
		}

		p.logger.WithFields(log.Fields{
			"order_id": event.Order.ID,
			"attempt":  attempt,
			"delay":    delay,
		}).WithError(lastErr).Warn("publish failed, retrying")

		if err := p.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
		delay = time.Duration(float64(delay) * p.retry.BackoffFactor)
		if p.retry.MaxDelay > 0 && delay > p.retry.MaxDelay {
			delay = p.retry.MaxDelay
		}
	}

	if p.breaker != nil {
		p.breaker.record(lastErr)
	}
	return lastErr
}

// retryable: отмена и истечение контекста не повторяются.
func retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ domain.EventPublisher = (*ResilientPublisher)(nil)
