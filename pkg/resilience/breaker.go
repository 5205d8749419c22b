package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"technotes/pkg/logger"
)

// CircuitState представляет состояние Circuit Breaker.
type CircuitState int

// Состояния Circuit Breaker.
const (
	// StateClosed - запросы проходят.
	StateClosed CircuitState = iota
	// StateOpen - запросы блокируются до истечения таймаута.
	StateOpen
	// StateHalfOpen - пропускается не больше SuccessThreshold пробных запросов.
	StateHalfOpen
)

// String возвращает имя состояния для логов.
func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Константы для логирования.
const (
	LogCircuitTrip  = "circuit breaker tripped"
	LogCircuitReset = "circuit breaker reset"
	LogCircuitTrial = "circuit breaker allowing trial requests"
)

// ErrCircuitOpen возвращается, когда Circuit Breaker разомкнут.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig содержит настройки Circuit Breaker.
type CircuitBreakerConfig struct {
	// ErrorThreshold - число ошибок подряд до размыкания.
	ErrorThreshold int
	// Timeout - время в разомкнутом состоянии до пробных запросов.
	Timeout time.Duration
	// SuccessThreshold - число успешных пробных запросов до замыкания.
	SuccessThreshold int
}

// DefaultCircuitBreakerConfig возвращает конфигурацию по умолчанию.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		ErrorThreshold:   5,
		Timeout:          10 * time.Second,
		SuccessThreshold: 2,
	}
}

// CircuitBreaker перестает обращаться к зависимости после серии ошибок.
type CircuitBreaker struct {
	name   string
	config CircuitBreakerConfig

	mu              sync.Mutex
	state           CircuitState
	failures        int
	successes       int
	trials          int
	lastStateChange time.Time
}

// NewCircuitBreaker создает Circuit Breaker в замкнутом состоянии.
func NewCircuitBreaker(name string, config CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCircuitBreakerConfig()
	if config.ErrorThreshold <= 0 {
		config.ErrorThreshold = def.ErrorThreshold
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if config.SuccessThreshold <= 0 {
		config.SuccessThreshold = def.SuccessThreshold
	}
	return &CircuitBreaker{
		name:            name,
		config:          config,
		state:           StateClosed,
		lastStateChange: time.Now(),
	}
}

// Execute вызывает fn, если Circuit Breaker это разрешает, и учитывает результат.
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if !cb.AllowRequest(ctx) {
		return ErrCircuitOpen
	}

	err := fn()
	cb.RecordResult(ctx, err)
	return err
}

// AllowRequest проверяет, можно ли выполнить запрос.
func (cb *CircuitBreaker) AllowRequest(ctx context.Context) bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateHalfOpen:
		return cb.admitTrial()
	case StateOpen:
		if time.Since(cb.lastStateChange) < cb.config.Timeout {
			return false
		}
		cb.setState(StateHalfOpen)
		cb.log(ctx).Info(ctx, LogCircuitTrial, zap.Int("trials", cb.config.SuccessThreshold))
		return cb.admitTrial()
	default:
		return false
	}
}

// RecordResult учитывает результат вызова.
func (cb *CircuitBreaker) RecordResult(ctx context.Context, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		if cb.state == StateHalfOpen || cb.failures >= cb.config.ErrorThreshold {
			if cb.state != StateOpen {
				cb.log(ctx).Warn(ctx, LogCircuitTrip, zap.Int("failures", cb.failures), zap.Error(err))
			}
			cb.setState(StateOpen)
		}
		return
	}

	switch cb.state {
	case StateClosed:
		cb.failures = 0
	case StateHalfOpen:
		cb.successes++
		if cb.successes >= cb.config.SuccessThreshold {
			cb.setState(StateClosed)
			cb.log(ctx).Info(ctx, LogCircuitReset)
		}
	}
}

// State возвращает текущее состояние.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// admitTrial вызывается под мьютексом. За один период полуоткрытого состояния
// пропускается SuccessThreshold запросов: их успеха хватает для замыкания,
// а первая ошибка снова размыкает Circuit Breaker.
func (cb *CircuitBreaker) admitTrial() bool {
	if cb.trials >= cb.config.SuccessThreshold {
		return false
	}
	cb.trials++
	return true
}

// setState вызывается под мьютексом.
func (cb *CircuitBreaker) setState(state CircuitState) {
	cb.state = state
	cb.lastStateChange = time.Now()
	cb.successes = 0
	cb.trials = 0
	if state != StateOpen {
		cb.failures = 0
	}
}

func (cb *CircuitBreaker) log(ctx context.Context) *logger.Logger {
	return logger.Log(ctx).With(
		zap.String("circuit_breaker", cb.name),
		zap.Stringer("circuit_state", cb.state))
}
