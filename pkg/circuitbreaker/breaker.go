package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateHalfOpen
	StateOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateHalfOpen:
		return "half-open"
	case StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Config tunes the breaker. Zero values fall back to defaults.
type Config struct {
	FailureThreshold uint32
	SuccessThreshold uint32
	OpenTimeout      time.Duration
	Logger           *zap.Logger
}

// CircuitBreaker guards a single external dependency. After
// FailureThreshold consecutive failures it opens; after OpenTimeout it
// allows probes, and SuccessThreshold consecutive successes close it again.
type CircuitBreaker struct {
	name             string
	failureThreshold uint32
	successThreshold uint32
	openTimeout      time.Duration
	logger           *zap.Logger

	mu        sync.Mutex
	state     State
	failures  uint32
	successes uint32
	openedAt  time.Time
}

func New(name string, cfg Config) *CircuitBreaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.SuccessThreshold == 0 {
		cfg.SuccessThreshold = 2
	}
	if cfg.OpenTimeout == 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &CircuitBreaker{
		name:             name,
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
		logger:           cfg.Logger,
	}
}

func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	if err := cb.beforeRequest(); err != nil {
		return err
	}

	err := fn()
	cb.afterRequest(err == nil)
	return err
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.currentState(time.Now())
}

func (cb *CircuitBreaker) beforeRequest() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.currentState(time.Now()) == StateOpen {
		return ErrCircuitOpen
	}
	return nil
}

func (cb *CircuitBreaker) afterRequest(success bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.currentState(time.Now())

	if success {
		cb.failures = 0
		if state == StateHalfOpen {
			cb.successes++
			if cb.successes >= cb.successThreshold {
				cb.setState(StateClosed)
			}
		}
		return
	}

	cb.successes = 0
	cb.failures++
	if state == StateHalfOpen || cb.failures >= cb.failureThreshold {
		cb.setState(StateOpen)
		cb.openedAt = time.Now()
	}
}

// currentState transitions open -> half-open once the timeout has elapsed.
// Callers must hold cb.mu.
func (cb *CircuitBreaker) currentState(now time.Time) State {
	if cb.state == StateOpen && now.Sub(cb.openedAt) >= cb.openTimeout {
		cb.setState(StateHalfOpen)
	}
	return cb.state
}

func (cb *CircuitBreaker) setState(state State) {
	if cb.state == state {
		return
	}

	prev := cb.state
	cb.state = state
	if state != StateHalfOpen {
		cb.failures = 0
	}
	cb.successes = 0

	cb.logger.Info("Circuit breaker state changed",
		zap.String("name", cb.name),
		zap.String("from", prev.String()),
		zap.String("to", state.String()),
	)
}
