package apiclient

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// circuitState represents the state of a circuit breaker
type circuitState int

const (
	stateClosed   circuitState = iota // Normal operation
	stateOpen                         // Backend is failing, calls are refused
	stateHalfOpen                     // Letting a call through to test recovery
)

// circuitBreaker tracks consecutive failures per backend and stops calling
// backends that keep failing
type circuitBreaker struct {
	failures         map[string]int
	lastFailure      map[string]time.Time
	state            map[string]circuitState
	lastStateLog     map[string]time.Time
	logger           *zap.Logger
	failureThreshold int
	openDuration     time.Duration
	mu               sync.RWMutex
}

func newCircuitBreaker(logger *zap.Logger) *circuitBreaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &circuitBreaker{
		failureThreshold: 5,
		openDuration:     time.Minute,
		failures:         make(map[string]int),
		lastFailure:      make(map[string]time.Time),
		state:            make(map[string]circuitState),
		lastStateLog:     make(map[string]time.Time),
		logger:           logger,
	}
}

// canAttempt reports whether a call to backend may go out.
// An open circuit moves to half-open once openDuration has passed.
func (cb *circuitBreaker) canAttempt(backend string) (bool, error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	state := cb.getState(backend)
	if state == stateOpen && time.Since(cb.lastFailure[backend]) > cb.openDuration {
		cb.state[backend] = stateHalfOpen
		cb.logStateChange(backend, stateHalfOpen)
		state = stateHalfOpen
	}

	if state != stateOpen {
		return true, nil
	}

	nextRetry := cb.lastFailure[backend].Add(cb.openDuration)
	return false, fmt.Errorf(
		"%w for %s (failures: %d, next retry: %s)",
		ErrCircuitOpen,
		backend,
		cb.failures[backend],
		nextRetry.Format("15:04:05"),
	)
}

// recordSuccess resets the failure count for backend
func (cb *circuitBreaker) recordSuccess(backend string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	oldState := cb.getState(backend)

	delete(cb.failures, backend)
	delete(cb.lastFailure, backend)
	cb.state[backend] = stateClosed

	if oldState != stateClosed {
		cb.logStateChange(backend, stateClosed)
	}
}

// recordFailure counts a failed call and opens the circuit at the threshold
func (cb *circuitBreaker) recordFailure(backend string, err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures[backend]++
	cb.lastFailure[backend] = time.Now()
	failCount := cb.failures[backend]

	// A failed half-open probe reopens immediately
	if failCount >= cb.failureThreshold || cb.getState(backend) == stateHalfOpen {
		oldState := cb.getState(backend)
		cb.state[backend] = stateOpen
		if oldState != stateOpen {
			cb.logger.Warn("opening circuit",
				zap.String("backend", backend),
				zap.Int("failures", failCount),
				zap.Error(err))
			cb.lastStateLog[backend] = time.Now()
		}
		return
	}

	cb.logger.Debug("backend call failed",
		zap.String("backend", backend),
		zap.Int("failures", failCount),
		zap.Int("threshold", cb.failureThreshold),
		zap.Error(err))
}

// getState returns the current state (must be called with lock held)
func (cb *circuitBreaker) getState(backend string) circuitState {
	if state, exists := cb.state[backend]; exists {
		return state
	}
	return stateClosed
}

// logStateChange logs state transitions at most once a minute per backend
// (must be called with lock held)
func (cb *circuitBreaker) logStateChange(backend string, newState circuitState) {
	lastLog, exists := cb.lastStateLog[backend]
	if exists && time.Since(lastLog) < time.Minute {
		return
	}

	var stateStr string
	switch newState {
	case stateClosed:
		stateStr = "closed"
	case stateOpen:
		stateStr = "open"
	case stateHalfOpen:
		stateStr = "half-open"
	}

	cb.logger.Info("circuit state changed", zap.String("backend", backend), zap.String("state", stateStr))
	cb.lastStateLog[backend] = time.Now()
}
