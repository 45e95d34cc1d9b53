package app

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"github.com/hylla/tavla/internal/domain"
)

// BreakerStore wraps a TaskStore with a circuit breaker so a flapping
// backend (a remote Mongo deployment, a locked sqlite file) fails fast
// instead of stalling every board interaction behind driver timeouts.
type BreakerStore struct {
	inner TaskStore
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerStore decorates a TaskStore with a circuit breaker. The breaker
// opens after five consecutive failures and probes again after the timeout.
func NewBreakerStore(inner TaskStore, logger Logger) *BreakerStore {
	if logger == nil {
		logger = nopLogger{}
	}
	settings := gobreaker.Settings{
		Name:        "task-store",
		MaxRequests: 1,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("store breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	}
	return &BreakerStore{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (b *BreakerStore) ListTasks(ctx context.Context) ([]domain.Task, error) {
	result, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.ListTasks(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Task), nil
}

func (b *BreakerStore) CreateTask(ctx context.Context, task domain.Task) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.CreateTask(ctx, task)
	})
	return err
}

func (b *BreakerStore) SaveTask(ctx context.Context, task domain.Task) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.SaveTask(ctx, task)
	})
	return err
}

func (b *BreakerStore) DeleteTask(ctx context.Context, taskID string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.DeleteTask(ctx, taskID)
	})
	return err
}
