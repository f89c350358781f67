package driver

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/soundprediction/cogito/pkg/alert"
	"github.com/soundprediction/cogito/pkg/config"
	"github.com/soundprediction/cogito/pkg/types"
)

// CircuitBreakerStore wraps a GraphStore with circuit breaking logic so a
// misbehaving database stops receiving traffic instead of stalling every
// engine call. When the breaker trips, the alerter is notified.
type CircuitBreakerStore struct {
	store   GraphStore
	cb      *gobreaker.CircuitBreaker
	alerter alert.Alerter
	name    string
}

// NewCircuitBreakerStore creates a circuit breaking wrapper around store.
func NewCircuitBreakerStore(store GraphStore, cfg config.CircuitBreakerConfig, alerter alert.Alerter, name string) *CircuitBreakerStore {
	st := gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    time.Duration(cfg.Interval) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= cfg.ReadyToTripRatio
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if to == gobreaker.StateOpen && alerter != nil {
				msg := fmt.Sprintf("Circuit breaker '%s' changed status from %s to %s. Too many storage failures detected.", name, from, to)
				_ = alerter.Alert(fmt.Sprintf("URGENT: Circuit Breaker Tripped - %s", name), msg)
			}
		},
	}

	return &CircuitBreakerStore{
		store:   store,
		cb:      gobreaker.NewCircuitBreaker(st),
		alerter: alerter,
		name:    name,
	}
}

// SaveGraph implements GraphStore
func (c *CircuitBreakerStore) SaveGraph(ctx context.Context, graphID string, g *types.Graph) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.store.SaveGraph(ctx, graphID, g)
	})
	return err
}

// LoadGraph implements GraphStore
func (c *CircuitBreakerStore) LoadGraph(ctx context.Context, graphID string) (*types.Graph, error) {
	result, err := c.cb.Execute(func() (any, error) {
		return c.store.LoadGraph(ctx, graphID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*types.Graph), nil
}

// DeleteGraph implements GraphStore
func (c *CircuitBreakerStore) DeleteGraph(ctx context.Context, graphID string) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.store.DeleteGraph(ctx, graphID)
	})
	return err
}

// Close implements GraphStore
func (c *CircuitBreakerStore) Close(ctx context.Context) error {
	return c.store.Close(ctx)
}
