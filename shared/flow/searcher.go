package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/marcos020499/booker/shared/models"
	"github.com/marcos020499/booker/shared/search"
)

// DefaultSearchLatency is how long a simulated search takes
const DefaultSearchLatency = 3 * time.Second

// FlightSource lists the flights available for search
type FlightSource interface {
	ListFlights(ctx context.Context) ([]models.Flight, error)
}

// Searcher runs a flight search for the given criteria
type Searcher interface {
	Search(ctx context.Context, criteria search.Criteria) ([]models.Flight, error)
}

// DelayedSearcher simulates a remote search: it waits a fixed latency and
// then returns every flight from its source. The criteria do not narrow the
// result.
type DelayedSearcher struct {
	source    FlightSource
	latency   time.Duration
	interval  time.Duration
	heartbeat func(ctx context.Context)
}

// SearcherOption configures a DelayedSearcher
type SearcherOption func(*DelayedSearcher)

// WithHeartbeat calls fn every interval while the search waits
func WithHeartbeat(interval time.Duration, fn func(ctx context.Context)) SearcherOption {
	return func(d *DelayedSearcher) {
		d.interval = interval
		d.heartbeat = fn
	}
}

// NewDelayedSearcher creates a searcher over source with the given latency
func NewDelayedSearcher(source FlightSource, latency time.Duration, opts ...SearcherOption) *DelayedSearcher {
	d := &DelayedSearcher{source: source, latency: latency}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Search waits out the latency, honouring ctx cancellation, then lists flights
func (d *DelayedSearcher) Search(ctx context.Context, criteria search.Criteria) ([]models.Flight, error) {
	if err := d.wait(ctx); err != nil {
		return nil, err
	}
	flights, err := d.source.ListFlights(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	return flights, nil
}

func (d *DelayedSearcher) wait(ctx context.Context) error {
	timer := time.NewTimer(d.latency)
	defer timer.Stop()

	var tick <-chan time.Time
	if d.heartbeat != nil && d.interval > 0 {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-tick:
			d.heartbeat(ctx)
		}
	}
}
