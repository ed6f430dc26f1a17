package activities

import (
	"context"
	"fmt"
	"time"

	"github.com/marcos020499/booker/shared/flow"
	"github.com/marcos020499/booker/shared/models"
	"github.com/marcos020499/booker/shared/search"
	"go.temporal.io/sdk/activity"
)

// HeartbeatInterval is how often a running search reports progress
const HeartbeatInterval = 500 * time.Millisecond

// Activities holds the dependencies shared by the worker's activities
type Activities struct {
	source  flow.FlightSource
	latency time.Duration
}

// NewActivities creates activities that search source with the given latency
func NewActivities(source flow.FlightSource, latency time.Duration) *Activities {
	return &Activities{source: source, latency: latency}
}

// SearchFlights activity - waits out the simulated latency, then returns the catalog
func (a *Activities) SearchFlights(ctx context.Context, input models.SearchFlightsInput) (*models.SearchFlightsOutput, error) {
	logger := activity.GetLogger(ctx)
	logger.Info("Searching flights",
		"sessionId", input.SessionID,
		"sequence", input.Sequence,
		"origin", input.Origin,
		"destination", input.Destination,
	)

	searcher := flow.NewDelayedSearcher(a.source, a.latency,
		flow.WithHeartbeat(HeartbeatInterval, func(ctx context.Context) {
			activity.RecordHeartbeat(ctx, input.Sequence)
		}),
	)

	flights, err := searcher.Search(ctx, search.Criteria{})
	if err != nil {
		if ctx.Err() != nil {
			logger.Info("Search cancelled", "sessionId", input.SessionID, "sequence", input.Sequence)
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}

	logger.Info("Search completed", "sessionId", input.SessionID, "flights", len(flights))
	return &models.SearchFlightsOutput{Flights: flights}, nil
}
