package workflows

import (
	"time"

	"github.com/marcos020499/booker/shared/flow"
	"github.com/marcos020499/booker/shared/models"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	// DefaultIdleTimeout ends a session that received no action for 30 minutes
	DefaultIdleTimeout = 30 * time.Minute
	// DefaultSearchTimeout bounds a single flight search
	DefaultSearchTimeout = 30 * time.Second
	// SearchHeartbeatTimeout must exceed the activity heartbeat interval
	SearchHeartbeatTimeout = 5 * time.Second
)

// BookingSessionWorkflow owns one traveller's booking flow. Actions arrive on
// a single signal channel, state is read through the get_state query, and the
// flight search runs as a cancellable activity.
func BookingSessionWorkflow(ctx workflow.Context, input models.SessionWorkflowInput) (*models.SessionWorkflowResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Booking session started", "sessionId", input.SessionID)

	idleTimeout := input.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	searchTimeout := input.SearchTimeout
	if searchTimeout <= 0 {
		searchTimeout = DefaultSearchTimeout
	}

	session := flow.NewSession(flow.Options{
		ID:            input.SessionID,
		Now:           workflow.Now(ctx),
		MaxPassengers: input.MaxPassengers,
	})

	err := workflow.SetQueryHandler(ctx, models.QueryGetState, func() (flow.State, error) {
		return session.Snapshot(), nil
	})
	if err != nil {
		return nil, err
	}

	searchOpts := workflow.ActivityOptions{
		StartToCloseTimeout: searchTimeout,
		HeartbeatTimeout:    SearchHeartbeatTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    2,
		},
	}

	actionCh := workflow.GetSignalChannel(ctx, models.SignalSessionAction)

	var (
		search       workflow.Future
		searchSeq    int
		cancelSearch workflow.CancelFunc
		done         bool
		outcome      models.SessionOutcome
	)

	stopSearch := func() {
		if cancelSearch != nil {
			cancelSearch()
		}
		search, cancelSearch = nil, nil
	}

	startSearch := func(seq int) {
		stopSearch()
		criteria := session.Criteria()
		in := models.SearchFlightsInput{SessionID: input.SessionID, Sequence: seq}
		if criteria.Origin != nil {
			in.Origin = criteria.Origin.Code
		}
		if criteria.Destination != nil {
			in.Destination = criteria.Destination.Code
		}

		searchCtx, cancel := workflow.WithCancel(ctx)
		searchCtx = workflow.WithActivityOptions(searchCtx, searchOpts)
		search = workflow.ExecuteActivity(searchCtx, "SearchFlights", in)
		searchSeq = seq
		cancelSearch = cancel
		logger.Info("Search started", "sessionId", input.SessionID, "sequence", seq)
	}

	// One idle timer runs at a time; it is replaced only when an action arrives
	var (
		idleTimer  workflow.Future
		cancelIdle workflow.CancelFunc
	)
	resetIdle := func() {
		if cancelIdle != nil {
			cancelIdle()
		}
		timerCtx, cancel := workflow.WithCancel(ctx)
		idleTimer, cancelIdle = workflow.NewTimer(timerCtx, idleTimeout), cancel
	}
	resetIdle()

	for !done {
		selector := workflow.NewSelector(ctx)

		selector.AddReceive(actionCh, func(c workflow.ReceiveChannel, more bool) {
			var action models.SessionAction
			c.Receive(ctx, &action)

			effect := session.Dispatch(action)
			logger.Info("Action received",
				"sessionId", input.SessionID,
				"type", action.Type,
				"applied", effect.Applied,
				"step", session.Step(),
			)

			if effect.CancelSearch {
				logger.Info("Search cancelled", "sessionId", input.SessionID, "sequence", searchSeq)
				stopSearch()
			}
			if effect.StartSearch {
				startSearch(effect.SearchSequence)
			}
			if effect.Done {
				done = true
				outcome = effect.Outcome
				return
			}
			resetIdle()
		})

		if search != nil {
			pending, seq := search, searchSeq
			selector.AddFuture(pending, func(f workflow.Future) {
				var out models.SearchFlightsOutput
				err := f.Get(ctx, &out)
				if err != nil {
					logger.Error("Search failed", "sessionId", input.SessionID, "sequence", seq, "error", err)
				}
				session.CompleteSearch(seq, out.Flights, err)
				search, cancelSearch = nil, nil
			})
		}

		selector.AddFuture(idleTimer, func(f workflow.Future) {
			if err := f.Get(ctx, nil); err == nil {
				logger.Info("Session idle timeout", "sessionId", input.SessionID)
				done = true
				outcome = models.SessionOutcomeExpired
			}
		})

		selector.Select(ctx)

		if ctx.Err() != nil {
			stopSearch()
			done = true
			outcome = models.SessionOutcomeCancelled
		}
	}

	cancelIdle()
	stopSearch()
	logger.Info("Booking session finished", "sessionId", input.SessionID, "outcome", outcome)

	return &models.SessionWorkflowResult{
		SessionID: input.SessionID,
		Outcome:   outcome,
		Selection: session.Selection(),
	}, nil
}
