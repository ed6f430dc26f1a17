package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/marcos020499/booker/api-server/internal/database"
	"github.com/marcos020499/booker/shared/catalog"
	"github.com/marcos020499/booker/shared/flow"
	"github.com/marcos020499/booker/shared/models"
	"github.com/marcos020499/booker/shared/seatmap"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

const (
	TaskQueue    = "flight-booking-queue"
	WorkflowName = "BookingSessionWorkflow"

	// PollInterval is how often an action's effect is checked through the state query
	PollInterval = 50 * time.Millisecond
	// DefaultSearchWait bounds WaitForSearch when no search timeout is configured
	DefaultSearchWait = 30 * time.Second
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrFlightNotFound  = errors.New("flight not found")
	ErrUnknownAirport  = errors.New("unknown airport")
	ErrActionTimeout   = errors.New("timed out waiting for session to apply action")
)

// Directory serves the airport and flight reference data
type Directory interface {
	ListAirports(ctx context.Context) ([]models.Airport, error)
	FindAirport(ctx context.Context, code string) (*models.Airport, error)
	ListFlights(ctx context.Context) ([]models.Flight, error)
	GetFlight(ctx context.Context, id string) (*models.Flight, error)
}

// SessionService defines the booking session service interface
type SessionService interface {
	ListAirports(ctx context.Context) ([]models.Airport, error)
	ListFlights(ctx context.Context) ([]models.Flight, error)
	GetFlight(ctx context.Context, flightID string) (*models.Flight, error)
	SeatMap() []seatmap.Row
	CreateSession(ctx context.Context) (*flow.State, error)
	GetSession(ctx context.Context, sessionID string) (*flow.State, error)
	UpdateCriteria(ctx context.Context, sessionID string, req *models.CriteriaRequest) (*flow.State, error)
	Dispatch(ctx context.Context, sessionID string, action models.SessionAction) (*flow.State, error)
	WaitForSearch(ctx context.Context, sessionID string, sequence int) (*flow.State, error)
	CancelSession(ctx context.Context, sessionID string) error
}

// Options tunes the session service
type Options struct {
	TaskQueue     string
	MaxPassengers int
	IdleTimeout   time.Duration
	SearchTimeout time.Duration
	ActionTimeout time.Duration
}

// sessionServiceImpl implements SessionService
type sessionServiceImpl struct {
	temporalClient client.Client
	directory      Directory
	opts           Options
}

// NewSessionService creates a new SessionService
func NewSessionService(temporalClient client.Client, directory Directory, opts Options) SessionService {
	if opts.TaskQueue == "" {
		opts.TaskQueue = TaskQueue
	}
	if opts.ActionTimeout <= 0 {
		opts.ActionTimeout = 5 * time.Second
	}
	return &sessionServiceImpl{
		temporalClient: temporalClient,
		directory:      directory,
		opts:           opts,
	}
}

func workflowID(sessionID string) string {
	return "session-" + sessionID
}

func (s *sessionServiceImpl) ListAirports(ctx context.Context) ([]models.Airport, error) {
	return s.directory.ListAirports(ctx)
}

func (s *sessionServiceImpl) ListFlights(ctx context.Context) ([]models.Flight, error) {
	return s.directory.ListFlights(ctx)
}

func (s *sessionServiceImpl) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	flight, err := s.directory.GetFlight(ctx, flightID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) || errors.Is(err, catalog.ErrUnknownFlight) {
			return nil, fmt.Errorf("%w: %s", ErrFlightNotFound, flightID)
		}
		return nil, err
	}
	return flight, nil
}

func (s *sessionServiceImpl) SeatMap() []seatmap.Row {
	return seatmap.Default.Rows()
}

func (s *sessionServiceImpl) CreateSession(ctx context.Context) (*flow.State, error) {
	sessionID := uuid.New().String()

	input := models.SessionWorkflowInput{
		SessionID:     sessionID,
		MaxPassengers: s.opts.MaxPassengers,
		IdleTimeout:   s.opts.IdleTimeout,
		SearchTimeout: s.opts.SearchTimeout,
	}

	workflowOptions := client.StartWorkflowOptions{
		ID:        workflowID(sessionID),
		TaskQueue: s.opts.TaskQueue,
	}

	_, err := s.temporalClient.ExecuteWorkflow(ctx, workflowOptions, WorkflowName, input)
	if err != nil {
		return nil, fmt.Errorf("failed to start workflow: %w", err)
	}

	// The workflow starts from the same initial state, so it does not need
	// to be queried before its first task runs.
	state := flow.NewSession(flow.Options{
		ID:            sessionID,
		Now:           time.Now(),
		MaxPassengers: s.opts.MaxPassengers,
	}).Snapshot()
	return &state, nil
}

func (s *sessionServiceImpl) GetSession(ctx context.Context, sessionID string) (*flow.State, error) {
	response, err := s.temporalClient.QueryWorkflow(ctx, workflowID(sessionID), "", models.QueryGetState)
	if err != nil {
		return nil, mapWorkflowError(err, "failed to query workflow")
	}

	var state flow.State
	if err := response.Get(&state); err != nil {
		return nil, fmt.Errorf("failed to decode workflow state: %w", err)
	}
	return &state, nil
}

func (s *sessionServiceImpl) UpdateCriteria(ctx context.Context, sessionID string, req *models.CriteriaRequest) (*flow.State, error) {
	update := &models.CriteriaUpdate{
		TripType:      req.TripType,
		DepartureDate: req.DepartureDate,
		ReturnDate:    req.ReturnDate,
	}
	if req.Origin != nil {
		airport, err := s.resolveAirport(ctx, *req.Origin)
		if err != nil {
			return nil, err
		}
		update.Origin = airport
	}
	if req.Destination != nil {
		airport, err := s.resolveAirport(ctx, *req.Destination)
		if err != nil {
			return nil, err
		}
		update.Destination = airport
	}

	return s.Dispatch(ctx, sessionID, models.SessionAction{
		Type:     models.ActionUpdateCriteria,
		Criteria: update,
	})
}

func (s *sessionServiceImpl) resolveAirport(ctx context.Context, code string) (*models.Airport, error) {
	airport, err := s.directory.FindAirport(ctx, code)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) || errors.Is(err, catalog.ErrUnknownAirport) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownAirport, code)
		}
		return nil, err
	}
	return airport, nil
}

// Dispatch signals the action and waits until the workflow reports it applied
func (s *sessionServiceImpl) Dispatch(ctx context.Context, sessionID string, action models.SessionAction) (*flow.State, error) {
	action.ID = uuid.New().String()

	err := s.temporalClient.SignalWorkflow(ctx, workflowID(sessionID), "", models.SignalSessionAction, action)
	if err != nil {
		return nil, mapWorkflowError(err, "failed to signal workflow")
	}

	return s.poll(ctx, sessionID, s.opts.ActionTimeout, func(state *flow.State) bool {
		return state.HasApplied(action.ID)
	})
}

// WaitForSearch blocks until the search tagged sequence has finished, failed
// or been abandoned. It waits at most the search timeout plus the action
// timeout.
func (s *sessionServiceImpl) WaitForSearch(ctx context.Context, sessionID string, sequence int) (*flow.State, error) {
	wait := s.opts.SearchTimeout
	if wait <= 0 {
		wait = DefaultSearchWait
	}
	return s.poll(ctx, sessionID, wait+s.opts.ActionTimeout, func(state *flow.State) bool {
		return state.Step != flow.StepSearching || state.SearchSequence != sequence
	})
}

func (s *sessionServiceImpl) poll(ctx context.Context, sessionID string, timeout time.Duration, done func(*flow.State) bool) (*flow.State, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()

	for {
		state, err := s.GetSession(ctx, sessionID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ErrActionTimeout
			}
			return nil, err
		}
		if done(state) {
			return state, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrActionTimeout
		case <-ticker.C:
		}
	}
}

func (s *sessionServiceImpl) CancelSession(ctx context.Context, sessionID string) error {
	err := s.temporalClient.SignalWorkflow(ctx, workflowID(sessionID), "", models.SignalSessionAction, models.SessionAction{
		ID:   uuid.New().String(),
		Type: models.ActionCancel,
	})
	if err != nil {
		return mapWorkflowError(err, "failed to signal workflow")
	}
	return nil
}

func mapWorkflowError(err error, msg string) error {
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return ErrSessionNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
