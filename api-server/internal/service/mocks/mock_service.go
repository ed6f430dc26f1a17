package mocks

import (
	"context"

	"github.com/marcos020499/booker/shared/flow"
	"github.com/marcos020499/booker/shared/models"
	"github.com/marcos020499/booker/shared/seatmap"
	"github.com/stretchr/testify/mock"
)

// MockSessionService is a mock implementation of SessionService
type MockSessionService struct {
	mock.Mock
}

func (m *MockSessionService) ListAirports(ctx context.Context) ([]models.Airport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Airport), args.Error(1)
}

func (m *MockSessionService) ListFlights(ctx context.Context) ([]models.Flight, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Flight), args.Error(1)
}

func (m *MockSessionService) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Flight), args.Error(1)
}

func (m *MockSessionService) SeatMap() []seatmap.Row {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]seatmap.Row)
}

func (m *MockSessionService) CreateSession(ctx context.Context) (*flow.State, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flow.State), args.Error(1)
}

func (m *MockSessionService) GetSession(ctx context.Context, sessionID string) (*flow.State, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flow.State), args.Error(1)
}

func (m *MockSessionService) UpdateCriteria(ctx context.Context, sessionID string, req *models.CriteriaRequest) (*flow.State, error) {
	args := m.Called(ctx, sessionID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flow.State), args.Error(1)
}

func (m *MockSessionService) Dispatch(ctx context.Context, sessionID string, action models.SessionAction) (*flow.State, error) {
	args := m.Called(ctx, sessionID, action)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flow.State), args.Error(1)
}

func (m *MockSessionService) WaitForSearch(ctx context.Context, sessionID string, sequence int) (*flow.State, error) {
	args := m.Called(ctx, sessionID, sequence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*flow.State), args.Error(1)
}

func (m *MockSessionService) CancelSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
