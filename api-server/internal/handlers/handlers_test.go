package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/marcos020499/booker/api-server/internal/service"
	"github.com/marcos020499/booker/api-server/internal/service/mocks"
	"github.com/marcos020499/booker/api-server/internal/validator"
	"github.com/marcos020499/booker/shared/flow"
	"github.com/marcos020499/booker/shared/logger"
	"github.com/marcos020499/booker/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) BroadcastState(state *flow.State) {
	m.Called(state)
}

func (m *mockBroadcaster) BroadcastSessionEnded(sessionID, reason string) {
	m.Called(sessionID, reason)
}

func setupTestRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/airports", h.ListAirports).Methods(http.MethodGet)
	api.HandleFunc("/flights", h.ListFlights).Methods(http.MethodGet)
	api.HandleFunc("/flights/{id}", h.GetFlight).Methods(http.MethodGet)
	api.HandleFunc("/seatmap", h.GetSeatMap).Methods(http.MethodGet)
	api.HandleFunc("/sessions", h.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}", h.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{id}", h.CancelSession).Methods(http.MethodDelete)
	api.HandleFunc("/sessions/{id}/criteria", h.UpdateCriteria).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/passengers", h.AdjustPassengers).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/search", h.Search).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/filters", h.UpdateFilters).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{id}/seat", h.SelectSeat).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/pay", h.SubmitPayment).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{id}/back", h.Back).Methods(http.MethodPost)
	return r
}

func newTestHandler() (*mocks.MockSessionService, *mockBroadcaster, *mux.Router) {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	mockService := new(mocks.MockSessionService)
	broadcaster := new(mockBroadcaster)
	h := NewHandler(mockService, broadcaster, validator.NewRequestValidator(log), log)
	return mockService, broadcaster, setupTestRouter(h)
}

func doRequest(router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) flow.State {
	t.Helper()
	var state flow.State
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&state))
	return state
}

func TestHandler_ListAirports(t *testing.T) {
	mockService, _, router := newTestHandler()

	mockService.On("ListAirports", mock.Anything).Return([]models.Airport{
		{Code: "MEX", Name: "Mexico City International"},
		{Code: "JFK", Name: "John F. Kennedy International"},
	}, nil)

	rec := doRequest(router, http.MethodGet, "/api/airports", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response []models.Airport
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Len(t, response, 2)
	assert.Equal(t, "MEX", response[0].Code)
	mockService.AssertExpectations(t)
}

func TestHandler_GetFlight(t *testing.T) {
	tests := []struct {
		name           string
		flightID       string
		mockReturn     *models.Flight
		mockError      error
		expectedStatus int
	}{
		{
			name:           "flight found",
			flightID:       "FL001",
			mockReturn:     &models.Flight{ID: "FL001", Airline: "Aeroméxico", FlightNumber: "AM243"},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "flight not found",
			flightID:       "FL999",
			mockError:      service.ErrFlightNotFound,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "storage failure",
			flightID:       "FL001",
			mockError:      errors.New("connection refused"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService, _, router := newTestHandler()
			mockService.On("GetFlight", mock.Anything, tt.flightID).Return(tt.mockReturn, tt.mockError)

			rec := doRequest(router, http.MethodGet, "/api/flights/"+tt.flightID, nil)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestHandler_CreateSession(t *testing.T) {
	mockService, _, router := newTestHandler()
	mockService.On("CreateSession", mock.Anything).Return(&flow.State{
		SessionID: "abc",
		Step:      flow.StepCriteriaEntry,
	}, nil)

	rec := doRequest(router, http.MethodPost, "/api/sessions", nil)

	assert.Equal(t, http.StatusCreated, rec.Code)
	state := decodeState(t, rec)
	assert.Equal(t, "abc", state.SessionID)
	assert.Equal(t, flow.StepCriteriaEntry, state.Step)
}

func TestHandler_GetSession_NotFound(t *testing.T) {
	mockService, _, router := newTestHandler()
	mockService.On("GetSession", mock.Anything, "missing").Return(nil, service.ErrSessionNotFound)

	rec := doRequest(router, http.MethodGet, "/api/sessions/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_UpdateCriteria(t *testing.T) {
	t.Run("valid update", func(t *testing.T) {
		mockService, broadcaster, router := newTestHandler()
		state := &flow.State{SessionID: "abc", Step: flow.StepCriteriaEntry, Revision: 2}
		mockService.On("UpdateCriteria", mock.Anything, "abc", mock.MatchedBy(func(req *models.CriteriaRequest) bool {
			return req.Origin != nil && *req.Origin == "MEX" && req.Destination == nil
		})).Return(state, nil)
		broadcaster.On("BroadcastState", state).Return()

		rec := doRequest(router, http.MethodPut, "/api/sessions/abc/criteria", map[string]any{"origin": "MEX"})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2, decodeState(t, rec).Revision)
		broadcaster.AssertExpectations(t)
	})

	t.Run("malformed code", func(t *testing.T) {
		mockService, _, router := newTestHandler()

		rec := doRequest(router, http.MethodPut, "/api/sessions/abc/criteria", map[string]any{"origin": "MEXICO"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "UpdateCriteria", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown airport", func(t *testing.T) {
		mockService, _, router := newTestHandler()
		mockService.On("UpdateCriteria", mock.Anything, "abc", mock.Anything).Return(nil, service.ErrUnknownAirport)

		rec := doRequest(router, http.MethodPut, "/api/sessions/abc/criteria", map[string]any{"destination": "XYZ"})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid body", func(t *testing.T) {
		_, _, router := newTestHandler()
		req := httptest.NewRequest(http.MethodPut, "/api/sessions/abc/criteria", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_AdjustPassengers(t *testing.T) {
	mockService, broadcaster, router := newTestHandler()
	state := &flow.State{SessionID: "abc", Revision: 3}
	mockService.On("Dispatch", mock.Anything, "abc", models.SessionAction{
		Type:       models.ActionAdjustPassengers,
		Passengers: &models.PassengerAdjustment{Kind: models.PassengerChildren, Delta: 1},
	}).Return(state, nil)
	broadcaster.On("BroadcastState", state).Return()

	rec := doRequest(router, http.MethodPost, "/api/sessions/abc/passengers", map[string]any{"kind": "children", "delta": 1})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/sessions/abc/passengers", map[string]any{"kind": "children", "delta": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mockService.AssertNumberOfCalls(t, "Dispatch", 1)
}

func TestHandler_Search_StartedPushesResults(t *testing.T) {
	mockService, broadcaster, router := newTestHandler()

	searching := &flow.State{SessionID: "abc", Step: flow.StepSearching, Revision: 5, SearchSequence: 2}
	results := &flow.State{SessionID: "abc", Step: flow.StepResults, Revision: 7, SearchSequence: 2, Results: []models.Flight{{ID: "FL001"}}}

	mockService.On("Dispatch", mock.Anything, "abc", models.SessionAction{Type: models.ActionSearch}).Return(searching, nil)
	mockService.On("WaitForSearch", mock.Anything, "abc", 2).Return(results, nil)
	pushed := make(chan struct{})
	broadcaster.On("BroadcastState", searching).Return()
	broadcaster.On("BroadcastState", results).Run(func(mock.Arguments) { close(pushed) }).Return()

	rec := doRequest(router, http.MethodPost, "/api/sessions/abc/search", nil)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, flow.StepSearching, decodeState(t, rec).Step)

	select {
	case <-pushed:
	case <-time.After(time.Second):
		t.Fatal("search results were not broadcast")
	}
}

func TestHandler_Search_IncompleteFormIsInert(t *testing.T) {
	mockService, broadcaster, router := newTestHandler()

	state := &flow.State{SessionID: "abc", Step: flow.StepCriteriaEntry, Revision: 1}
	mockService.On("Dispatch", mock.Anything, "abc", models.SessionAction{Type: models.ActionSearch}).Return(state, nil)
	broadcaster.On("BroadcastState", state).Return()

	rec := doRequest(router, http.MethodPost, "/api/sessions/abc/search", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, flow.StepCriteriaEntry, decodeState(t, rec).Step)
	mockService.AssertNotCalled(t, "WaitForSearch", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_UpdateFilters(t *testing.T) {
	mockService, broadcaster, router := newTestHandler()

	state := &flow.State{SessionID: "abc", Step: flow.StepResults}
	mockService.On("Dispatch", mock.Anything, "abc", mock.MatchedBy(func(a models.SessionAction) bool {
		return a.Type == models.ActionUpdateFilter && a.Filter != nil &&
			a.Filter.MaxPrice != nil && *a.Filter.MaxPrice == 5000 &&
			a.Filter.TimeOfDay != nil && *a.Filter.TimeOfDay == "morning"
	})).Return(state, nil)
	broadcaster.On("BroadcastState", state).Return()

	rec := doRequest(router, http.MethodPut, "/api/sessions/abc/filters", map[string]any{"maxPrice": 5000, "timeOfDay": "morning"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPut, "/api/sessions/abc/filters", map[string]any{"timeOfDay": "Night"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	mockService.AssertNumberOfCalls(t, "Dispatch", 1)
}

func TestHandler_SelectSeat(t *testing.T) {
	mockService, broadcaster, router := newTestHandler()

	state := &flow.State{SessionID: "abc", Step: flow.StepFlightDetail}
	mockService.On("Dispatch", mock.Anything, "abc", models.SessionAction{Type: models.ActionSelectSeat, Seat: "7c"}).Return(state, nil)
	broadcaster.On("BroadcastState", state).Return()

	rec := doRequest(router, http.MethodPost, "/api/sessions/abc/seat", map[string]string{"seat": "7c"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodPost, "/api/sessions/abc/seat", map[string]string{"seat": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_SubmitPayment(t *testing.T) {
	t.Run("valid payment ends session", func(t *testing.T) {
		mockService, broadcaster, router := newTestHandler()

		state := &flow.State{SessionID: "abc", Step: flow.StepPayment, PaymentSubmitted: true}
		mockService.On("Dispatch", mock.Anything, "abc", models.SessionAction{Type: models.ActionSubmitPayment}).Return(state, nil)
		broadcaster.On("BroadcastState", state).Return()
		broadcaster.On("BroadcastSessionEnded", "abc", string(models.SessionOutcomePaymentSubmitted)).Return()

		rec := doRequest(router, http.MethodPost, "/api/sessions/abc/pay", models.PaymentRequest{
			CardNumber: "4111111111111111",
			Expiry:     "09/29",
			CVV:        "123",
		})

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decodeState(t, rec).PaymentSubmitted)
		broadcaster.AssertExpectations(t)
	})

	t.Run("invalid expiry", func(t *testing.T) {
		mockService, _, router := newTestHandler()

		rec := doRequest(router, http.MethodPost, "/api/sessions/abc/pay", models.PaymentRequest{
			CardNumber: "4111111111111111",
			Expiry:     "2029-09",
			CVV:        "123",
		})

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var response struct {
			Error  string                     `json:"error"`
			Fields []validator.ValidationError `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		require.Len(t, response.Fields, 1)
		assert.Equal(t, "Expiry", response.Fields[0].Field)
		mockService.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandler_Back_Timeout(t *testing.T) {
	mockService, _, router := newTestHandler()
	mockService.On("Dispatch", mock.Anything, "abc", models.SessionAction{Type: models.ActionBack}).Return(nil, service.ErrActionTimeout)

	rec := doRequest(router, http.MethodPost, "/api/sessions/abc/back", nil)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestHandler_CancelSession(t *testing.T) {
	mockService, broadcaster, router := newTestHandler()
	mockService.On("CancelSession", mock.Anything, "abc").Return(nil)
	broadcaster.On("BroadcastSessionEnded", "abc", string(models.SessionOutcomeCancelled)).Return()

	rec := doRequest(router, http.MethodDelete, "/api/sessions/abc", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	broadcaster.AssertExpectations(t)
}

func TestHandler_HealthCheck(t *testing.T) {
	_, _, router := newTestHandler()

	rec := doRequest(router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	var response map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
	assert.Equal(t, "healthy", response["status"])
}
