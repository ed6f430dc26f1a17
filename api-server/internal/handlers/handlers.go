package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/marcos020499/booker/api-server/internal/service"
	"github.com/marcos020499/booker/api-server/internal/validator"
	"github.com/marcos020499/booker/shared/flow"
	"github.com/marcos020499/booker/shared/logger"
	"github.com/marcos020499/booker/shared/models"
)

// Broadcaster pushes session updates to live watchers
type Broadcaster interface {
	BroadcastState(state *flow.State)
	BroadcastSessionEnded(sessionID, reason string)
}

// Handler contains HTTP handlers for the API
type Handler struct {
	sessionService service.SessionService
	broadcaster    Broadcaster
	validator      *validator.RequestValidator
	logger         *logger.Logger
}

// NewHandler creates a new Handler instance
func NewHandler(sessionService service.SessionService, broadcaster Broadcaster, v *validator.RequestValidator, log *logger.Logger) *Handler {
	return &Handler{
		sessionService: sessionService,
		broadcaster:    broadcaster,
		validator:      v,
		logger:         log,
	}
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		respondError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, service.ErrFlightNotFound):
		respondError(w, http.StatusNotFound, "Flight not found")
	case errors.Is(err, service.ErrUnknownAirport):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrActionTimeout):
		respondError(w, http.StatusGatewayTimeout, err.Error())
	default:
		h.logger.Error("Request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decode reads a JSON body into req and validates it. It writes the 400
// response itself and reports whether the handler should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validator.Validate(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			respondJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "Validation failed",
				"fields": validationErrs,
			})
			return false
		}
		respondError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// ListAirports handles GET /api/airports
func (h *Handler) ListAirports(w http.ResponseWriter, r *http.Request) {
	airports, err := h.sessionService.ListAirports(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, airports)
}

// ListFlights handles GET /api/flights
func (h *Handler) ListFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := h.sessionService.ListFlights(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flights)
}

// GetFlight handles GET /api/flights/{id}
func (h *Handler) GetFlight(w http.ResponseWriter, r *http.Request) {
	flight, err := h.sessionService.GetFlight(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, flight)
}

// GetSeatMap handles GET /api/seatmap
func (h *Handler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.sessionService.SeatMap())
}

// CreateSession handles POST /api/sessions
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessionService.CreateSession(r.Context())
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.logger.Info("Session created", "sessionId", state.SessionID)
	respondJSON(w, http.StatusCreated, state)
}

// GetSession handles GET /api/sessions/{id}
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := h.sessionService.GetSession(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, state)
}

// CancelSession handles DELETE /api/sessions/{id}
func (h *Handler) CancelSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	if err := h.sessionService.CancelSession(r.Context(), sessionID); err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.broadcaster.BroadcastSessionEnded(sessionID, string(models.SessionOutcomeCancelled))
	respondJSON(w, http.StatusOK, map[string]string{"message": "Session cancelled"})
}

// UpdateCriteria handles PUT /api/sessions/{id}/criteria
func (h *Handler) UpdateCriteria(w http.ResponseWriter, r *http.Request) {
	var req models.CriteriaRequest
	if !h.decode(w, r, &req) {
		return
	}
	state, err := h.sessionService.UpdateCriteria(r.Context(), mux.Vars(r)["id"], &req)
	h.respondState(w, state, err)
}

// SwapAirports handles POST /api/sessions/{id}/swap
func (h *Handler) SwapAirports(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, models.SessionAction{Type: models.ActionSwapAirports})
}

// AdjustPassengers handles POST /api/sessions/{id}/passengers
func (h *Handler) AdjustPassengers(w http.ResponseWriter, r *http.Request) {
	var req models.PassengerRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.dispatch(w, r, models.SessionAction{
		Type:       models.ActionAdjustPassengers,
		Passengers: &models.PassengerAdjustment{Kind: req.Kind, Delta: req.Delta},
	})
}

// Search handles POST /api/sessions/{id}/search. A started search answers 202
// with the searching state and the results arrive over the WebSocket feed.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	state, err := h.sessionService.Dispatch(r.Context(), sessionID, models.SessionAction{Type: models.ActionSearch})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.broadcaster.BroadcastState(state)
	if state.Step != flow.StepSearching {
		respondJSON(w, http.StatusOK, state)
		return
	}
	go h.watchSearch(sessionID, state.SearchSequence)
	respondJSON(w, http.StatusAccepted, state)
}

// watchSearch waits for the search tagged sequence to end and pushes the
// resulting state to watchers. Edits made while searching do not end the wait.
func (h *Handler) watchSearch(sessionID string, sequence int) {
	state, err := h.sessionService.WaitForSearch(context.Background(), sessionID, sequence)
	if err != nil {
		h.logger.Warn("Search result not observed", "sessionId", sessionID, "error", err)
		return
	}
	h.logger.Info("Search finished", "sessionId", sessionID, "step", state.Step, "results", len(state.Results))
	h.broadcaster.BroadcastState(state)
}

// UpdateFilters handles PUT /api/sessions/{id}/filters
func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	var req models.FilterRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.dispatch(w, r, models.SessionAction{Type: models.ActionUpdateFilter, Filter: &req})
}

// SelectFlight handles POST /api/sessions/{id}/flight
func (h *Handler) SelectFlight(w http.ResponseWriter, r *http.Request) {
	var req models.SelectFlightRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.dispatch(w, r, models.SessionAction{Type: models.ActionSelectFlight, FlightID: req.FlightID})
}

// OpenSeatMap handles POST /api/sessions/{id}/seatmap
func (h *Handler) OpenSeatMap(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, models.SessionAction{Type: models.ActionOpenSeatMap})
}

// SelectSeat handles POST /api/sessions/{id}/seat
func (h *Handler) SelectSeat(w http.ResponseWriter, r *http.Request) {
	var req models.SelectSeatRequest
	if !h.decode(w, r, &req) {
		return
	}
	h.dispatch(w, r, models.SessionAction{Type: models.ActionSelectSeat, Seat: req.Seat})
}

// ContinueToPayment handles POST /api/sessions/{id}/checkout
func (h *Handler) ContinueToPayment(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, models.SessionAction{Type: models.ActionContinueToPayment})
}

// SubmitPayment handles POST /api/sessions/{id}/pay
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req models.PaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	sessionID := mux.Vars(r)["id"]
	state, err := h.sessionService.Dispatch(r.Context(), sessionID, models.SessionAction{Type: models.ActionSubmitPayment})
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.broadcaster.BroadcastState(state)
	if state.PaymentSubmitted {
		h.logger.Info("Payment submitted", "sessionId", sessionID)
		h.broadcaster.BroadcastSessionEnded(sessionID, string(models.SessionOutcomePaymentSubmitted))
	}
	respondJSON(w, http.StatusOK, state)
}

// Back handles POST /api/sessions/{id}/back
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, models.SessionAction{Type: models.ActionBack})
}

// Restart handles POST /api/sessions/{id}/restart
func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	h.dispatch(w, r, models.SessionAction{Type: models.ActionRestart})
}

// HealthCheck handles GET /health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) dispatch(w http.ResponseWriter, r *http.Request, action models.SessionAction) {
	state, err := h.sessionService.Dispatch(r.Context(), mux.Vars(r)["id"], action)
	h.respondState(w, state, err)
}

func (h *Handler) respondState(w http.ResponseWriter, state *flow.State, err error) {
	if err != nil {
		h.respondServiceError(w, err)
		return
	}
	h.broadcaster.BroadcastState(state)
	respondJSON(w, http.StatusOK, state)
}
