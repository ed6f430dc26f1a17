package models

import "time"

// SessionWorkflowInput is the input for the booking session workflow
type SessionWorkflowInput struct {
	SessionID     string        `json:"sessionId"`
	MaxPassengers int           `json:"maxPassengers"`
	IdleTimeout   time.Duration `json:"idleTimeout"`
	SearchTimeout time.Duration `json:"searchTimeout"`
}

// SessionOutcome describes how a session ended
type SessionOutcome string

const (
	SessionOutcomePaymentSubmitted SessionOutcome = "payment_submitted"
	SessionOutcomeCancelled        SessionOutcome = "cancelled"
	SessionOutcomeExpired          SessionOutcome = "expired"
)

// SessionWorkflowResult is the result of the booking session workflow
type SessionWorkflowResult struct {
	SessionID string           `json:"sessionId"`
	Outcome   SessionOutcome   `json:"outcome"`
	Selection BookingSelection `json:"selection"`
}

// Signals for workflow communication
const (
	SignalSessionAction = "session_action"
)

// Queries for workflow state
const (
	QueryGetState = "get_state"
)

// ActionType names a user event forwarded by the presentation layer
type ActionType string

const (
	ActionUpdateCriteria    ActionType = "update_criteria"
	ActionSwapAirports      ActionType = "swap_airports"
	ActionAdjustPassengers  ActionType = "adjust_passengers"
	ActionSearch            ActionType = "search"
	ActionUpdateFilter      ActionType = "update_filter"
	ActionSelectFlight      ActionType = "select_flight"
	ActionOpenSeatMap       ActionType = "open_seat_map"
	ActionSelectSeat        ActionType = "select_seat"
	ActionContinueToPayment ActionType = "continue_to_payment"
	ActionSubmitPayment     ActionType = "submit_payment"
	ActionBack              ActionType = "back"
	ActionRestart           ActionType = "restart"
	ActionCancel            ActionType = "cancel"
)

// SessionAction is sent on the session_action signal. All user events share
// one channel so they are applied in the order they were sent.
type SessionAction struct {
	ID         string               `json:"id"`
	Type       ActionType           `json:"type"`
	Criteria   *CriteriaUpdate      `json:"criteria,omitempty"`
	Passengers *PassengerAdjustment `json:"passengers,omitempty"`
	Filter     *FilterRequest       `json:"filter,omitempty"`
	FlightID   string               `json:"flightId,omitempty"`
	Seat       string               `json:"seat,omitempty"`
}

// CriteriaUpdate carries resolved airports and dates. Nil fields are left unchanged.
type CriteriaUpdate struct {
	Origin        *Airport   `json:"origin,omitempty"`
	Destination   *Airport   `json:"destination,omitempty"`
	TripType      *TripType  `json:"tripType,omitempty"`
	DepartureDate *time.Time `json:"departureDate,omitempty"`
	ReturnDate    *time.Time `json:"returnDate,omitempty"`
}

// PassengerAdjustment moves one passenger counter by Delta
type PassengerAdjustment struct {
	Kind  PassengerKind `json:"kind"`
	Delta int           `json:"delta"`
}

// SearchFlightsInput is the input for the SearchFlights activity
type SearchFlightsInput struct {
	SessionID   string `json:"sessionId"`
	Sequence    int    `json:"sequence"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

// SearchFlightsOutput is the result of the SearchFlights activity
type SearchFlightsOutput struct {
	Flights []Flight `json:"flights"`
}
