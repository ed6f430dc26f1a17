package flow

import (
	"slices"

	"github.com/marcos020499/booker/shared/models"
	"github.com/marcos020499/booker/shared/search"
)

// RecentActionLimit is how many applied action IDs a snapshot remembers
const RecentActionLimit = 64

// Effect tells the session owner what to do after an action
type Effect struct {
	// Applied is false when the action was inert on the current step
	Applied bool
	// StartSearch asks the owner to run a search tagged with SearchSequence
	StartSearch    bool
	SearchSequence int
	// CancelSearch asks the owner to abandon the in-flight search
	CancelSearch bool
	// Done means the session has ended
	Done    bool
	Outcome models.SessionOutcome
}

// Dispatch applies a user event. Events that are not valid on the current
// step leave the session unchanged, like a disabled control.
func (s *Session) Dispatch(action models.SessionAction) Effect {
	if action.ID != "" {
		s.recordAction(action.ID)
	}

	var effect Effect
	switch action.Type {
	case models.ActionUpdateCriteria:
		if action.Criteria != nil {
			effect.Applied = s.UpdateCriteria(*action.Criteria)
		}
	case models.ActionSwapAirports:
		effect.Applied = s.SwapAirports()
	case models.ActionAdjustPassengers:
		if action.Passengers != nil {
			effect.Applied = s.AdjustPassengers(action.Passengers.Kind, action.Passengers.Delta)
		}
	case models.ActionSearch:
		seq, ok := s.StartSearch()
		effect.Applied = ok
		effect.StartSearch = ok
		effect.SearchSequence = seq
	case models.ActionUpdateFilter:
		if action.Filter != nil {
			effect.Applied = s.UpdateFilter(*action.Filter)
		}
	case models.ActionSelectFlight:
		effect.Applied = s.SelectFlight(action.FlightID)
	case models.ActionOpenSeatMap:
		effect.Applied = s.OpenSeatSelection()
	case models.ActionSelectSeat:
		effect.Applied = s.ChooseSeat(action.Seat)
	case models.ActionContinueToPayment:
		effect.Applied = s.ContinueToPayment()
	case models.ActionSubmitPayment:
		effect.Applied = s.SubmitPayment()
		if effect.Applied {
			effect.Done = true
			effect.Outcome = models.SessionOutcomePaymentSubmitted
		}
	case models.ActionBack:
		searching := s.step == StepSearching
		effect.Applied = s.Back()
		effect.CancelSearch = searching && effect.Applied
	case models.ActionRestart:
		searching := s.step == StepSearching
		effect.Applied = s.Restart()
		effect.CancelSearch = searching && effect.Applied
	case models.ActionCancel:
		effect.CancelSearch = s.step == StepSearching
		if effect.CancelSearch {
			s.searchSeq++
		}
		effect.Applied = true
		effect.Done = true
		effect.Outcome = models.SessionOutcomeCancelled
	}
	return effect
}

func (s *Session) recordAction(id string) {
	s.lastActionID = id
	s.recentActions = append(s.recentActions, id)
	if n := len(s.recentActions); n > RecentActionLimit {
		s.recentActions = append([]string(nil), s.recentActions[n-RecentActionLimit:]...)
	}
}

// State is a read-only snapshot of a session
type State struct {
	SessionID        string                  `json:"sessionId"`
	Step             Step                    `json:"step"`
	Criteria         search.Criteria         `json:"criteria"`
	FormComplete     bool                    `json:"formComplete"`
	Filter           search.FilterState      `json:"filter"`
	Results          []models.Flight         `json:"results"`
	FilteredFlights  []models.Flight         `json:"filteredFlights"`
	Selection        models.BookingSelection `json:"selection"`
	CanGoBack        bool                    `json:"canGoBack"`
	LastError        string                  `json:"lastError,omitempty"`
	PaymentSubmitted bool                    `json:"paymentSubmitted"`
	Revision         int                     `json:"revision"`
	SearchSequence   int                     `json:"searchSequence"`
	LastActionID     string                  `json:"lastActionId,omitempty"`
	RecentActionIDs  []string                `json:"recentActionIds,omitempty"`
}

// HasApplied reports whether the action with id has been processed, even if
// later actions were processed after it
func (st State) HasApplied(id string) bool {
	return id != "" && (st.LastActionID == id || slices.Contains(st.RecentActionIDs, id))
}

// Snapshot captures the current state
func (s *Session) Snapshot() State {
	results := make([]models.Flight, len(s.results))
	copy(results, s.results)

	return State{
		SessionID:        s.id,
		Step:             s.step,
		Criteria:         s.criteria,
		FormComplete:     s.criteria.IsFormComplete(),
		Filter:           s.filter,
		Results:          results,
		FilteredFlights:  s.FilteredFlights(),
		Selection:        s.selection,
		CanGoBack:        s.CanGoBack(),
		LastError:        s.lastError,
		PaymentSubmitted: s.paymentSubmitted,
		Revision:         s.revision,
		SearchSequence:   s.searchSeq,
		LastActionID:     s.lastActionID,
		RecentActionIDs:  slices.Clone(s.recentActions),
	}
}
