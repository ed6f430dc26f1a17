// Package flow implements the booking flow state machine: which step the
// traveller is on, what they have selected, and how back navigation and the
// asynchronous flight search move them between steps.
package flow

import (
	"errors"
	"fmt"
	"time"

	"github.com/marcos020499/booker/shared/models"
	"github.com/marcos020499/booker/shared/search"
	"github.com/marcos020499/booker/shared/seatmap"
)

// Step is a screen of the booking flow
type Step string

const (
	StepCriteriaEntry Step = "criteria_entry"
	StepSearching     Step = "searching"
	StepResults       Step = "results"
	StepFlightDetail  Step = "flight_detail"
	StepSeatSelection Step = "seat_selection"
	StepPayment       Step = "payment"
)

var ErrSearchFailed = errors.New("flight search failed")

// Options configures a new session
type Options struct {
	ID            string
	Now           time.Time
	MaxPassengers int
	Layout        seatmap.Layout
}

// Session tracks one traveller's progress. It is not safe for concurrent use;
// the owner serializes every call.
type Session struct {
	id            string
	step          Step
	history       []Step
	criteria      search.Criteria
	filter        search.FilterState
	results       []models.Flight
	selection     models.BookingSelection
	maxPassengers int
	layout        seatmap.Layout

	searchSeq        int
	lastError        string
	paymentSubmitted bool
	revision         int
	lastActionID     string
	recentActions    []string
}

// NewSession starts a session on the criteria entry step
func NewSession(opts Options) *Session {
	if opts.MaxPassengers <= 0 {
		opts.MaxPassengers = models.DefaultMaxPassengers
	}
	if opts.Layout == nil {
		opts.Layout = seatmap.Default
	}
	return &Session{
		id:            opts.ID,
		step:          StepCriteriaEntry,
		criteria:      search.NewCriteria(opts.Now),
		filter:        search.DefaultFilterState(),
		maxPassengers: opts.MaxPassengers,
		layout:        opts.Layout,
	}
}

func (s *Session) Step() Step { return s.step }
func (s *Session) Criteria() search.Criteria { return s.criteria }
func (s *Session) Filter() search.FilterState { return s.filter }
func (s *Session) Selection() models.BookingSelection { return s.selection }
func (s *Session) PaymentSubmitted() bool { return s.paymentSubmitted }
func (s *Session) SearchSequence() int { return s.searchSeq }

// FilteredFlights applies the current filters to the last search results
func (s *Session) FilteredFlights() []models.Flight {
	return search.FilterFlights(s.results, s.filter)
}

// CanGoBack reports whether Back would move the session
func (s *Session) CanGoBack() bool {
	return s.step == StepSearching || len(s.history) > 0
}

func (s *Session) touch() {
	s.revision++
}

// navigate moves forward and records where we came from. Searching is
// transient and is never recorded as a back target.
func (s *Session) navigate(to Step) {
	if s.step != StepSearching {
		s.history = append(s.history, s.step)
	}
	s.step = to
	s.touch()
}

func (s *Session) pop() Step {
	if len(s.history) == 0 {
		return StepCriteriaEntry
	}
	prev := s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	return prev
}

// UpdateCriteria edits the search form. Only accepted on criteria entry.
func (s *Session) UpdateCriteria(u models.CriteriaUpdate) bool {
	if s.step != StepCriteriaEntry {
		return false
	}
	if !s.criteria.Apply(u) {
		return false
	}
	s.touch()
	return true
}

// SwapAirports exchanges origin and destination on criteria entry
func (s *Session) SwapAirports() bool {
	if s.step != StepCriteriaEntry || !s.criteria.SwapAirports() {
		return false
	}
	s.touch()
	return true
}

// AdjustPassengers moves one passenger counter, clamped to its bounds
func (s *Session) AdjustPassengers(kind models.PassengerKind, delta int) bool {
	if s.step != StepCriteriaEntry {
		return false
	}
	if !s.criteria.Passengers.Adjust(kind, delta, s.maxPassengers) {
		return false
	}
	s.touch()
	return true
}

// UpdateFilter edits the result filters. Accepted on every step.
func (s *Session) UpdateFilter(r models.FilterRequest) bool {
	if !s.filter.Apply(r) {
		return false
	}
	s.touch()
	return true
}

// StartSearch moves to searching when the form is complete. The previous
// selection and results are discarded. It returns the sequence number the
// caller must hand back to CompleteSearch.
func (s *Session) StartSearch() (int, bool) {
	if s.step != StepCriteriaEntry || !s.criteria.IsFormComplete() {
		return 0, false
	}
	s.selection.Reset()
	s.results = nil
	s.lastError = ""
	s.searchSeq++
	s.navigate(StepSearching)
	return s.searchSeq, true
}

// CompleteSearch delivers the outcome of the search started with seq.
// Outcomes of cancelled or superseded searches are dropped. A failed search
// returns to criteria entry and records the error.
func (s *Session) CompleteSearch(seq int, flights []models.Flight, err error) bool {
	if s.step != StepSearching || seq != s.searchSeq {
		return false
	}
	if err != nil {
		s.lastError = fmt.Errorf("%w: %v", ErrSearchFailed, err).Error()
		s.step = s.pop()
		s.touch()
		return true
	}
	s.results = append([]models.Flight(nil), flights...)
	s.navigate(StepResults)
	return true
}

// CancelSearch abandons an in-flight search and returns to criteria entry
func (s *Session) CancelSearch() bool {
	if s.step != StepSearching {
		return false
	}
	s.searchSeq++
	s.step = s.pop()
	s.touch()
	return true
}

// SelectFlight opens the detail of a flight from the filtered results
func (s *Session) SelectFlight(id string) bool {
	if s.step != StepResults {
		return false
	}
	for _, f := range s.FilteredFlights() {
		if f.ID == id {
			flight := f
			s.selection.Flight = &flight
			s.navigate(StepFlightDetail)
			return true
		}
	}
	return false
}

// OpenSeatSelection shows the seat map for the selected flight
func (s *Session) OpenSeatSelection() bool {
	if s.step != StepFlightDetail || s.selection.Flight == nil {
		return false
	}
	s.navigate(StepSeatSelection)
	return true
}

// ChooseSeat records a seat and returns to the flight detail
func (s *Session) ChooseSeat(code string) bool {
	if s.step != StepSeatSelection {
		return false
	}
	row, col, err := seatmap.ParseSeat(code)
	if err != nil {
		return false
	}
	seat := fmt.Sprintf("%d%s", row, col)
	if !s.layout.Valid(seat) {
		return false
	}
	s.selection.Seat = seat
	s.step = s.pop()
	s.touch()
	return true
}

// ContinueToPayment moves from the flight detail to the payment form
func (s *Session) ContinueToPayment() bool {
	if s.step != StepFlightDetail || s.selection.Flight == nil {
		return false
	}
	s.navigate(StepPayment)
	return true
}

// SubmitPayment marks the payment form as submitted. Nothing is charged.
func (s *Session) SubmitPayment() bool {
	if s.step != StepPayment || s.paymentSubmitted {
		return false
	}
	s.paymentSubmitted = true
	s.touch()
	return true
}

// Back returns to the previous step without clearing any selection. Going
// back from searching cancels the search.
func (s *Session) Back() bool {
	if s.step == StepSearching {
		return s.CancelSearch()
	}
	if len(s.history) == 0 {
		return false
	}
	s.step = s.pop()
	s.touch()
	return true
}

// Restart clears the selection, results and last search error and returns to
// criteria entry. The criteria and filters are kept.
func (s *Session) Restart() bool {
	if s.step == StepCriteriaEntry && len(s.history) == 0 && s.results == nil && s.selection.Flight == nil && s.lastError == "" {
		return false
	}
	s.searchSeq++
	s.history = nil
	s.results = nil
	s.lastError = ""
	s.selection.Reset()
	s.paymentSubmitted = false
	s.step = StepCriteriaEntry
	s.touch()
	return true
}
