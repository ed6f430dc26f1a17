package flow

import (
	"fmt"
	"testing"

	"github.com/marcos020499/booker/shared/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_SearchEffect(t *testing.T) {
	s := readySession(t)

	effect := s.Dispatch(models.SessionAction{ID: "a-1", Type: models.ActionSearch})

	assert.True(t, effect.Applied)
	assert.True(t, effect.StartSearch)
	assert.Equal(t, s.SearchSequence(), effect.SearchSequence)
	assert.Equal(t, "a-1", s.Snapshot().LastActionID)
}

func TestDispatch_InertActionRecordsID(t *testing.T) {
	s := NewSession(Options{Now: testNow})
	rev := s.Snapshot().Revision

	effect := s.Dispatch(models.SessionAction{ID: "a-2", Type: models.ActionSearch})

	assert.False(t, effect.Applied)
	assert.False(t, effect.StartSearch)
	state := s.Snapshot()
	assert.Equal(t, StepCriteriaEntry, state.Step)
	assert.Equal(t, rev, state.Revision)
	assert.Equal(t, "a-2", state.LastActionID)
}

func TestDispatch_RemembersOverlappingActions(t *testing.T) {
	s := readySession(t)

	s.Dispatch(models.SessionAction{ID: "a-1", Type: models.ActionAdjustPassengers,
		Passengers: &models.PassengerAdjustment{Kind: models.PassengerAdults, Delta: 1}})
	s.Dispatch(models.SessionAction{ID: "a-2", Type: models.ActionAdjustPassengers,
		Passengers: &models.PassengerAdjustment{Kind: models.PassengerChildren, Delta: 1}})

	state := s.Snapshot()
	assert.Equal(t, "a-2", state.LastActionID)
	assert.True(t, state.HasApplied("a-1"))
	assert.True(t, state.HasApplied("a-2"))
	assert.False(t, state.HasApplied("a-3"))
	assert.False(t, state.HasApplied(""))
}

func TestDispatch_RecentActionsAreBounded(t *testing.T) {
	s := NewSession(Options{Now: testNow})

	for i := 0; i < RecentActionLimit+10; i++ {
		s.Dispatch(models.SessionAction{ID: fmt.Sprintf("a-%d", i), Type: models.ActionBack})
	}

	state := s.Snapshot()
	assert.Len(t, state.RecentActionIDs, RecentActionLimit)
	assert.False(t, state.HasApplied("a-0"))
	assert.True(t, state.HasApplied("a-10"))
	assert.Equal(t, fmt.Sprintf("a-%d", RecentActionLimit+9), state.RecentActionIDs[RecentActionLimit-1])
}

func TestDispatch_SearchSequenceInSnapshot(t *testing.T) {
	s := readySession(t)

	effect := s.Dispatch(models.SessionAction{Type: models.ActionSearch})
	assert.Equal(t, effect.SearchSequence, s.Snapshot().SearchSequence)

	s.Dispatch(models.SessionAction{Type: models.ActionBack})
	assert.Greater(t, s.Snapshot().SearchSequence, effect.SearchSequence)
}

func TestDispatch_BackDuringSearch(t *testing.T) {
	s := readySession(t)
	s.Dispatch(models.SessionAction{Type: models.ActionSearch})

	effect := s.Dispatch(models.SessionAction{Type: models.ActionBack})

	assert.True(t, effect.Applied)
	assert.True(t, effect.CancelSearch)
	assert.Equal(t, StepCriteriaEntry, s.Step())
}

func TestDispatch_FullJourney(t *testing.T) {
	s := readySession(t)

	search := s.Dispatch(models.SessionAction{Type: models.ActionSearch})
	require.True(t, search.StartSearch)
	require.True(t, s.CompleteSearch(search.SearchSequence, testCatalog(t).Flights(), nil))

	steps := []struct {
		action models.SessionAction
		step   Step
	}{
		{models.SessionAction{Type: models.ActionSelectFlight, FlightID: "FL002"}, StepFlightDetail},
		{models.SessionAction{Type: models.ActionOpenSeatMap}, StepSeatSelection},
		{models.SessionAction{Type: models.ActionSelectSeat, Seat: "7C"}, StepFlightDetail},
		{models.SessionAction{Type: models.ActionContinueToPayment}, StepPayment},
	}
	for _, st := range steps {
		effect := s.Dispatch(st.action)
		require.True(t, effect.Applied, st.action.Type)
		require.Equal(t, st.step, s.Step())
	}

	effect := s.Dispatch(models.SessionAction{Type: models.ActionSubmitPayment})
	assert.True(t, effect.Done)
	assert.Equal(t, models.SessionOutcomePaymentSubmitted, effect.Outcome)
	assert.True(t, s.Snapshot().PaymentSubmitted)
	assert.Equal(t, "7C", s.Selection().Seat)
}

func TestDispatch_Cancel(t *testing.T) {
	s := readySession(t)
	s.Dispatch(models.SessionAction{Type: models.ActionSearch})

	effect := s.Dispatch(models.SessionAction{Type: models.ActionCancel})

	assert.True(t, effect.Done)
	assert.True(t, effect.CancelSearch)
	assert.Equal(t, models.SessionOutcomeCancelled, effect.Outcome)
}

func TestDispatch_CriteriaAndPassengers(t *testing.T) {
	s := readySession(t)

	assert.True(t, s.Dispatch(models.SessionAction{Type: models.ActionSwapAirports}).Applied)
	assert.Equal(t, "JFK", s.Criteria().Origin.Code)

	effect := s.Dispatch(models.SessionAction{
		Type:       models.ActionAdjustPassengers,
		Passengers: &models.PassengerAdjustment{Kind: models.PassengerChildren, Delta: 1},
	})
	assert.True(t, effect.Applied)
	assert.Equal(t, 1, s.Criteria().Passengers.Children)

	// missing payloads are inert
	assert.False(t, s.Dispatch(models.SessionAction{Type: models.ActionUpdateCriteria}).Applied)
	assert.False(t, s.Dispatch(models.SessionAction{Type: models.ActionAdjustPassengers}).Applied)
	assert.False(t, s.Dispatch(models.SessionAction{Type: models.ActionUpdateFilter}).Applied)
	assert.False(t, s.Dispatch(models.SessionAction{Type: "teleport"}).Applied)
}

func TestSnapshot_FormComplete(t *testing.T) {
	assert.False(t, NewSession(Options{Now: testNow}).Snapshot().FormComplete)
	assert.True(t, readySession(t).Snapshot().FormComplete)
}
