package search

import (
	"time"

	"github.com/marcos020499/booker/shared/models"
)

// Criteria holds the trip parameters entered on the search form
type Criteria struct {
	Origin        *models.Airport      `json:"origin,omitempty"`
	Destination   *models.Airport      `json:"destination,omitempty"`
	TripType      models.TripType      `json:"tripType"`
	DepartureDate time.Time            `json:"departureDate"`
	ReturnDate    time.Time            `json:"returnDate"`
	Passengers    models.PassengerInfo `json:"passengers"`
}

// NewCriteria returns a one-way search for one adult with both dates set to now
func NewCriteria(now time.Time) Criteria {
	return Criteria{
		TripType:      models.TripTypeOneWay,
		DepartureDate: now,
		ReturnDate:    now,
		Passengers:    models.NewPassengerInfo(),
	}
}

// IsFormComplete reports whether a search may be started. Both airports must
// be chosen, a round trip must return strictly after it departs, and at least
// one adult must travel.
func (c Criteria) IsFormComplete() bool {
	if c.Origin == nil || c.Destination == nil {
		return false
	}
	if c.TripType == models.TripTypeRoundTrip && !c.ReturnDate.After(c.DepartureDate) {
		return false
	}
	return c.Passengers.Adults >= 1
}

// SwapAirports exchanges origin and destination. It does nothing unless both
// are set.
func (c *Criteria) SwapAirports() bool {
	if c.Origin == nil || c.Destination == nil {
		return false
	}
	c.Origin, c.Destination = c.Destination, c.Origin
	return true
}

// Apply merges a criteria update and reports whether anything changed
func (c *Criteria) Apply(u models.CriteriaUpdate) bool {
	changed := false
	if u.Origin != nil {
		origin := *u.Origin
		c.Origin = &origin
		changed = true
	}
	if u.Destination != nil {
		destination := *u.Destination
		c.Destination = &destination
		changed = true
	}
	if u.TripType != nil && u.TripType.Valid() {
		c.TripType = *u.TripType
		changed = true
	}
	if u.DepartureDate != nil {
		c.DepartureDate = *u.DepartureDate
		changed = true
	}
	if u.ReturnDate != nil {
		c.ReturnDate = *u.ReturnDate
		changed = true
	}
	return changed
}
