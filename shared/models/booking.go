package models

import "time"

// BookingSelection holds what the traveller picked after searching
type BookingSelection struct {
	Flight *Flight `json:"flight,omitempty"`
	Seat   string  `json:"seat,omitempty"`
}

// Reset clears the selected flight and seat
func (b *BookingSelection) Reset() {
	b.Flight = nil
	b.Seat = ""
}

// CriteriaRequest updates the search form. Nil fields are left unchanged.
type CriteriaRequest struct {
	Origin        *string    `json:"origin,omitempty" validate:"omitempty,len=3,alpha"`
	Destination   *string    `json:"destination,omitempty" validate:"omitempty,len=3,alpha"`
	TripType      *TripType  `json:"tripType,omitempty" validate:"omitempty,oneof=one_way round_trip"`
	DepartureDate *time.Time `json:"departureDate,omitempty"`
	ReturnDate    *time.Time `json:"returnDate,omitempty"`
}

// PassengerRequest moves one passenger counter up or down
type PassengerRequest struct {
	Kind  PassengerKind `json:"kind" validate:"required,oneof=adults children infants"`
	Delta int           `json:"delta" validate:"required,oneof=-1 1"`
}

// FilterRequest updates the result filters. Nil fields are left unchanged.
type FilterRequest struct {
	FareFamily  *FareFamily `json:"fareFamily,omitempty" validate:"omitempty,min=1"`
	MinPrice    *float64    `json:"minPrice,omitempty" validate:"omitempty,gte=0"`
	MaxPrice    *float64    `json:"maxPrice,omitempty" validate:"omitempty,gte=0"`
	MinDuration *int        `json:"minDuration,omitempty" validate:"omitempty,gte=0"`
	MaxDuration *int        `json:"maxDuration,omitempty" validate:"omitempty,gte=0"`
	TimeOfDay   *string     `json:"timeOfDay,omitempty" validate:"omitempty,timebucket"`
}

// SelectFlightRequest picks a flight from the filtered results
type SelectFlightRequest struct {
	FlightID string `json:"flightId" validate:"required"`
}

// SelectSeatRequest picks a seat on the seat map, e.g. "12F"
type SelectSeatRequest struct {
	Seat string `json:"seat" validate:"required,max=3"`
}

// PaymentRequest represents the payment form. Nothing is charged.
type PaymentRequest struct {
	CardNumber string `json:"cardNumber" validate:"required,numeric,min=12,max=19"`
	Expiry     string `json:"expiry" validate:"required,expiry"`
	CVV        string `json:"cvv" validate:"required,numeric,min=3,max=4"`
}
