package models

import (
	"time"

	"github.com/google/uuid"
)

// Airport represents a selectable origin or destination
type Airport struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Code string    `json:"code"`
}

// Flight represents a flight offered by the catalog
type Flight struct {
	ID              string     `json:"id"`
	Departure       string     `json:"departure"`
	Arrival         string     `json:"arrival"`
	DepartureTime   time.Time  `json:"departureTime"`
	ArrivalTime     time.Time  `json:"arrivalTime"`
	Airline         string     `json:"airline"`
	FlightNumber    string     `json:"flightNumber"`
	DurationMinutes int        `json:"duration"`
	SeatClass       SeatClass  `json:"seatClass"`
	BaggageKg       int        `json:"baggage"`
	FareFamily      FareFamily `json:"fareFamily"`
	Price           float64    `json:"price"`
	Currency        string     `json:"currency"`
	Progress        float64    `json:"progress"`
}

type SeatClass string

const (
	SeatClassEconomy  SeatClass = "economy"
	SeatClassBusiness SeatClass = "business"
	SeatClassFirst    SeatClass = "first"
)

// FareFamily is the fare product a flight is sold under. Matching is exact
// and case-sensitive.
type FareFamily string

const (
	FareFamilyEconomy FareFamily = "ECONOMY"
	FareFamilyAMPlus  FareFamily = "AM_PLUS"
	FareFamilyPremier FareFamily = "PREMIER"
)

type TripType string

const (
	TripTypeOneWay    TripType = "one_way"
	TripTypeRoundTrip TripType = "round_trip"
)

// Valid reports whether t is a known trip type
func (t TripType) Valid() bool {
	return t == TripTypeOneWay || t == TripTypeRoundTrip
}
