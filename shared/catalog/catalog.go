// Package catalog holds the static airport and flight reference data.
package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jszwec/csvutil"
	"github.com/marcos020499/booker/shared/models"
)

var (
	ErrUnknownAirport = errors.New("unknown airport")
	ErrUnknownFlight  = errors.New("unknown flight")
)

// airportNamespace seeds the deterministic airport IDs
var airportNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("booker/airports"))

//go:embed airports.csv
var airportsCSV []byte

//go:embed flights.csv
var flightsCSV []byte

type airportRecord struct {
	Code string `csv:"code"`
	Name string `csv:"name"`
}

type flightRecord struct {
	ID              string            `csv:"id"`
	Departure       string            `csv:"departure"`
	Arrival         string            `csv:"arrival"`
	Airline         string            `csv:"airline"`
	FlightNumber    string            `csv:"flight_number"`
	DurationMinutes int               `csv:"duration_minutes"`
	SeatClass       models.SeatClass  `csv:"seat_class"`
	BaggageKg       int               `csv:"baggage_kg"`
	FareFamily      models.FareFamily `csv:"fare_family"`
	Price           float64           `csv:"price"`
	Currency        string            `csv:"currency"`
	Progress        float64           `csv:"progress"`
}

// Catalog is an immutable, in-memory view of the seed data
type Catalog struct {
	airports []models.Airport
	flights  []models.Flight
	byCode   map[string]int
	byID     map[string]int
}

// New decodes the embedded seed data. Every flight departs at now and
// arrives after its duration.
func New(now time.Time) (*Catalog, error) {
	var airports []airportRecord
	if err := decode(airportsCSV, &airports); err != nil {
		return nil, fmt.Errorf("failed to decode airports: %w", err)
	}
	var flights []flightRecord
	if err := decode(flightsCSV, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}

	c := &Catalog{
		airports: make([]models.Airport, 0, len(airports)),
		flights:  make([]models.Flight, 0, len(flights)),
		byCode:   make(map[string]int, len(airports)),
		byID:     make(map[string]int, len(flights)),
	}
	for _, a := range airports {
		c.byCode[a.Code] = len(c.airports)
		c.airports = append(c.airports, models.Airport{
			ID:   AirportID(a.Code),
			Name: a.Name,
			Code: a.Code,
		})
	}
	for _, f := range flights {
		if f.DurationMinutes < 0 || f.BaggageKg < 0 || f.Price < 0 || f.Progress < 0 || f.Progress > 1 {
			return nil, fmt.Errorf("invalid flight record %s", f.ID)
		}
		c.byID[f.ID] = len(c.flights)
		c.flights = append(c.flights, models.Flight{
			ID:              f.ID,
			Departure:       f.Departure,
			Arrival:         f.Arrival,
			DepartureTime:   now,
			ArrivalTime:     now.Add(time.Duration(f.DurationMinutes) * time.Minute),
			Airline:         f.Airline,
			FlightNumber:    f.FlightNumber,
			DurationMinutes: f.DurationMinutes,
			SeatClass:       f.SeatClass,
			BaggageKg:       f.BaggageKg,
			FareFamily:      f.FareFamily,
			Price:           f.Price,
			Currency:        f.Currency,
			Progress:        f.Progress,
		})
	}
	return c, nil
}

func decode(data []byte, v interface{}) error {
	decoder, err := csvutil.NewDecoder(csv.NewReader(bytes.NewReader(data)))
	if err != nil {
		return err
	}
	return decoder.Decode(v)
}

// AirportID returns the stable ID for an airport code
func AirportID(code string) uuid.UUID {
	return uuid.NewSHA1(airportNamespace, []byte(strings.ToUpper(code)))
}

// Airports returns the airports in reference order
func (c *Catalog) Airports() []models.Airport {
	out := make([]models.Airport, len(c.airports))
	copy(out, c.airports)
	return out
}

// Airport looks up an airport by its IATA code, ignoring case
func (c *Catalog) Airport(code string) (models.Airport, error) {
	i, ok := c.byCode[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return models.Airport{}, fmt.Errorf("%w: %s", ErrUnknownAirport, code)
	}
	return c.airports[i], nil
}

// Flights returns the flights in catalog order
func (c *Catalog) Flights() []models.Flight {
	out := make([]models.Flight, len(c.flights))
	copy(out, c.flights)
	return out
}

// Flight looks up a flight by ID
func (c *Catalog) Flight(id string) (models.Flight, error) {
	i, ok := c.byID[id]
	if !ok {
		return models.Flight{}, fmt.Errorf("%w: %s", ErrUnknownFlight, id)
	}
	return c.flights[i], nil
}

// ListAirports returns the airports in reference order
func (c *Catalog) ListAirports(ctx context.Context) ([]models.Airport, error) {
	return c.Airports(), nil
}

// FindAirport looks up an airport by code
func (c *Catalog) FindAirport(ctx context.Context, code string) (*models.Airport, error) {
	a, err := c.Airport(code)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListFlights returns the flights in catalog order
func (c *Catalog) ListFlights(ctx context.Context) ([]models.Flight, error) {
	return c.Flights(), nil
}

// GetFlight looks up a flight by ID
func (c *Catalog) GetFlight(ctx context.Context, id string) (*models.Flight, error) {
	f, err := c.Flight(id)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
