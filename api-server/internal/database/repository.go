package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcos020499/booker/shared/models"
)

var (
	ErrNotFound = errors.New("not found")
)

const flightColumns = `
	id, departure_airport, arrival_airport, departure_time, arrival_time,
	airline, flight_number, duration_minutes, seat_class, baggage_kg,
	fare_family, price::float8, currency, progress
`

// Repository handles catalog reads for the API
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// --- Airport Operations ---

// ListAirports returns the airports in reference order
func (r *Repository) ListAirports(ctx context.Context) ([]models.Airport, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, code FROM airports ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query airports: %w", err)
	}
	defer rows.Close()

	airports := make([]models.Airport, 0)
	for rows.Next() {
		var a models.Airport
		if err := rows.Scan(&a.ID, &a.Name, &a.Code); err != nil {
			return nil, fmt.Errorf("failed to scan airport: %w", err)
		}
		airports = append(airports, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read airports: %w", err)
	}
	return airports, nil
}

// FindAirport returns an airport by its IATA code
func (r *Repository) FindAirport(ctx context.Context, code string) (*models.Airport, error) {
	var a models.Airport
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, code FROM airports WHERE code = $1
	`, strings.ToUpper(strings.TrimSpace(code))).Scan(&a.ID, &a.Name, &a.Code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get airport: %w", err)
	}
	return &a, nil
}

// --- Flight Operations ---

// ListFlights returns every flight in catalog order
func (r *Repository) ListFlights(ctx context.Context) ([]models.Flight, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]models.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flights: %w", err)
	}
	return flights, nil
}

// GetFlight returns a flight by ID
func (r *Repository) GetFlight(ctx context.Context, id string) (*models.Flight, error) {
	f, err := scanFlight(r.pool.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return f, nil
}

func scanFlight(row pgx.Row) (*models.Flight, error) {
	var f models.Flight
	err := row.Scan(
		&f.ID, &f.Departure, &f.Arrival, &f.DepartureTime, &f.ArrivalTime,
		&f.Airline, &f.FlightNumber, &f.DurationMinutes, &f.SeatClass, &f.BaggageKg,
		&f.FareFamily, &f.Price, &f.Currency, &f.Progress,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
