package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/marcos020499/booker/shared/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS airports (
	id   UUID PRIMARY KEY,
	code CHAR(3) NOT NULL UNIQUE,
	name TEXT NOT NULL,
	position INT NOT NULL
);

CREATE TABLE IF NOT EXISTS flights (
	id                TEXT PRIMARY KEY,
	departure_airport CHAR(3) NOT NULL,
	arrival_airport   CHAR(3) NOT NULL,
	departure_time    TIMESTAMPTZ NOT NULL,
	arrival_time      TIMESTAMPTZ NOT NULL,
	airline           TEXT NOT NULL,
	flight_number     TEXT NOT NULL,
	duration_minutes  INT NOT NULL CHECK (duration_minutes >= 0),
	seat_class        TEXT NOT NULL,
	baggage_kg        INT NOT NULL CHECK (baggage_kg >= 0),
	fare_family       TEXT NOT NULL,
	price             NUMERIC(10, 2) NOT NULL CHECK (price >= 0),
	currency          CHAR(3) NOT NULL,
	progress          DOUBLE PRECISION NOT NULL CHECK (progress BETWEEN 0 AND 1),
	position          INT NOT NULL
);
`

// Repository handles database operations for the worker
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the catalog tables when they do not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SeedCatalog upserts the reference airports and flights in one transaction
func (r *Repository) SeedCatalog(ctx context.Context, airports []models.Airport, flights []models.Flight) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for i, a := range airports {
		batch.Queue(`
			INSERT INTO airports (id, code, name, position)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, position = EXCLUDED.position
		`, a.ID, a.Code, a.Name, i)
	}
	for i, f := range flights {
		batch.Queue(`
			INSERT INTO flights (id, departure_airport, arrival_airport, departure_time, arrival_time,
			                     airline, flight_number, duration_minutes, seat_class, baggage_kg,
			                     fare_family, price, currency, progress, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			ON CONFLICT (id) DO UPDATE SET
				departure_time = EXCLUDED.departure_time,
				arrival_time   = EXCLUDED.arrival_time,
				price          = EXCLUDED.price,
				progress       = EXCLUDED.progress,
				position       = EXCLUDED.position
		`, f.ID, f.Departure, f.Arrival, f.DepartureTime, f.ArrivalTime,
			f.Airline, f.FlightNumber, f.DurationMinutes, string(f.SeatClass), f.BaggageKg,
			string(f.FareFamily), f.Price, f.Currency, f.Progress, i)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to seed catalog: %w", err)
	}
	return tx.Commit(ctx)
}

// ListFlights returns every flight in catalog order
func (r *Repository) ListFlights(ctx context.Context) ([]models.Flight, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, departure_airport, arrival_airport, departure_time, arrival_time,
		       airline, flight_number, duration_minutes, seat_class, baggage_kg,
		       fare_family, price::float8, currency, progress
		FROM flights
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query flights: %w", err)
	}
	defer rows.Close()

	flights := make([]models.Flight, 0)
	for rows.Next() {
		var f models.Flight
		err := rows.Scan(
			&f.ID, &f.Departure, &f.Arrival, &f.DepartureTime, &f.ArrivalTime,
			&f.Airline, &f.FlightNumber, &f.DurationMinutes, &f.SeatClass, &f.BaggageKg,
			&f.FareFamily, &f.Price, &f.Currency, &f.Progress,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read flights: %w", err)
	}
	return flights, nil
}
