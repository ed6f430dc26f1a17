package search

import (
	"strings"

	"github.com/marcos020499/booker/shared/models"
)

// TimeBucket groups departures by time of day
type TimeBucket string

const (
	TimeAny       TimeBucket = "Any"
	TimeMorning   TimeBucket = "Morning"
	TimeAfternoon TimeBucket = "Afternoon"
	TimeEvening   TimeBucket = "Evening"
)

var timeBuckets = []TimeBucket{TimeAny, TimeMorning, TimeAfternoon, TimeEvening}

// ParseTimeBucket resolves a bucket name, ignoring case
func ParseTimeBucket(name string) (TimeBucket, bool) {
	name = strings.TrimSpace(name)
	for _, b := range timeBuckets {
		if strings.EqualFold(name, string(b)) {
			return b, true
		}
	}
	return TimeBucket(name), false
}

var bucketHours = map[TimeBucket]Range[int]{
	TimeMorning:   {Min: 0, Max: 11},
	TimeAfternoon: {Min: 12, Max: 17},
	TimeEvening:   {Min: 18, Max: 23},
}

// Default filter values shown before the traveller touches any control
var (
	DefaultPriceRange    = Range[float64]{Min: 3000, Max: 10000}
	DefaultDurationRange = Range[int]{Min: 60, Max: 300}
)

// FilterState holds the result filters
type FilterState struct {
	FareFamily models.FareFamily `json:"fareFamily"`
	Price      Range[float64]    `json:"price"`
	Duration   Range[int]        `json:"duration"`
	TimeOfDay  TimeBucket        `json:"timeOfDay"`
}

// DefaultFilterState returns the initial filters
func DefaultFilterState() FilterState {
	return FilterState{
		FareFamily: models.FareFamilyEconomy,
		Price:      DefaultPriceRange,
		Duration:   DefaultDurationRange,
		TimeOfDay:  TimeAny,
	}
}

// Apply merges a filter request and reports whether anything changed
func (f *FilterState) Apply(r models.FilterRequest) bool {
	before := *f
	if r.FareFamily != nil {
		f.FareFamily = *r.FareFamily
	}
	if r.MinPrice != nil {
		f.Price.Min = *r.MinPrice
	}
	if r.MaxPrice != nil {
		f.Price.Max = *r.MaxPrice
	}
	if r.MinDuration != nil {
		f.Duration.Min = *r.MinDuration
	}
	if r.MaxDuration != nil {
		f.Duration.Max = *r.MaxDuration
	}
	if r.TimeOfDay != nil {
		f.TimeOfDay, _ = ParseTimeBucket(*r.TimeOfDay)
	}
	return *f != before
}

// Matches reports whether a flight passes every filter
func (f FilterState) Matches(flight models.Flight) bool {
	return matchFareFamily(flight, f.FareFamily) &&
		matchPrice(flight, f.Price) &&
		matchDuration(flight, f.Duration) &&
		matchTimeOfDay(flight, f.TimeOfDay)
}

// FilterFlights returns the flights that pass every filter, in catalog order
func FilterFlights(catalog []models.Flight, f FilterState) []models.Flight {
	result := make([]models.Flight, 0, len(catalog))
	for _, flight := range catalog {
		if f.Matches(flight) {
			result = append(result, flight)
		}
	}
	return result
}

func matchFareFamily(flight models.Flight, fareFamily models.FareFamily) bool {
	return flight.FareFamily == fareFamily
}

func matchPrice(flight models.Flight, price Range[float64]) bool {
	return price.Contains(flight.Price)
}

func matchDuration(flight models.Flight, duration Range[int]) bool {
	return duration.Contains(flight.DurationMinutes)
}

// Unknown buckets include every flight.
func matchTimeOfDay(flight models.Flight, bucket TimeBucket) bool {
	bucket, _ = ParseTimeBucket(string(bucket))
	if bucket == TimeAny {
		return true
	}
	hours, ok := bucketHours[bucket]
	if !ok {
		return true
	}
	return hours.Contains(flight.DepartureTime.Hour())
}
