package models

// DefaultMaxPassengers caps each passenger category when no limit is configured
const DefaultMaxPassengers = 10

// PassengerKind identifies one of the passenger counters
type PassengerKind string

const (
	PassengerAdults   PassengerKind = "adults"
	PassengerChildren PassengerKind = "children"
	PassengerInfants  PassengerKind = "infants"
)

// PassengerInfo holds the passenger counts for a search
type PassengerInfo struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
	Infants  int `json:"infants"`
}

// NewPassengerInfo returns the default party of one adult
func NewPassengerInfo() PassengerInfo {
	return PassengerInfo{Adults: 1}
}

// Total returns the number of travellers across all categories
func (p PassengerInfo) Total() int {
	return p.Adults + p.Children + p.Infants
}

// Increment adds one passenger of the given kind, clamped to max
func (p *PassengerInfo) Increment(kind PassengerKind, max int) bool {
	return p.Adjust(kind, 1, max)
}

// Decrement removes one passenger of the given kind, clamped to the kind's floor
func (p *PassengerInfo) Decrement(kind PassengerKind, max int) bool {
	return p.Adjust(kind, -1, max)
}

// Adjust moves a counter by delta and clamps the result to [floor, max].
// Adults never drop below one; children and infants never below zero.
// It reports whether the counter changed. Unknown kinds are ignored.
func (p *PassengerInfo) Adjust(kind PassengerKind, delta int, max int) bool {
	if max <= 0 {
		max = DefaultMaxPassengers
	}

	var counter *int
	floor := 0
	switch kind {
	case PassengerAdults:
		counter = &p.Adults
		floor = 1
	case PassengerChildren:
		counter = &p.Children
	case PassengerInfants:
		counter = &p.Infants
	default:
		return false
	}

	next := *counter + delta
	if next < floor {
		next = floor
	}
	if next > max {
		next = max
	}
	if next == *counter {
		return false
	}
	*counter = next
	return true
}
