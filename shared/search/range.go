package search

// Range is an inclusive numeric interval
type Range[T int | float64] struct {
	Min T `json:"min"`
	Max T `json:"max"`
}

// Contains reports whether v lies within the range, bounds included
func (r Range[T]) Contains(v T) bool {
	return v >= r.Min && v <= r.Max
}
