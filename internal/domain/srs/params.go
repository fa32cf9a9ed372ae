package srs

// Params defines the configurable parameters for the review scheduling
// algorithm. The defaults reproduce the scheduling behavior the rest of
// the application is tested against; deployments can tune them through
// configuration.
type Params struct {
	// MinEaseFactor is the floor applied after every ease adjustment.
	MinEaseFactor float64

	// LapseInterval is the interval in days assigned after a failed
	// recall (again or hard).
	LapseInterval int

	// FirstInterval is the interval in days after the first successful
	// recall since a lapse.
	FirstInterval int

	// SecondInterval is the interval in days after the second
	// consecutive successful recall.
	SecondInterval int

	// MasteryThreshold is the repetition count a card must exceed to be
	// considered mastered.
	MasteryThreshold int
}

// NewDefaultParams creates a new Params instance with default values.
func NewDefaultParams() *Params {
	return &Params{
		MinEaseFactor:    1.3,
		LapseInterval:    1,
		FirstInterval:    1,
		SecondInterval:   6,
		MasteryThreshold: 4,
	}
}
