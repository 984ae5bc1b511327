package elo

// Params defines all configurable parameters for the Elo rating algorithm
type Params struct {
	// KProvisional is the K-factor applied while a task has fewer than
	// ProvisionalComparisons recorded comparisons.
	KProvisional float64

	// KEstablished is the K-factor applied once a task has at least
	// ProvisionalComparisons recorded comparisons.
	KEstablished float64

	// ProvisionalComparisons is the comparison count at which a task's
	// rating stops being provisional.
	ProvisionalComparisons int

	// Spread controls how strongly a rating gap skews the expected score;
	// a gap of Spread points makes the stronger task a 10:1 favorite.
	Spread float64
}

// NewDefaultParams creates a new Params instance with default values
func NewDefaultParams() *Params {
	return &Params{
		KProvisional:           32,
		KEstablished:           16,
		ProvisionalComparisons: 10,
		Spread:                 400,
	}
}
