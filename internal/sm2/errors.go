package sm2

import "errors"

// Sentinel errors for the sm2 package. Check with errors.Is.
var (
	// ErrInvalidQuality marks a grade outside the 0-5 scale.
	ErrInvalidQuality = errors.New("sm2: quality out of range")

	// ErrInvalidState marks a card whose stored state violates a scheduling
	// invariant. It signals upstream data corruption and should never occur
	// when cards only pass through Schedule and the store.
	ErrInvalidState = errors.New("sm2: invalid card state")
)
