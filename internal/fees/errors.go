package fees

import "errors"

var (
	// ErrInvalidRange is returned when a lower tick index is not below the upper tick index.
	ErrInvalidRange = errors.New("invalid tick range")
	// ErrEstimateUnavailable is returned when a fee rate cannot be estimated from the snapshots.
	ErrEstimateUnavailable = errors.New("fee estimate unavailable")
	// ErrNoCheckpoints is returned when a reconstruction is started without position checkpoints.
	ErrNoCheckpoints = errors.New("no position checkpoints")
	// ErrNonPositiveDays is returned for an estimate period that is zero or negative.
	ErrNonPositiveDays = errors.New("estimate period must be positive")
	// ErrMissingAccounting is returned when a position lacks liquidity or inside growth values.
	ErrMissingAccounting = errors.New("position accounting state missing")
	// ErrUnordered is returned when pool days repeat or go back in time, or checkpoints go back
	// in time.
	ErrUnordered = errors.New("records out of order")
)
