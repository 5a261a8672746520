package dsa

import "errors"

// Error kinds. Callers classify failures with errors.Is; the wrapped
// message carries the specifics.
var (
	// ErrUsage marks caller mistakes: missing key material, sizes out
	// of range, options invalid for the selected standard.
	ErrUsage = errors.New("dsa: invalid usage")

	// ErrRandomness marks a failure of the system entropy source.
	ErrRandomness = errors.New("dsa: randomness source failure")

	// ErrInternal marks a violated post-condition. It indicates a bug
	// in the library, not in the caller.
	ErrInternal = errors.New("dsa: internal consistency failure")

	// ErrCanceled is returned when generation stops because the context
	// was canceled or the progress hook requested a stop.
	ErrCanceled = errors.New("dsa: generation canceled")
)
