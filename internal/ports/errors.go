package ports

import "errors"

// Standard application-level errors.
// Adapters wrap underlying infrastructure errors with these standard errors
// so callers can branch with errors.Is without importing adapter packages.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrTimeout            = errors.New("operation timed out")
	ErrContextCanceled    = errors.New("operation canceled via context")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Transport: the request never produced a usable venue response.
	// Never retried automatically; the caller treats the step as failed.
	ErrTransport = errors.New("transport failure talking to the venue")

	// Authentication: bad signature, key or permissions. Fatal at startup,
	// recoverable mid-run only by aborting the affected call.
	ErrAuthenticationFailed = errors.New("venue authentication failed (check API keys)")

	// Venue rejection: the venue answered with a non-zero return code
	// (insufficient margin, invalid quantity, ...). Treated as a failed
	// trade attempt, not retried within the same tick.
	ErrVenueRejected = errors.New("request rejected by the venue")

	// Data insufficiency: too few candles or missing instrument metadata.
	// Causes a Hold/skip, never surfaced to the operator as a failure.
	ErrDataInsufficient = errors.New("not enough data for calculation")

	ErrInsufficientFunds    = errors.New("insufficient funds for operation")
	ErrOrderPlacementFailed = errors.New("failed to place order")
	ErrPositionNotFound     = errors.New("position not found on the venue")
	ErrInstrumentNotFound   = errors.New("instrument metadata not found")
)
