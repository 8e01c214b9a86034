package router

import "errors"

var (
	// ErrResourceShortage indicates a leg declared more resources than remain
	// in the caller-supplied pool.
	ErrResourceShortage = errors.New("router: insufficient resources for leg")
	// ErrOwnershipViolation indicates a pooled resource is owned by an
	// authority outside the adapter's whitelist.
	ErrOwnershipViolation = errors.New("router: resource owner outside adapter whitelist")
	// ErrContinuityViolation indicates adjacent legs' assets do not chain, or
	// the route's boundary assets do not match the caller's balances.
	ErrContinuityViolation = errors.New("router: mint continuity violation")
	// ErrConsumptionMismatch indicates an adapter consumed a different number
	// of resources than the leg declared.
	ErrConsumptionMismatch = errors.New("router: adapter resource consumption mismatch")
	// ErrOverflow indicates a checked arithmetic step would overflow or
	// underflow its native width.
	ErrOverflow = errors.New("router: arithmetic overflow")
	// ErrSpendExceeded indicates the real source-balance delta exceeded the
	// caller's spend cap.
	ErrSpendExceeded = errors.New("router: spent more than user max in")
	// ErrSlippageExceeded indicates the net output fell short of the caller's
	// minimum.
	ErrSlippageExceeded = errors.New("router: net output below user min out")
	// ErrFeeDestinationMismatch indicates the presented fee account failed the
	// identity or asset binding against governance state.
	ErrFeeDestinationMismatch = errors.New("router: fee destination mismatch")
	// ErrUnauthorized indicates the caller does not own the presented
	// balances.
	ErrUnauthorized = errors.New("router: caller does not own balance")
	// ErrPaused indicates the protocol pause switch is on.
	ErrPaused = errors.New("router: protocol paused")
	// ErrUnknownVenue indicates a leg named a venue id outside the dispatcher's
	// known set.
	ErrUnknownVenue = errors.New("router: unknown venue id")
	// ErrEmptyRoute indicates a route with no legs.
	ErrEmptyRoute = errors.New("router: route must contain at least one leg")
	// ErrTooManyLegs indicates the route exceeded MaxLegs.
	ErrTooManyLegs = errors.New("router: too many legs")

	errStateNotConfigured      = errors.New("router: state not configured")
	errDispatcherNotConfigured = errors.New("router: dispatcher not configured")
	errGovernanceNotConfigured = errors.New("router: governance not configured")
	errGovernanceUninitialized = errors.New("router: governance record not initialised")
)

// Kind maps an execution error onto its taxonomy name. Used for metrics
// labels and RPC error codes; unrecognised errors map to "internal".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrResourceShortage):
		return "resource_shortage"
	case errors.Is(err, ErrOwnershipViolation):
		return "ownership_violation"
	case errors.Is(err, ErrContinuityViolation):
		return "continuity_violation"
	case errors.Is(err, ErrConsumptionMismatch):
		return "consumption_mismatch"
	case errors.Is(err, ErrOverflow):
		return "overflow"
	case errors.Is(err, ErrSpendExceeded):
		return "spend_exceeded"
	case errors.Is(err, ErrSlippageExceeded):
		return "slippage_exceeded"
	case errors.Is(err, ErrFeeDestinationMismatch):
		return "fee_destination_mismatch"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrPaused):
		return "paused"
	case errors.Is(err, ErrUnknownVenue):
		return "unknown_venue"
	case errors.Is(err, ErrEmptyRoute):
		return "empty_route"
	case errors.Is(err, ErrTooManyLegs):
		return "too_many_legs"
	default:
		return "internal"
	}
}
