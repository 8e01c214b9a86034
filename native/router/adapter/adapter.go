// Package adapter holds the venue adapters and the dispatcher that routes a
// leg to the right one. Adapters are deliberately thin and stateless: they
// validate the resource slice a leg claims, re-encode it into the venue's
// native call format, forward the leg's opaque payload verbatim, and report
// how many resources they consumed. They never sign, never inspect the
// payload, and never let their hint values feed financial accounting.
package adapter

import (
	"fmt"

	"dexroute/core/types"
	"dexroute/crypto"
	"dexroute/native/router"
)

// Fixed program identities every adapter whitelists alongside its own venue
// program: resources holding fungible-asset balances and bare system state are
// legitimate call inputs for any venue.
var (
	TokenProgramID  = ProgramID("dexroute/program/token")
	SystemProgramID = ProgramID("dexroute/program/system")
)

// ProgramID derives the compiled-in identity for a named program.
func ProgramID(label string) [20]byte {
	var id [20]byte
	copy(id[:], crypto.Keccak256([]byte(label))[12:])
	return id
}

// CallDescriptor is the venue-native form of a leg: the target program, the
// re-encoded resource list, and the caller's opaque payload.
type CallDescriptor struct {
	Program  [20]byte
	Accounts []types.AccountMeta
	Payload  []byte
}

// Invoker executes a prepared venue call against the host environment. A
// failed invocation aborts the whole route.
type Invoker interface {
	Invoke(call CallDescriptor) error
}

// Dispatcher routes legs to venue adapters by their venue id. It implements
// router.Dispatcher and is the single place that must grow when a venue is
// added; the exhaustiveness test pins its known set to router.KnownVenues.
type Dispatcher struct {
	invoker Invoker
}

// NewDispatcher wires the dispatcher to the host invoker.
func NewDispatcher(invoker Invoker) *Dispatcher {
	return &Dispatcher{invoker: invoker}
}

// Dispatch forwards the leg and the remaining resource slice to the adapter
// named by the leg's venue id. Unknown ids fail with a distinct error instead
// of defaulting to any adapter.
func (d *Dispatcher) Dispatch(leg router.Leg, resources []types.Resource) (router.AdapterResult, error) {
	switch leg.Venue {
	case router.VenueLifinityV2:
		return d.lifinity(leg, resources)
	case router.VenueOrcaWhirlpool:
		return d.orca(leg, resources)
	case router.VenueSolarCP:
		return d.solarCP(leg, resources)
	case router.VenueSolarCLMM:
		return d.solarCLMM(leg, resources)
	case router.VenueInvariant:
		return d.invariant(leg, resources)
	default:
		return router.AdapterResult{}, fmt.Errorf("%w: %d", router.ErrUnknownVenue, leg.Venue)
	}
}

// invoke implements the adapter contract shared by every venue:
//
//  1. the remaining pool must cover the leg's declared resource count;
//  2. a zero-resource leg returns its hints immediately without touching the
//     pool or the venue;
//  3. every consumed resource's owning authority must be the venue program,
//     the token program, or the system program;
//  4. the validated slice is re-encoded and the opaque payload forwarded to
//     the venue program.
//
// The returned spent/received values are the leg's own hints; the engine
// discards them after the consumption check.
func (d *Dispatcher) invoke(program [20]byte, leg router.Leg, resources []types.Resource) (router.AdapterResult, error) {
	if program == ([20]byte{}) {
		// Fail closed on a misconfigured venue identity.
		return router.AdapterResult{}, fmt.Errorf("%w: venue program identity unset", router.ErrOwnershipViolation)
	}
	needed := int(leg.ResourceCount)
	if len(resources) < needed {
		return router.AdapterResult{}, fmt.Errorf("%w: need %d, have %d", router.ErrResourceShortage, needed, len(resources))
	}
	if needed == 0 {
		return router.AdapterResult{Spent: leg.InAmountHint, Received: leg.MinOutHint, Consumed: 0}, nil
	}

	slice := resources[:needed]
	for i, res := range slice {
		if res.Owner != program && res.Owner != TokenProgramID && res.Owner != SystemProgramID {
			return router.AdapterResult{}, fmt.Errorf("%w: resource %d owned by %x", router.ErrOwnershipViolation, i, res.Owner)
		}
	}

	metas := make([]types.AccountMeta, 0, needed)
	for _, res := range slice {
		metas = append(metas, types.AccountMeta{Address: res.Address, Signer: res.Signer, Writable: res.Writable})
	}
	if d.invoker == nil {
		return router.AdapterResult{}, fmt.Errorf("adapter: invoker not configured")
	}
	if err := d.invoker.Invoke(CallDescriptor{Program: program, Accounts: metas, Payload: leg.Payload}); err != nil {
		return router.AdapterResult{}, err
	}
	return router.AdapterResult{Spent: leg.InAmountHint, Received: leg.MinOutHint, Consumed: needed}, nil
}
