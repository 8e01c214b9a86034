package adapter

import (
	"dexroute/core/types"
	"dexroute/native/router"
)

// InvariantProgramID is the compiled-in identity of the Invariant venue
// program.
var InvariantProgramID = ProgramID("dexroute/venue/invariant")

// invariant invokes the Invariant swap program.
func (d *Dispatcher) invariant(leg router.Leg, resources []types.Resource) (router.AdapterResult, error) {
	return d.invoke(InvariantProgramID, leg, resources)
}
