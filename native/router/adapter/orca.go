package adapter

import (
	"dexroute/core/types"
	"dexroute/native/router"
)

// OrcaProgramID is the compiled-in identity of the Orca Whirlpool venue
// program.
var OrcaProgramID = ProgramID("dexroute/venue/orca-whirlpool")

// orca invokes the Orca Whirlpool swap program. A whirlpool leg brings the
// pool, tick arrays and token vaults as resources; tick-array bounds and
// sqrt-price limits live in the opaque payload.
func (d *Dispatcher) orca(leg router.Leg, resources []types.Resource) (router.AdapterResult, error) {
	return d.invoke(OrcaProgramID, leg, resources)
}
