package adapter

import (
	"dexroute/core/types"
	"dexroute/native/router"
)

// LifinityProgramID is the compiled-in identity of the Lifinity V2 venue
// program.
var LifinityProgramID = ProgramID("dexroute/venue/lifinity-v2")

// lifinity invokes the Lifinity V2 swap program. Lifinity legs carry the pool
// state, oracle and vault accounts in the resource slice; the payload already
// encodes the swap direction and amounts.
func (d *Dispatcher) lifinity(leg router.Leg, resources []types.Resource) (router.AdapterResult, error) {
	return d.invoke(LifinityProgramID, leg, resources)
}
