package adapter

import (
	"dexroute/core/types"
	"dexroute/native/router"
)

// SolarCPProgramID is the compiled-in identity of the Solar constant-product
// venue program.
var SolarCPProgramID = ProgramID("dexroute/venue/solar-cp")

// solarCP invokes the Solar constant-product swap program.
func (d *Dispatcher) solarCP(leg router.Leg, resources []types.Resource) (router.AdapterResult, error) {
	return d.invoke(SolarCPProgramID, leg, resources)
}
