package adapter

import (
	"dexroute/core/types"
	"dexroute/native/router"
)

// SolarCLMMProgramID is the compiled-in identity of the Solar concentrated
// liquidity venue program.
var SolarCLMMProgramID = ProgramID("dexroute/venue/solar-clmm")

// solarCLMM invokes the Solar concentrated-liquidity swap program.
func (d *Dispatcher) solarCLMM(leg router.Leg, resources []types.Resource) (router.AdapterResult, error) {
	return d.invoke(SolarCLMMProgramID, leg, resources)
}
