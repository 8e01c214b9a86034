package router

import (
	"fmt"

	"github.com/holiman/uint256"
)

// BpsDenominator is the basis-point scale used for fee math.
const BpsDenominator = 10_000

// FeeAmount computes floor(deltaOut * feeBps / 10_000) with a widened
// intermediate so the multiplication cannot wrap. A result that does not fit
// back into 64 bits is a fatal overflow, never a clamp; with feeBps bounded at
// 10_000 that cannot happen, but the narrowing is checked regardless.
func FeeAmount(deltaOut uint64, feeBps uint16) (uint64, error) {
	fee := new(uint256.Int).Mul(uint256.NewInt(deltaOut), uint256.NewInt(uint64(feeBps)))
	fee.Div(fee, uint256.NewInt(BpsDenominator))
	if !fee.IsUint64() {
		return 0, fmt.Errorf("%w: fee amount exceeds 64 bits", ErrOverflow)
	}
	return fee.Uint64(), nil
}
