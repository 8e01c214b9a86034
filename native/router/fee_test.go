package router

import (
	"math"
	"testing"
)

func TestFeeAmountBounds(t *testing.T) {
	outs := []uint64{1, 10, 10_000, math.MaxUint64 / 2}
	rates := []uint16{0, 1, 10, 10_000}
	for _, out := range outs {
		for _, bps := range rates {
			fee, err := FeeAmount(out, bps)
			if err != nil {
				t.Fatalf("fee(%d, %d): unexpected error: %v", out, bps, err)
			}
			if fee > out {
				t.Fatalf("fee(%d, %d) = %d exceeds output", out, bps, fee)
			}
			if bps == BpsDenominator && fee != out {
				t.Fatalf("fee(%d, %d) = %d, want full output", out, bps, fee)
			}
			if bps == 0 && fee != 0 {
				t.Fatalf("fee(%d, 0) = %d, want 0", out, fee)
			}
		}
	}
}

func TestFeeAmountFloors(t *testing.T) {
	// 950 * 50 / 10_000 = 4.75, floored to 4.
	fee, err := FeeAmount(950, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fee != 4 {
		t.Fatalf("fee = %d, want 4", fee)
	}
}

func TestFeeAmountWideIntermediate(t *testing.T) {
	// The naive u64 product would wrap; the widened math must not.
	fee, err := FeeAmount(math.MaxUint64, 10_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fee != math.MaxUint64 {
		t.Fatalf("fee = %d, want full output", fee)
	}
}
