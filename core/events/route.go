package events

import (
	"strconv"

	"dexroute/core/types"
	"dexroute/crypto"
)

const (
	// TypeRouteExecuted is emitted after a route commits, fee settled.
	TypeRouteExecuted = "route.executed"
)

// RouteExecuted captures the audit trail for a committed route: who swapped,
// between which assets, and the real amounts observed from balance deltas.
type RouteExecuted struct {
	ReceiptID  string
	User       [20]byte
	InMint     [20]byte
	OutMint    [20]byte
	TotalSpent uint64
	TotalOut   uint64
	FeeCharged uint64
	Legs       uint8
	FeeBps     uint16
}

func (RouteExecuted) EventType() string { return TypeRouteExecuted }

func (e RouteExecuted) Event() *types.Event {
	return &types.Event{
		Type: TypeRouteExecuted,
		Attributes: map[string]string{
			"receiptId":  e.ReceiptID,
			"user":       crypto.NewAddress(crypto.DexPrefix, e.User[:]).String(),
			"inMint":     crypto.NewAddress(crypto.DexPrefix, e.InMint[:]).String(),
			"outMint":    crypto.NewAddress(crypto.DexPrefix, e.OutMint[:]).String(),
			"totalSpent": strconv.FormatUint(e.TotalSpent, 10),
			"totalOut":   strconv.FormatUint(e.TotalOut, 10),
			"feeCharged": strconv.FormatUint(e.FeeCharged, 10),
			"legs":       strconv.FormatUint(uint64(e.Legs), 10),
			"feeBps":     strconv.FormatUint(uint64(e.FeeBps), 10),
		},
	}
}
