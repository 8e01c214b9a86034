package events

import (
	"strconv"

	"dexroute/core/types"
	"dexroute/crypto"
)

const (
	// TypeGovernanceUpdated is emitted when the admin changes the fee rate or
	// fee destination.
	TypeGovernanceUpdated = "governance.updated"
	// TypeGovernancePaused is emitted when the pause flag flips.
	TypeGovernancePaused = "governance.paused"
)

// GovernanceUpdated reports the governance record after a successful admin
// mutation.
type GovernanceUpdated struct {
	Admin          [20]byte
	FeeBps         uint16
	FeeDestination [20]byte
}

func (GovernanceUpdated) EventType() string { return TypeGovernanceUpdated }

func (e GovernanceUpdated) Event() *types.Event {
	return &types.Event{
		Type: TypeGovernanceUpdated,
		Attributes: map[string]string{
			"admin":          crypto.NewAddress(crypto.DexPrefix, e.Admin[:]).String(),
			"feeBps":         strconv.FormatUint(uint64(e.FeeBps), 10),
			"feeDestination": crypto.NewAddress(crypto.DexPrefix, e.FeeDestination[:]).String(),
		},
	}
}

// GovernancePaused reports a pause flag transition.
type GovernancePaused struct {
	Admin  [20]byte
	Paused bool
}

func (GovernancePaused) EventType() string { return TypeGovernancePaused }

func (e GovernancePaused) Event() *types.Event {
	return &types.Event{
		Type: TypeGovernancePaused,
		Attributes: map[string]string{
			"admin":  crypto.NewAddress(crypto.DexPrefix, e.Admin[:]).String(),
			"paused": strconv.FormatBool(e.Paused),
		},
	}
}
