package types

// TokenAccount is a fungible-asset balance held by an owner. It mirrors the
// host environment's token-account records: every balance is bound to exactly
// one mint and one owning authority.
type TokenAccount struct {
	Owner   [20]byte `json:"owner"`
	Mint    [20]byte `json:"mint"`
	Balance uint64   `json:"balance"`
}

// Clone returns a copy safe to mutate inside a ledger transaction.
func (a *TokenAccount) Clone() *TokenAccount {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

// Resource is one entry of the caller-supplied resource pool attached to a
// route call. Owner identifies the program authority controlling the
// underlying state; adapters whitelist it before forwarding the resource to a
// venue.
type Resource struct {
	Address  [20]byte `json:"address"`
	Owner    [20]byte `json:"owner"`
	Signer   bool     `json:"signer"`
	Writable bool     `json:"writable"`
}

// AccountMeta is the venue-native account descriptor produced when an adapter
// re-encodes validated resources for a cross-program call.
type AccountMeta struct {
	Address  [20]byte
	Signer   bool
	Writable bool
}
