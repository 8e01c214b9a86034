package router

// MaxLegs bounds the number of legs in a single route to keep execution cost
// and call size predictable.
const MaxLegs = 10

// VenueID identifies the external liquidity venue a leg executes against.
// The numeric values are part of the wire contract and must not be reordered.
type VenueID uint8

const (
	VenueLifinityV2 VenueID = iota
	VenueOrcaWhirlpool
	VenueSolarCP
	VenueSolarCLMM
	VenueInvariant
)

// KnownVenues enumerates every venue id the router supports. The dispatcher's
// switch must cover exactly this set; the adapter tests assert it.
func KnownVenues() []VenueID {
	return []VenueID{
		VenueLifinityV2,
		VenueOrcaWhirlpool,
		VenueSolarCP,
		VenueSolarCLMM,
		VenueInvariant,
	}
}

func (v VenueID) String() string {
	switch v {
	case VenueLifinityV2:
		return "lifinity-v2"
	case VenueOrcaWhirlpool:
		return "orca-whirlpool"
	case VenueSolarCP:
		return "solar-cp"
	case VenueSolarCLMM:
		return "solar-clmm"
	case VenueInvariant:
		return "invariant"
	default:
		return "unknown"
	}
}

// Leg is one hop of a multi-hop swap route. Payload is opaque to the engine
// and every adapter: it is produced by a client that knows the venue's
// instruction encoding and forwarded verbatim. ResourceCount declares how many
// entries of the caller's remaining resource pool this leg consumes; the
// adapter must report exactly that number back.
type Leg struct {
	Venue         VenueID  `json:"venue"`
	InAmountHint  uint64   `json:"inAmountHint"`
	MinOutHint    uint64   `json:"minOutHint"`
	ResourceCount uint8    `json:"resourceCount"`
	Payload       []byte   `json:"payload"`
	InMint        [20]byte `json:"inMint"`
	OutMint       [20]byte `json:"outMint"`
}

// Route is an ordered sequence of legs plus the caller's economic bounds.
// UserMaxIn caps the total spent from the source balance; UserMinOut floors
// the net amount (after fee) credited to the destination balance. Both are
// enforced against real balance deltas, never against venue-reported hints.
type Route struct {
	Legs       []Leg  `json:"legs"`
	UserMaxIn  uint64 `json:"userMaxIn"`
	UserMinOut uint64 `json:"userMinOut"`
}

// AdapterResult carries the hint values a venue call returns. Spent and
// Received are untrusted hints used for nothing beyond logging; Consumed is
// checked against the leg's declared resource count to detect adapters that
// silently under- or over-read the pool.
type AdapterResult struct {
	Spent    uint64
	Received uint64
	Consumed int
}

// RouteReceipt is the auditable record emitted after a route commits.
type RouteReceipt struct {
	ID          string   `json:"id"`
	User        [20]byte `json:"user"`
	InMint      [20]byte `json:"inMint"`
	OutMint     [20]byte `json:"outMint"`
	TotalSpent  uint64   `json:"totalSpent"`
	TotalOut    uint64   `json:"totalOut"`
	FeeCharged  uint64   `json:"feeCharged"`
	NetReceived uint64   `json:"netReceived"`
	Legs        uint8    `json:"legs"`
	FeeBps      uint16   `json:"feeBps"`
	ExecutedAt  int64    `json:"executedAt"`
}
