package governance

// MaxFeeBps bounds the protocol fee rate at 100%.
const MaxFeeBps = 10_000

// Config is the durable governance record: admin identity, protocol fee rate,
// fee collection destination, and the global pause switch. It is created once
// and mutated only by admin-authorised operations.
type Config struct {
	Admin          [20]byte `json:"admin"`
	FeeBps         uint16   `json:"feeBps"`
	FeeDestination [20]byte `json:"feeDestination"`
	Paused         bool     `json:"paused"`
	UpdatedAt      int64    `json:"updatedAt"`
}

// Clone returns a copy safe for callers to retain.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}
