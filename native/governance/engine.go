package governance

import (
	"errors"
	"time"

	"dexroute/core/events"
)

var (
	// ErrAlreadyInitialized indicates init was called against an existing
	// governance record.
	ErrAlreadyInitialized = errors.New("governance: config already initialised")
	// ErrNotInitialized indicates an admin operation ran before init.
	ErrNotInitialized = errors.New("governance: config not initialised")
	// ErrUnauthorized indicates the caller is not the configured admin.
	ErrUnauthorized = errors.New("governance: admin authorisation required")
	// ErrInvalidFeeBps indicates a fee rate above MaxFeeBps.
	ErrInvalidFeeBps = errors.New("governance: fee bps out of range")
	// ErrInvalidFeeDestination indicates an unset fee destination identity.
	ErrInvalidFeeDestination = errors.New("governance: fee destination required")

	errStoreNotConfigured = errors.New("governance: store not configured")
)

type configStore interface {
	GovernanceConfig() (*Config, bool, error)
	PutGovernanceConfig(*Config) error
}

// Engine drives the governance state machine: Uninitialized -> Initialized
// (unpaused) <-> Paused. All mutations require the configured admin as caller;
// the transport layer is responsible for authenticating that identity.
type Engine struct {
	store   configStore
	emitter events.Emitter
	nowFn   func() int64
}

// NewEngine creates a governance engine with a no-op emitter. Callers can
// override the emitter via SetEmitter.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetStore configures the durable backend holding the governance record.
func (e *Engine) SetStore(store configStore) { e.store = store }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used to stamp mutations. Nil restores
// the default Unix clock.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

// Config returns the current governance record, if initialised.
func (e *Engine) Config() (*Config, bool, error) {
	if e == nil || e.store == nil {
		return nil, false, errStoreNotConfigured
	}
	cfg, ok, err := e.store.GovernanceConfig()
	if err != nil || !ok {
		return nil, ok, err
	}
	return cfg.Clone(), true, nil
}

// Init creates the governance record exactly once. The caller becomes admin.
func (e *Engine) Init(caller [20]byte, feeBps uint16, feeDestination [20]byte) (*Config, error) {
	if e == nil || e.store == nil {
		return nil, errStoreNotConfigured
	}
	if _, ok, err := e.store.GovernanceConfig(); err != nil {
		return nil, err
	} else if ok {
		return nil, ErrAlreadyInitialized
	}
	if feeBps > MaxFeeBps {
		return nil, ErrInvalidFeeBps
	}
	if feeDestination == ([20]byte{}) {
		return nil, ErrInvalidFeeDestination
	}
	cfg := &Config{
		Admin:          caller,
		FeeBps:         feeBps,
		FeeDestination: feeDestination,
		Paused:         false,
		UpdatedAt:      e.nowFn(),
	}
	if err := e.store.PutGovernanceConfig(cfg); err != nil {
		return nil, err
	}
	e.emit(events.GovernanceUpdated{Admin: cfg.Admin, FeeBps: cfg.FeeBps, FeeDestination: cfg.FeeDestination})
	return cfg.Clone(), nil
}

func (e *Engine) adminConfig(caller [20]byte) (*Config, error) {
	if e == nil || e.store == nil {
		return nil, errStoreNotConfigured
	}
	cfg, ok, err := e.store.GovernanceConfig()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	if cfg.Admin != caller {
		return nil, ErrUnauthorized
	}
	return cfg, nil
}

// SetFee updates the protocol fee rate.
func (e *Engine) SetFee(caller [20]byte, feeBps uint16) (*Config, error) {
	cfg, err := e.adminConfig(caller)
	if err != nil {
		return nil, err
	}
	if feeBps > MaxFeeBps {
		return nil, ErrInvalidFeeBps
	}
	cfg.FeeBps = feeBps
	cfg.UpdatedAt = e.nowFn()
	if err := e.store.PutGovernanceConfig(cfg); err != nil {
		return nil, err
	}
	e.emit(events.GovernanceUpdated{Admin: cfg.Admin, FeeBps: cfg.FeeBps, FeeDestination: cfg.FeeDestination})
	return cfg.Clone(), nil
}

// SetFeeDestination updates the fee collection identity.
func (e *Engine) SetFeeDestination(caller [20]byte, destination [20]byte) (*Config, error) {
	cfg, err := e.adminConfig(caller)
	if err != nil {
		return nil, err
	}
	if destination == ([20]byte{}) {
		return nil, ErrInvalidFeeDestination
	}
	cfg.FeeDestination = destination
	cfg.UpdatedAt = e.nowFn()
	if err := e.store.PutGovernanceConfig(cfg); err != nil {
		return nil, err
	}
	e.emit(events.GovernanceUpdated{Admin: cfg.Admin, FeeBps: cfg.FeeBps, FeeDestination: cfg.FeeDestination})
	return cfg.Clone(), nil
}

// Pause flips the pause switch on. Pausing an already paused protocol is a
// permitted no-op.
func (e *Engine) Pause(caller [20]byte) (*Config, error) {
	return e.setPaused(caller, true)
}

// Unpause flips the pause switch off. Unpausing an already running protocol is
// a permitted no-op.
func (e *Engine) Unpause(caller [20]byte) (*Config, error) {
	return e.setPaused(caller, false)
}

func (e *Engine) setPaused(caller [20]byte, paused bool) (*Config, error) {
	cfg, err := e.adminConfig(caller)
	if err != nil {
		return nil, err
	}
	if cfg.Paused == paused {
		return cfg.Clone(), nil
	}
	cfg.Paused = paused
	cfg.UpdatedAt = e.nowFn()
	if err := e.store.PutGovernanceConfig(cfg); err != nil {
		return nil, err
	}
	e.emit(events.GovernancePaused{Admin: cfg.Admin, Paused: paused})
	return cfg.Clone(), nil
}
