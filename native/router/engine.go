package router

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"dexroute/core/events"
	"dexroute/core/types"
	"dexroute/native/governance"
)

type engineState interface {
	TokenAccount(addr [20]byte) (*types.TokenAccount, bool, error)
	Transfer(authority, from, to [20]byte, amount uint64) error
}

// Dispatcher routes a leg to its venue adapter. It is the engine's only point
// of polymorphism; implementations live in the adapter package.
type Dispatcher interface {
	Dispatch(leg Leg, resources []types.Resource) (AdapterResult, error)
}

// GovernanceView exposes the read access the engine needs on governance state.
type GovernanceView interface {
	GovernanceConfig() (*governance.Config, bool, error)
}

// Engine executes swap routes leg by leg and enforces the economic safety
// invariants from re-observed balances. Venue-reported amounts are used only
// to advance the resource cursor; all financial accounting derives from the
// caller's real balance deltas.
type Engine struct {
	state      engineState
	dispatcher Dispatcher
	governance GovernanceView
	emitter    events.Emitter
	nowFn      func() int64
	idFn       func() string
}

// NewEngine creates a route engine with a no-op emitter. State, dispatcher and
// governance must be wired before Execute is called.
func NewEngine() *Engine {
	return &Engine{
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
		idFn:    uuid.NewString,
	}
}

// SetState configures the balance backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetDispatcher configures the venue dispatcher.
func (e *Engine) SetDispatcher(d Dispatcher) { e.dispatcher = d }

// SetGovernance configures the governance reader.
func (e *Engine) SetGovernance(view GovernanceView) { e.governance = view }

// SetEmitter configures the event emitter used by the engine. Passing nil
// resets the emitter to a no-op implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source used to stamp receipts. Nil restores
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

func (e *Engine) account(addr [20]byte) (*types.TokenAccount, error) {
	acct, ok, err := e.state.TokenAccount(addr)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("router: token account %x not found", addr)
	}
	return acct, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, fmt.Errorf("%w: balance delta underflow", ErrOverflow)
	}
	return a - b, nil
}

// Execute runs the route atomically against the configured state. The caller
// must invoke it inside a state transaction: any returned error leaves every
// mutation discarded by the transaction rollback.
//
// source, destination and feeAccount are the fixed accompanying balances of
// the call; pool is the flat resource list consumed prefix-by-prefix by the
// legs.
func (e *Engine) Execute(route Route, pool []types.Resource, caller, source, destination, feeAccount [20]byte) (*RouteReceipt, error) {
	if e == nil || e.state == nil {
		return nil, errStateNotConfigured
	}
	if e.dispatcher == nil {
		return nil, errDispatcherNotConfigured
	}
	if e.governance == nil {
		return nil, errGovernanceNotConfigured
	}

	cfg, ok, err := e.governance.GovernanceConfig()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errGovernanceUninitialized
	}
	if cfg.Paused {
		return nil, ErrPaused
	}

	src, err := e.account(source)
	if err != nil {
		return nil, err
	}
	dest, err := e.account(destination)
	if err != nil {
		return nil, err
	}
	if src.Owner != caller {
		return nil, fmt.Errorf("%w: source", ErrUnauthorized)
	}
	if dest.Owner != caller {
		return nil, fmt.Errorf("%w: destination", ErrUnauthorized)
	}

	if len(route.Legs) == 0 {
		return nil, ErrEmptyRoute
	}
	if len(route.Legs) > MaxLegs {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyLegs, len(route.Legs), MaxLegs)
	}
	if route.Legs[0].InMint != src.Mint {
		return nil, fmt.Errorf("%w: first leg input does not match source mint", ErrContinuityViolation)
	}

	preSource := src.Balance
	preDestination := dest.Balance

	remaining := pool
	var prevOutMint [20]byte
	for i, leg := range route.Legs {
		if i > 0 && leg.InMint != prevOutMint {
			return nil, fmt.Errorf("%w: leg %d input does not chain", ErrContinuityViolation, i)
		}
		result, err := e.dispatcher.Dispatch(leg, remaining)
		if err != nil {
			return nil, err
		}
		// The spent/received hints are discarded here: only the consumption
		// count feeds back into engine state.
		if result.Consumed != int(leg.ResourceCount) {
			return nil, fmt.Errorf("%w: leg %d declared %d, adapter consumed %d", ErrConsumptionMismatch, i, leg.ResourceCount, result.Consumed)
		}
		if result.Consumed > len(remaining) {
			return nil, fmt.Errorf("%w: leg %d consumed past pool end", ErrConsumptionMismatch, i)
		}
		remaining = remaining[result.Consumed:]
		prevOutMint = leg.OutMint
	}

	src, err = e.account(source)
	if err != nil {
		return nil, err
	}
	dest, err = e.account(destination)
	if err != nil {
		return nil, err
	}
	deltaSpent, err := checkedSub(preSource, src.Balance)
	if err != nil {
		return nil, err
	}
	if deltaSpent > route.UserMaxIn {
		return nil, fmt.Errorf("%w: spent %d, cap %d", ErrSpendExceeded, deltaSpent, route.UserMaxIn)
	}
	deltaOut, err := checkedSub(dest.Balance, preDestination)
	if err != nil {
		return nil, err
	}

	feeCharged, err := FeeAmount(deltaOut, cfg.FeeBps)
	if err != nil {
		return nil, err
	}
	userReceive, err := checkedSub(deltaOut, feeCharged)
	if err != nil {
		return nil, err
	}
	if userReceive < route.UserMinOut {
		return nil, fmt.Errorf("%w: net %d, floor %d", ErrSlippageExceeded, userReceive, route.UserMinOut)
	}

	// Dual check: the last leg's declared output and the balance that actually
	// received funds must agree on the asset.
	if prevOutMint != dest.Mint {
		return nil, fmt.Errorf("%w: final leg output does not match destination mint", ErrContinuityViolation)
	}

	fee, err := e.account(feeAccount)
	if err != nil {
		return nil, err
	}
	if fee.Mint != dest.Mint {
		return nil, fmt.Errorf("%w: asset", ErrFeeDestinationMismatch)
	}
	if feeAccount != cfg.FeeDestination {
		return nil, fmt.Errorf("%w: identity", ErrFeeDestinationMismatch)
	}

	if feeCharged > 0 {
		if err := e.state.Transfer(caller, destination, feeAccount, feeCharged); err != nil {
			return nil, err
		}
	}

	receipt := &RouteReceipt{
		ID:          e.idFn(),
		User:        caller,
		InMint:      src.Mint,
		OutMint:     dest.Mint,
		TotalSpent:  deltaSpent,
		TotalOut:    deltaOut,
		FeeCharged:  feeCharged,
		NetReceived: userReceive,
		Legs:        uint8(len(route.Legs)),
		FeeBps:      cfg.FeeBps,
		ExecutedAt:  e.nowFn(),
	}
	e.emit(events.RouteExecuted{
		ReceiptID:  receipt.ID,
		User:       receipt.User,
		InMint:     receipt.InMint,
		OutMint:    receipt.OutMint,
		TotalSpent: receipt.TotalSpent,
		TotalOut:   receipt.TotalOut,
		FeeCharged: receipt.FeeCharged,
		Legs:       receipt.Legs,
		FeeBps:     receipt.FeeBps,
	})
	return receipt, nil
}
