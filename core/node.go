package core

import (
	"log/slog"
	"time"

	"dexroute/core/events"
	"dexroute/core/state"
	"dexroute/core/types"
	"dexroute/native/governance"
	"dexroute/native/router"
	"dexroute/native/router/adapter"
	"dexroute/observability"
	"dexroute/storage"
)

// Node wires the ledger, durable store and engines behind one facade: one
// exported method per externally invocable operation. The RPC layer talks only
// to the node.
type Node struct {
	ledger  *state.Ledger
	store   *storage.Store
	gov     *governance.Engine
	emitter events.Emitter
	logger  *slog.Logger
	metrics *observability.RouterMetrics
}

// NewNode constructs a node over the supplied ledger and store.
func NewNode(ledger *state.Ledger, store *storage.Store, logger *slog.Logger) *Node {
	if logger == nil {
		logger = slog.Default()
	}
	gov := governance.NewEngine()
	gov.SetStore(store)
	return &Node{
		ledger:  ledger,
		store:   store,
		gov:     gov,
		emitter: events.NoopEmitter{},
		logger:  logger,
		metrics: observability.Router(),
	}
}

// SetEmitter configures the emitter shared by the node's engines.
func (n *Node) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		emitter = events.NoopEmitter{}
	}
	n.emitter = emitter
	n.gov.SetEmitter(emitter)
}

// Ledger exposes the underlying ledger for bootstrap wiring.
func (n *Node) Ledger() *state.Ledger { return n.ledger }

// ExecuteRoute runs one route call atomically: every ledger mutation commits
// together with the fee settlement, or none do. The committed receipt is
// persisted to the audit trail.
func (n *Node) ExecuteRoute(route router.Route, pool []types.Resource, caller, source, destination, feeAccount [20]byte) (*router.RouteReceipt, error) {
	start := time.Now()
	var receipt *router.RouteReceipt
	err := n.ledger.Update(func(txn *state.Txn) error {
		engine := router.NewEngine()
		engine.SetState(txn)
		engine.SetDispatcher(adapter.NewDispatcher(txn))
		engine.SetGovernance(n.store)
		engine.SetEmitter(n.emitter)
		var execErr error
		receipt, execErr = engine.Execute(route, pool, caller, source, destination, feeAccount)
		return execErr
	})
	outcome := router.Kind(err)
	if err != nil {
		n.metrics.ObserveRoute(outcome, len(route.Legs), 0, time.Since(start))
		n.logger.Warn("route aborted", "outcome", outcome, "legs", len(route.Legs), "error", err)
		return nil, err
	}
	if storeErr := n.store.PutReceipt(receipt); storeErr != nil {
		// The route is committed; a failed audit write is logged, not fatal.
		n.logger.Error("persist receipt", "receipt", receipt.ID, "error", storeErr)
	}
	n.metrics.ObserveRoute(outcome, int(receipt.Legs), receipt.FeeCharged, time.Since(start))
	n.logger.Info("route executed",
		"receipt", receipt.ID,
		"legs", receipt.Legs,
		"spent", receipt.TotalSpent,
		"out", receipt.TotalOut,
		"fee", receipt.FeeCharged,
	)
	return receipt, nil
}

// TokenAccount returns a copy of the ledger record, if present.
func (n *Node) TokenAccount(addr [20]byte) (*types.TokenAccount, bool) {
	return n.ledger.Account(addr)
}

// Receipt loads one receipt from the audit trail.
func (n *Node) Receipt(id string) (*router.RouteReceipt, error) {
	return n.store.Receipt(id)
}

// Receipts lists up to limit receipts from the audit trail.
func (n *Node) Receipts(limit int) ([]*router.RouteReceipt, error) {
	return n.store.Receipts(limit)
}

// --- Governance operations ---

// GovernanceConfig returns the governance record, if initialised.
func (n *Node) GovernanceConfig() (*governance.Config, bool, error) {
	return n.gov.Config()
}

// GovernanceInit creates the governance record; the caller becomes admin.
func (n *Node) GovernanceInit(caller [20]byte, feeBps uint16, feeDestination [20]byte) (*governance.Config, error) {
	return n.gov.Init(caller, feeBps, feeDestination)
}

// GovernanceSetFee updates the protocol fee rate.
func (n *Node) GovernanceSetFee(caller [20]byte, feeBps uint16) (*governance.Config, error) {
	return n.gov.SetFee(caller, feeBps)
}

// GovernanceSetFeeDestination updates the fee collection identity.
func (n *Node) GovernanceSetFeeDestination(caller, destination [20]byte) (*governance.Config, error) {
	return n.gov.SetFeeDestination(caller, destination)
}

// GovernancePause sets the pause switch.
func (n *Node) GovernancePause(caller [20]byte) (*governance.Config, error) {
	return n.gov.Pause(caller)
}

// GovernanceUnpause clears the pause switch.
func (n *Node) GovernanceUnpause(caller [20]byte) (*governance.Config, error) {
	return n.gov.Unpause(caller)
}
