// Package state provides the host environment the router executes against: a
// token-account ledger with per-call exclusive locking and all-or-nothing
// transactions, plus a registry of program handlers standing in for
// cross-program invocation. A route call either commits every balance
// mutation it caused or leaves the ledger untouched.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"

	"dexroute/core/types"
	"dexroute/native/router/adapter"
)

var (
	// ErrAccountNotFound indicates a referenced token account does not exist.
	ErrAccountNotFound = errors.New("state: token account not found")
	// ErrInsufficientFunds indicates a transfer exceeding the source balance.
	ErrInsufficientFunds = errors.New("state: insufficient funds")
	// ErrMintMismatch indicates a transfer between accounts of different mints.
	ErrMintMismatch = errors.New("state: transfer mint mismatch")
	// ErrNotOwner indicates the transfer authority does not own the source.
	ErrNotOwner = errors.New("state: authority does not own source account")
	// ErrBalanceOverflow indicates a credit would overflow the 64-bit balance.
	ErrBalanceOverflow = errors.New("state: balance overflow")
	// ErrUnknownProgram indicates an invocation against an unregistered
	// program identity. Invocations fail closed rather than no-op.
	ErrUnknownProgram = errors.New("state: program not registered")
)

// ProgramHandler executes a venue call against the current transaction. In a
// deployed environment this is the bridge to the real venue program; tests
// register handlers that move balances directly.
type ProgramHandler func(txn *Txn, call adapter.CallDescriptor) error

// Ledger is the in-memory token-account store. All access happens through
// Update, which serialises callers and gives each a transaction with
// copy-on-write isolation.
type Ledger struct {
	mu       sync.Mutex
	accounts map[[20]byte]*types.TokenAccount
	programs map[[20]byte]ProgramHandler
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{
		accounts: make(map[[20]byte]*types.TokenAccount),
		programs: make(map[[20]byte]ProgramHandler),
	}
}

// RegisterProgram binds a handler to a program identity. Re-registering
// replaces the previous handler.
func (l *Ledger) RegisterProgram(id [20]byte, handler ProgramHandler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if handler == nil {
		delete(l.programs, id)
		return
	}
	l.programs[id] = handler
}

// SetAccount installs or replaces a token account outside any transaction.
// Intended for bootstrap and tests.
func (l *Ledger) SetAccount(addr [20]byte, acct *types.TokenAccount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.accounts[addr] = acct.Clone()
}

// Account returns a copy of the stored account.
func (l *Ledger) Account(addr [20]byte) (*types.TokenAccount, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	acct, ok := l.accounts[addr]
	if !ok {
		return nil, false
	}
	return acct.Clone(), true
}

// Update runs fn inside a transaction. The transaction sees a private copy of
// every account it touches; the copies replace the canonical records only if
// fn returns nil. The ledger lock is held for the whole call, which is the
// host's per-resource write-locking: no other route call can interleave on
// the same balances.
func (l *Ledger) Update(fn func(*Txn) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	txn := &Txn{ledger: l, dirty: make(map[[20]byte]*types.TokenAccount)}
	if err := fn(txn); err != nil {
		return err
	}
	for addr, acct := range txn.dirty {
		l.accounts[addr] = acct
	}
	return nil
}

// Txn is one atomic route or governance call's view of the ledger. It
// implements the engine's state interface and the adapter Invoker.
type Txn struct {
	ledger *Ledger
	dirty  map[[20]byte]*types.TokenAccount
}

func (t *Txn) load(addr [20]byte) (*types.TokenAccount, bool) {
	if acct, ok := t.dirty[addr]; ok {
		return acct, true
	}
	acct, ok := t.ledger.accounts[addr]
	if !ok {
		return nil, false
	}
	cp := acct.Clone()
	t.dirty[addr] = cp
	return cp, true
}

// TokenAccount returns a copy of the account as visible inside the
// transaction.
func (t *Txn) TokenAccount(addr [20]byte) (*types.TokenAccount, bool, error) {
	acct, ok := t.load(addr)
	if !ok {
		return nil, false, nil
	}
	return acct.Clone(), true, nil
}

// PutTokenAccount installs or replaces an account inside the transaction.
func (t *Txn) PutTokenAccount(addr [20]byte, acct *types.TokenAccount) error {
	if acct == nil {
		return fmt.Errorf("state: nil token account for %x", addr)
	}
	t.dirty[addr] = acct.Clone()
	return nil
}

// Transfer moves amount between two accounts of the same mint under the given
// authority. The credit side is overflow-checked; a wrap aborts the
// transaction.
func (t *Txn) Transfer(authority, from, to [20]byte, amount uint64) error {
	if amount == 0 {
		return nil
	}
	src, ok := t.load(from)
	if !ok {
		return fmt.Errorf("%w: %x", ErrAccountNotFound, from)
	}
	dst, ok := t.load(to)
	if !ok {
		return fmt.Errorf("%w: %x", ErrAccountNotFound, to)
	}
	if src.Owner != authority {
		return ErrNotOwner
	}
	if src.Mint != dst.Mint {
		return ErrMintMismatch
	}
	if src.Balance < amount {
		return fmt.Errorf("%w: balance %d, transfer %d", ErrInsufficientFunds, src.Balance, amount)
	}
	credited := new(uint256.Int).Add(uint256.NewInt(dst.Balance), uint256.NewInt(amount))
	if !credited.IsUint64() {
		return ErrBalanceOverflow
	}
	src.Balance -= amount
	dst.Balance = credited.Uint64()
	return nil
}

// Invoke dispatches a prepared venue call to the registered program handler.
// Unregistered programs fail closed.
func (t *Txn) Invoke(call adapter.CallDescriptor) error {
	handler, ok := t.ledger.programs[call.Program]
	if !ok {
		return fmt.Errorf("%w: %x", ErrUnknownProgram, call.Program)
	}
	return handler(t, call)
}
