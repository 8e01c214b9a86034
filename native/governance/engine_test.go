package governance

import (
	"errors"
	"testing"

	"dexroute/core/events"
)

type memoryStore struct {
	cfg *Config
}

func (m *memoryStore) GovernanceConfig() (*Config, bool, error) {
	if m.cfg == nil {
		return nil, false, nil
	}
	return m.cfg.Clone(), true, nil
}

func (m *memoryStore) PutGovernanceConfig(cfg *Config) error {
	m.cfg = cfg.Clone()
	return nil
}

func addr(b byte) [20]byte {
	var out [20]byte
	out[0] = b
	return out
}

func newTestEngine(store *memoryStore) *Engine {
	engine := NewEngine()
	engine.SetStore(store)
	engine.SetNowFunc(func() int64 { return 1_700_000_000 })
	return engine
}

func TestEngineEmitsEvents(t *testing.T) {
	store := &memoryStore{}
	engine := newTestEngine(store)
	admin := addr(1)
	vault := addr(2)

	var emitted []events.Event
	engine.SetEmitter(events.EmitterFunc(func(evt events.Event) {
		emitted = append(emitted, evt)
	}))

	if _, err := engine.Init(admin, 50, vault); err != nil {
		t.Fatalf("init: %v", err)
	}
	if len(emitted) != 1 {
		t.Fatalf("emitted %d events after init, want 1", len(emitted))
	}
	updated, ok := emitted[0].(events.GovernanceUpdated)
	if !ok {
		t.Fatalf("emitted %T, want GovernanceUpdated", emitted[0])
	}
	if updated.Admin != admin || updated.FeeBps != 50 || updated.FeeDestination != vault {
		t.Fatalf("event = %+v", updated)
	}

	if _, err := engine.Pause(admin); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if len(emitted) != 2 {
		t.Fatalf("emitted %d events after pause, want 2", len(emitted))
	}
	paused, ok := emitted[1].(events.GovernancePaused)
	if !ok {
		t.Fatalf("emitted %T, want GovernancePaused", emitted[1])
	}
	if !paused.Paused || paused.Admin != admin {
		t.Fatalf("event = %+v", paused)
	}

	// The idempotent no-op path emits nothing.
	if _, err := engine.Pause(admin); err != nil {
		t.Fatalf("pause again: %v", err)
	}
	if len(emitted) != 2 {
		t.Fatalf("no-op pause emitted an event: %d", len(emitted))
	}
}

func TestInitOnce(t *testing.T) {
	store := &memoryStore{}
	engine := newTestEngine(store)
	admin := addr(1)
	vault := addr(2)

	cfg, err := engine.Init(admin, 50, vault)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if cfg.Admin != admin || cfg.FeeBps != 50 || cfg.FeeDestination != vault || cfg.Paused {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	if _, err := engine.Init(admin, 10, vault); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("err = %v, want ErrAlreadyInitialized", err)
	}
}

func TestInitValidation(t *testing.T) {
	engine := newTestEngine(&memoryStore{})
	if _, err := engine.Init(addr(1), 10_001, addr(2)); !errors.Is(err, ErrInvalidFeeBps) {
		t.Fatalf("err = %v, want ErrInvalidFeeBps", err)
	}
	if _, err := engine.Init(addr(1), 50, [20]byte{}); !errors.Is(err, ErrInvalidFeeDestination) {
		t.Fatalf("err = %v, want ErrInvalidFeeDestination", err)
	}
}

func TestAdminGate(t *testing.T) {
	store := &memoryStore{}
	engine := newTestEngine(store)
	admin := addr(1)
	if _, err := engine.Init(admin, 50, addr(2)); err != nil {
		t.Fatalf("init: %v", err)
	}

	intruder := addr(9)
	if _, err := engine.SetFee(intruder, 10); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("set fee err = %v, want ErrUnauthorized", err)
	}
	if _, err := engine.SetFeeDestination(intruder, addr(3)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("set destination err = %v, want ErrUnauthorized", err)
	}
	if _, err := engine.Pause(intruder); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("pause err = %v, want ErrUnauthorized", err)
	}
	if store.cfg.FeeBps != 50 || store.cfg.FeeDestination != addr(2) || store.cfg.Paused {
		t.Fatalf("unauthorized call mutated state: %+v", store.cfg)
	}
}

func TestSetFeeBounds(t *testing.T) {
	engine := newTestEngine(&memoryStore{})
	admin := addr(1)
	if _, err := engine.Init(admin, 50, addr(2)); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := engine.SetFee(admin, 10_001); !errors.Is(err, ErrInvalidFeeBps) {
		t.Fatalf("err = %v, want ErrInvalidFeeBps", err)
	}
	cfg, err := engine.SetFee(admin, 10_000)
	if err != nil {
		t.Fatalf("set fee: %v", err)
	}
	if cfg.FeeBps != 10_000 {
		t.Fatalf("fee = %d, want 10000", cfg.FeeBps)
	}
}

func TestPauseIdempotent(t *testing.T) {
	store := &memoryStore{}
	engine := newTestEngine(store)
	admin := addr(1)
	if _, err := engine.Init(admin, 50, addr(2)); err != nil {
		t.Fatalf("init: %v", err)
	}

	if _, err := engine.Unpause(admin); err != nil {
		t.Fatalf("unpause while running: %v", err)
	}

	cfg, err := engine.Pause(admin)
	if err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !cfg.Paused {
		t.Fatalf("expected paused")
	}

	again, err := engine.Pause(admin)
	if err != nil {
		t.Fatalf("pause again: %v", err)
	}
	if !again.Paused || again.FeeBps != 50 || again.FeeDestination != addr(2) {
		t.Fatalf("idempotent pause changed other fields: %+v", again)
	}

	cfg, err = engine.Unpause(admin)
	if err != nil {
		t.Fatalf("unpause: %v", err)
	}
	if cfg.Paused {
		t.Fatalf("expected unpaused")
	}
}

func TestOperationsRequireInit(t *testing.T) {
	engine := newTestEngine(&memoryStore{})
	if _, err := engine.SetFee(addr(1), 10); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("err = %v, want ErrNotInitialized", err)
	}
}
