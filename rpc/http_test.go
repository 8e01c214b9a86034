package rpc

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"dexroute/core"
	"dexroute/core/state"
	"dexroute/core/types"
	"dexroute/crypto"
	"dexroute/native/router/adapter"
	"dexroute/storage"
)

func newTestEnv(t *testing.T) (*httptest.Server, *core.Node) {
	t.Helper()
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "routerd.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	node := core.NewNode(state.NewLedger(), store, slog.Default())
	server := NewServer(node, slog.Default(), ServerConfig{
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
		AuthWindow:         5 * time.Minute,
	})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, node
}

func newKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key
}

func keyAddr(key *crypto.PrivateKey) [20]byte {
	return key.PubKey().Address().Array()
}

// signEnvelope builds the signed request body for a state-changing method.
func signEnvelope(t *testing.T, key *crypto.PrivateKey, method string, payload any) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	timestamp := time.Now().Unix()
	sig, err := key.Sign(SigningDigest(method, timestamp, raw))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	body, err := json.Marshal(signedRequest{
		Payload:   raw,
		Timestamp: timestamp,
		Signature: hex.EncodeToString(sig),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return body
}

func postJSON(t *testing.T, url string, body []byte) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, raw
}

func getJSON(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, raw
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestEnv(t)
	resp, body := getJSON(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK || string(body) != "ok" {
		t.Fatalf("healthz = %d %q", resp.StatusCode, body)
	}
}

func TestGovernanceInitOverHTTP(t *testing.T) {
	ts, _ := newTestEnv(t)
	admin := newKey(t)
	feeDest := renderAddress([20]byte{0x42})

	body := signEnvelope(t, admin, "governance.init", governanceInitRequest{FeeBps: 50, FeeDestination: feeDest})
	resp, raw := postJSON(t, ts.URL+"/v1/governance/init", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("init = %d: %s", resp.StatusCode, raw)
	}
	var created governanceResult
	if err := json.Unmarshal(raw, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Admin != renderAddress(keyAddr(admin)) || created.FeeBps != 50 || created.FeeDestination != feeDest {
		t.Fatalf("created = %+v", created)
	}

	resp, raw = getJSON(t, ts.URL+"/v1/governance")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get governance = %d: %s", resp.StatusCode, raw)
	}

	// A second init, even admin-signed, conflicts.
	body = signEnvelope(t, admin, "governance.init", governanceInitRequest{FeeBps: 10, FeeDestination: feeDest})
	resp, _ = postJSON(t, ts.URL+"/v1/governance/init", body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("re-init = %d, want 409", resp.StatusCode)
	}
}

func TestGovernanceUninitializedIs404(t *testing.T) {
	ts, _ := newTestEnv(t)
	resp, _ := getJSON(t, ts.URL+"/v1/governance")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("get governance = %d, want 404", resp.StatusCode)
	}
}

func TestGovernanceAdminGateOverHTTP(t *testing.T) {
	ts, node := newTestEnv(t)
	admin := newKey(t)
	intruder := newKey(t)
	if _, err := node.GovernanceInit(keyAddr(admin), 50, [20]byte{0x42}); err != nil {
		t.Fatalf("init: %v", err)
	}

	body := signEnvelope(t, intruder, "governance.setFee", governanceFeeRequest{FeeBps: 1})
	resp, _ := postJSON(t, ts.URL+"/v1/governance/fee", body)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("intruder setFee = %d, want 403", resp.StatusCode)
	}

	body = signEnvelope(t, admin, "governance.setFee", governanceFeeRequest{FeeBps: 75})
	resp, raw := postJSON(t, ts.URL+"/v1/governance/fee", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin setFee = %d: %s", resp.StatusCode, raw)
	}
}

func TestSignatureValidation(t *testing.T) {
	ts, node := newTestEnv(t)
	admin := newKey(t)
	if _, err := node.GovernanceInit(keyAddr(admin), 50, [20]byte{0x42}); err != nil {
		t.Fatalf("init: %v", err)
	}

	t.Run("missing signature", func(t *testing.T) {
		body, _ := json.Marshal(signedRequest{Payload: []byte(`{}`), Timestamp: time.Now().Unix()})
		resp, _ := postJSON(t, ts.URL+"/v1/governance/pause", body)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("malformed signature", func(t *testing.T) {
		body, _ := json.Marshal(signedRequest{Payload: []byte(`{}`), Timestamp: time.Now().Unix(), Signature: "0xzz"})
		resp, _ := postJSON(t, ts.URL+"/v1/governance/pause", body)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("stale timestamp", func(t *testing.T) {
		raw := []byte(`{}`)
		stale := time.Now().Add(-time.Hour).Unix()
		sig, err := admin.Sign(SigningDigest("governance.pause", stale, raw))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		body, _ := json.Marshal(signedRequest{Payload: raw, Timestamp: stale, Signature: hex.EncodeToString(sig)})
		resp, _ := postJSON(t, ts.URL+"/v1/governance/pause", body)
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
	})

	t.Run("method binding", func(t *testing.T) {
		// A pause envelope signed for a different method recovers a different
		// identity, which then fails the admin gate.
		body := signEnvelope(t, admin, "governance.unpause", struct{}{})
		resp, _ := postJSON(t, ts.URL+"/v1/governance/pause", body)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", resp.StatusCode)
		}
	})
}

func routeTestEnv(t *testing.T) (*httptest.Server, *core.Node, *crypto.PrivateKey, [20]byte, [20]byte, [20]byte) {
	t.Helper()
	ts, node := newTestEnv(t)
	user := newKey(t)
	admin := newKey(t)

	var (
		mintX  = [20]byte{0xa0}
		mintZ  = [20]byte{0xa2}
		source = [20]byte{0x10}
		dest   = [20]byte{0x11}
		fee    = [20]byte{0x12}
	)
	ledger := node.Ledger()
	ledger.SetAccount(source, &types.TokenAccount{Owner: keyAddr(user), Mint: mintX, Balance: 1000})
	ledger.SetAccount(dest, &types.TokenAccount{Owner: keyAddr(user), Mint: mintZ, Balance: 0})
	ledger.SetAccount(fee, &types.TokenAccount{Owner: keyAddr(admin), Mint: mintZ, Balance: 0})
	ledger.RegisterProgram(adapter.OrcaProgramID, func(txn *state.Txn, call adapter.CallDescriptor) error {
		src, _, err := txn.TokenAccount(source)
		if err != nil {
			return err
		}
		src.Balance -= 800
		if err := txn.PutTokenAccount(source, src); err != nil {
			return err
		}
		dst, _, err := txn.TokenAccount(dest)
		if err != nil {
			return err
		}
		dst.Balance += 950
		return txn.PutTokenAccount(dest, dst)
	})
	if _, err := node.GovernanceInit(keyAddr(admin), 50, fee); err != nil {
		t.Fatalf("init: %v", err)
	}
	return ts, node, user, source, dest, fee
}

func swapRequest(source, dest, fee [20]byte) routeRequest {
	return routeRequest{
		Legs: []legRequest{{
			Venue:         1, // orca whirlpool
			ResourceCount: 1,
			InMint:        renderAddress([20]byte{0xa0}),
			OutMint:       renderAddress([20]byte{0xa2}),
		}},
		UserMaxIn:      1000,
		UserMinOut:     900,
		Source:         renderAddress(source),
		Destination:    renderAddress(dest),
		FeeDestination: renderAddress(fee),
		Resources: []resourceRequest{{
			Address: renderAddress([20]byte{0x20}),
			Owner:   renderAddress(adapter.TokenProgramID),
		}},
	}
}

func TestExecuteRouteOverHTTP(t *testing.T) {
	ts, _, user, source, dest, fee := routeTestEnv(t)

	body := signEnvelope(t, user, "route.execute", swapRequest(source, dest, fee))
	resp, raw := postJSON(t, ts.URL+"/v1/routes", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("routes = %d: %s", resp.StatusCode, raw)
	}
	var receipt receiptResult
	if err := json.Unmarshal(raw, &receipt); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if receipt.TotalSpent != 800 || receipt.TotalOut != 950 || receipt.FeeCharged != 4 || receipt.NetReceived != 946 {
		t.Fatalf("receipt = %+v", receipt)
	}
	if receipt.User != renderAddress(keyAddr(user)) {
		t.Fatalf("receipt user = %s", receipt.User)
	}

	resp, raw = getJSON(t, fmt.Sprintf("%s/v1/receipts/%s", ts.URL, receipt.ID))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("receipt lookup = %d: %s", resp.StatusCode, raw)
	}

	resp, raw = getJSON(t, ts.URL+"/v1/accounts/"+renderAddress(dest))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("account = %d: %s", resp.StatusCode, raw)
	}
	var acct accountResult
	if err := json.Unmarshal(raw, &acct); err != nil {
		t.Fatalf("decode account: %v", err)
	}
	if acct.Balance != 946 {
		t.Fatalf("destination balance = %d, want 946", acct.Balance)
	}
}

func TestExecuteRouteWrongSignerIsForbidden(t *testing.T) {
	ts, _, _, source, dest, fee := routeTestEnv(t)
	stranger := newKey(t)

	body := signEnvelope(t, stranger, "route.execute", swapRequest(source, dest, fee))
	resp, _ := postJSON(t, ts.URL+"/v1/routes", body)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("routes = %d, want 403", resp.StatusCode)
	}
}

func TestExecuteRoutePausedIs503(t *testing.T) {
	ts, node, user, source, dest, fee := routeTestEnv(t)
	cfg, _, err := node.GovernanceConfig()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if _, err := node.GovernancePause(cfg.Admin); err != nil {
		t.Fatalf("pause: %v", err)
	}

	body := signEnvelope(t, user, "route.execute", swapRequest(source, dest, fee))
	resp, _ := postJSON(t, ts.URL+"/v1/routes", body)
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("routes = %d, want 503", resp.StatusCode)
	}
}

func TestListReceipts(t *testing.T) {
	ts, _, user, source, dest, fee := routeTestEnv(t)

	resp, raw := getJSON(t, ts.URL+"/v1/receipts")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list = %d: %s", resp.StatusCode, raw)
	}
	var listing struct {
		Receipts []receiptResult `json:"receipts"`
	}
	if err := json.Unmarshal(raw, &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Receipts) != 0 {
		t.Fatalf("receipts before any route = %d", len(listing.Receipts))
	}

	body := signEnvelope(t, user, "route.execute", swapRequest(source, dest, fee))
	if resp, raw := postJSON(t, ts.URL+"/v1/routes", body); resp.StatusCode != http.StatusOK {
		t.Fatalf("routes = %d: %s", resp.StatusCode, raw)
	}

	resp, raw = getJSON(t, ts.URL+"/v1/receipts")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list = %d: %s", resp.StatusCode, raw)
	}
	if err := json.Unmarshal(raw, &listing); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listing.Receipts) != 1 || listing.Receipts[0].NetReceived != 946 {
		t.Fatalf("listing = %+v", listing.Receipts)
	}

	resp, _ = getJSON(t, ts.URL+"/v1/receipts?limit=bogus")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad limit = %d, want 400", resp.StatusCode)
	}
}

func TestReceiptNotFound(t *testing.T) {
	ts, _ := newTestEnv(t)
	resp, _ := getJSON(t, ts.URL+"/v1/receipts/nope")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("receipt = %d, want 404", resp.StatusCode)
	}
}

func TestAccountNotFound(t *testing.T) {
	ts, _ := newTestEnv(t)
	resp, _ := getJSON(t, ts.URL+"/v1/accounts/"+renderAddress([20]byte{0x33}))
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("account = %d, want 404", resp.StatusCode)
	}
}

func TestRateLimit(t *testing.T) {
	store, err := storage.NewStore(filepath.Join(t.TempDir(), "routerd.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	node := core.NewNode(state.NewLedger(), store, slog.Default())
	server := NewServer(node, slog.Default(), ServerConfig{RateLimitPerSecond: 1, RateLimitBurst: 1, AuthWindow: time.Minute})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	resp, _ := getJSON(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first request = %d", resp.StatusCode)
	}
	resp, _ = getJSON(t, ts.URL+"/healthz")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", resp.StatusCode)
	}
}
