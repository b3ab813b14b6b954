package rpc

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tolelom/curvemarket/config"
	"github.com/tolelom/curvemarket/core"
	"github.com/tolelom/curvemarket/engine"
	"github.com/tolelom/curvemarket/events"
	"github.com/tolelom/curvemarket/indexer"
	"github.com/tolelom/curvemarket/internal/testutil"
	"github.com/tolelom/curvemarket/wallet"
)

const testNetwork = "curvemarket-test"

type testRPC struct {
	handler *Handler
	creator *wallet.Wallet
	buyer   *wallet.Wallet
}

func newTestRPC(t *testing.T) *testRPC {
	t.Helper()

	admin, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	creator, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	buyer, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}

	db := testutil.NewMemDB()
	state := testutil.NewStateDB()
	if err := config.ApplyGenesis(state, &config.GenesisConfig{
		NetworkID:                testNetwork,
		Denom:                    "usei",
		Admin:                    admin.PubKey(),
		PlatformFeePercent:       5,
		InitialPrice:             100,
		PriceIncrementMultiplier: 1,
		Alloc:                    map[string]uint64{buyer.PubKey(): 10_000},
	}); err != nil {
		t.Fatal(err)
	}

	emitter := events.NewEmitter(zerolog.Nop())
	idx := indexer.New(db, emitter)
	exec := engine.NewExecutor(state, emitter, nil, zerolog.Nop())

	return &testRPC{
		handler: NewHandler(exec, state, idx, testNetwork),
		creator: creator,
		buyer:   buyer,
	}
}

func (r *testRPC) call(t *testing.T, method string, params any) Response {
	t.Helper()
	raw, err := json.Marshal(params)
	if err != nil {
		t.Fatal(err)
	}
	return r.handler.Dispatch(Request{JSONRPC: "2.0", ID: 1, Method: method, Params: raw})
}

func (r *testRPC) mint(t *testing.T, nonce uint64) {
	t.Helper()
	op, err := r.creator.Mint(testNetwork, nonce, 10, "Kael", "A wandering swordsman.", "")
	if err != nil {
		t.Fatal(err)
	}
	if resp := r.call(t, "sendOp", op); resp.Error != nil {
		t.Fatalf("mint: %v", resp.Error)
	}
}

func TestDispatchUnknownMethod(t *testing.T) {
	r := newTestRPC(t)
	resp := r.call(t, "noSuchMethod", nil)
	if resp.Error == nil || resp.Error.Code != CodeMethodNotFound {
		t.Errorf("expected method-not-found, got %+v", resp)
	}
}

func TestSendOpExecutesMint(t *testing.T) {
	r := newTestRPC(t)
	op, err := r.creator.Mint(testNetwork, 0, 10, "Kael", "A wandering swordsman.", "")
	if err != nil {
		t.Fatal(err)
	}

	resp := r.call(t, "sendOp", op)
	if resp.Error != nil {
		t.Fatalf("sendOp: %+v", resp.Error)
	}
	receipt, ok := resp.Result.(*core.Receipt)
	if !ok {
		t.Fatalf("result type: %T", resp.Result)
	}
	if receipt.Attributes["token_id"] != "0" {
		t.Errorf("token_id attribute: %q", receipt.Attributes["token_id"])
	}
}

func TestSendOpRejectsNetworkMismatch(t *testing.T) {
	r := newTestRPC(t)
	op, err := r.creator.Mint("other-market", 0, 10, "Kael", "", "")
	if err != nil {
		t.Fatal(err)
	}

	resp := r.call(t, "sendOp", op)
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("expected invalid-params for network mismatch, got %+v", resp)
	}
}

func TestSendOpMapsValidationErrorsToOpRejected(t *testing.T) {
	r := newTestRPC(t)
	op, err := r.creator.Mint(testNetwork, 0, 21, "Too greedy", "", "")
	if err != nil {
		t.Fatal(err)
	}

	resp := r.call(t, "sendOp", op)
	if resp.Error == nil || resp.Error.Code != CodeOpRejected {
		t.Errorf("expected op-rejected for royalty violation, got %+v", resp)
	}
}

func TestSendOpIgnoresClientProvidedID(t *testing.T) {
	r := newTestRPC(t)
	op, err := r.creator.Mint(testNetwork, 0, 10, "Kael", "", "")
	if err != nil {
		t.Fatal(err)
	}
	want := op.ID
	op.ID = "spoofed"

	resp := r.call(t, "sendOp", op)
	if resp.Error != nil {
		t.Fatalf("sendOp: %+v", resp.Error)
	}
	receipt := resp.Result.(*core.Receipt)
	if receipt.OpID != want {
		t.Errorf("op id: got %q want %q", receipt.OpID, want)
	}
}

func TestGetPrice(t *testing.T) {
	r := newTestRPC(t)
	r.mint(t, 0)

	resp := r.call(t, "getPrice", map[string]uint64{"token_id": 0})
	if resp.Error != nil {
		t.Fatalf("getPrice: %+v", resp.Error)
	}
	result := resp.Result.(map[string]any)
	if result["price"] != uint64(100) {
		t.Errorf("price: %v", result["price"])
	}
	if result["denom"] != "usei" {
		t.Errorf("denom: %v", result["denom"])
	}
}

func TestGetPriceUnknownToken(t *testing.T) {
	r := newTestRPC(t)
	resp := r.call(t, "getPrice", map[string]uint64{"token_id": 42})
	if resp.Error == nil || resp.Error.Code != CodeOpRejected {
		t.Errorf("expected op-rejected for unknown token, got %+v", resp)
	}
}

func TestGetTokenInfoAndCount(t *testing.T) {
	r := newTestRPC(t)
	r.mint(t, 0)
	r.mint(t, 1)

	resp := r.call(t, "getTokenInfo", map[string]uint64{"token_id": 1})
	if resp.Error != nil {
		t.Fatalf("getTokenInfo: %+v", resp.Error)
	}
	token := resp.Result.(*core.Token)
	if token.ID != 1 || token.Creator != r.creator.PubKey() || token.Name != "Kael" {
		t.Errorf("token: %+v", token)
	}

	resp = r.call(t, "getTokenCount", nil)
	if resp.Error != nil {
		t.Fatalf("getTokenCount: %+v", resp.Error)
	}
	if count := resp.Result.(map[string]uint64)["count"]; count != 2 {
		t.Errorf("count: got %d want 2", count)
	}
}

func TestGetBalance(t *testing.T) {
	r := newTestRPC(t)

	resp := r.call(t, "getBalance", map[string]string{"address": r.buyer.PubKey()})
	if resp.Error != nil {
		t.Fatalf("getBalance: %+v", resp.Error)
	}
	result := resp.Result.(map[string]any)
	if result["balance"] != uint64(10_000) {
		t.Errorf("balance: %v", result["balance"])
	}

	resp = r.call(t, "getBalance", map[string]string{})
	if resp.Error == nil || resp.Error.Code != CodeInvalidParams {
		t.Errorf("missing address should be invalid params, got %+v", resp)
	}
}

func TestGetTokensByCreator(t *testing.T) {
	r := newTestRPC(t)
	r.mint(t, 0)
	r.mint(t, 1)

	resp := r.call(t, "getTokensByCreator", map[string]string{"creator": r.creator.PubKey()})
	if resp.Error != nil {
		t.Fatalf("getTokensByCreator: %+v", resp.Error)
	}
	ids := resp.Result.([]uint64)
	if fmt.Sprint(ids) != "[0 1]" {
		t.Errorf("ids: %v", ids)
	}
}

func TestGetConfigAndStateRoot(t *testing.T) {
	r := newTestRPC(t)

	resp := r.call(t, "getConfig", nil)
	if resp.Error != nil {
		t.Fatalf("getConfig: %+v", resp.Error)
	}
	params := resp.Result.(*core.MarketParams)
	if params.Denom != "usei" || params.PlatformFeePercent != 5 {
		t.Errorf("params: %+v", params)
	}

	resp = r.call(t, "getStateRoot", nil)
	if resp.Error != nil {
		t.Fatalf("getStateRoot: %+v", resp.Error)
	}
	root := resp.Result.(map[string]string)["root"]
	if len(root) != 64 {
		t.Errorf("root should be a sha256 hex digest, got %q", root)
	}
}
