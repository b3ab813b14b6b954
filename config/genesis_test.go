package config_test

import (
	"strings"
	"testing"

	"github.com/tolelom/curvemarket/config"
	"github.com/tolelom/curvemarket/core"
	"github.com/tolelom/curvemarket/internal/testutil"
	"github.com/tolelom/curvemarket/wallet"
)

func validGenesis(t *testing.T) *config.GenesisConfig {
	t.Helper()
	admin, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	return &config.GenesisConfig{
		NetworkID:                "curvemarket-test",
		Denom:                    "usei",
		Admin:                    admin.PubKey(),
		PlatformFeePercent:       5,
		InitialPrice:             100,
		PriceIncrementMultiplier: 1,
	}
}

func TestValidateGenesisAcceptsValidConfig(t *testing.T) {
	if err := config.ValidateGenesis(validGenesis(t)); err != nil {
		t.Errorf("valid genesis rejected: %v", err)
	}
}

func TestValidateGenesisFeeCap(t *testing.T) {
	g := validGenesis(t)

	// 80 is the highest fee that still leaves room for a 20% royalty.
	g.PlatformFeePercent = 80
	if err := config.ValidateGenesis(g); err != nil {
		t.Errorf("fee 80 should be accepted: %v", err)
	}

	g.PlatformFeePercent = 81
	if err := config.ValidateGenesis(g); err == nil {
		t.Error("fee 81 should be rejected")
	}
}

func TestValidateGenesisRejectsBadAdmin(t *testing.T) {
	g := validGenesis(t)
	g.Admin = "not-a-pubkey"
	if err := config.ValidateGenesis(g); err == nil {
		t.Error("invalid admin pubkey should be rejected")
	}
}

func TestValidateGenesisRejectsZeroInitialPrice(t *testing.T) {
	g := validGenesis(t)
	g.InitialPrice = 0
	if err := config.ValidateGenesis(g); err == nil {
		t.Error("zero initial price should be rejected")
	}
}

func TestValidateGenesisAllocAddresses(t *testing.T) {
	g := validGenesis(t)

	// The escrow address is the one non-pubkey address allowed in alloc.
	g.Alloc = map[string]uint64{core.EscrowAddress: 1_000}
	if err := config.ValidateGenesis(g); err != nil {
		t.Errorf("escrow alloc should be accepted: %v", err)
	}

	g.Alloc["bogus"] = 10
	err := config.ValidateGenesis(g)
	if err == nil {
		t.Fatal("non-pubkey alloc address should be rejected")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error should name the offending address: %v", err)
	}
}

func TestApplyGenesisWritesStateOnce(t *testing.T) {
	state := testutil.NewStateDB()
	g := validGenesis(t)
	holder, err := wallet.Generate()
	if err != nil {
		t.Fatal(err)
	}
	g.Alloc = map[string]uint64{holder.PubKey(): 500}

	initialized, err := config.Initialized(state)
	if err != nil {
		t.Fatal(err)
	}
	if initialized {
		t.Fatal("fresh state must not be initialized")
	}

	if err := config.ApplyGenesis(state, g); err != nil {
		t.Fatalf("ApplyGenesis: %v", err)
	}

	initialized, err = config.Initialized(state)
	if err != nil {
		t.Fatal(err)
	}
	if !initialized {
		t.Error("state must be initialized after genesis")
	}

	params, err := state.GetParams()
	if err != nil {
		t.Fatal(err)
	}
	if params.Admin != g.Admin || params.Denom != "usei" || params.InitialPrice != 100 {
		t.Errorf("params mismatch: %+v", params)
	}

	next, err := state.NextTokenID()
	if err != nil {
		t.Fatal(err)
	}
	if next != 0 {
		t.Errorf("token counter: got %d want 0", next)
	}

	acc, err := state.GetAccount(holder.PubKey())
	if err != nil {
		t.Fatal(err)
	}
	if acc.Balance != 500 {
		t.Errorf("alloc balance: got %d want 500", acc.Balance)
	}
}

func TestApplyGenesisRejectsInvalidConfig(t *testing.T) {
	state := testutil.NewStateDB()
	g := validGenesis(t)
	g.PlatformFeePercent = 81

	if err := config.ApplyGenesis(state, g); err == nil {
		t.Fatal("invalid genesis must not apply")
	}
	initialized, err := config.Initialized(state)
	if err != nil {
		t.Fatal(err)
	}
	if initialized {
		t.Error("failed genesis must not leave params behind")
	}
}
