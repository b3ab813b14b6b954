package config

import (
	"errors"
	"fmt"

	"github.com/tolelom/curvemarket/core"
	"github.com/tolelom/curvemarket/crypto"
)

// ValidateGenesis checks the market parameters before they are written.
// The platform fee is capped so that even a token at the maximum royalty
// cannot push fee + royalty past 100%, which would make the remainder of a
// trade split underflow.
func ValidateGenesis(g *GenesisConfig) error {
	if g.NetworkID == "" {
		return errors.New("genesis: network_id required")
	}
	if g.Denom == "" {
		return errors.New("genesis: denom required")
	}
	if g.Admin == "" {
		return errors.New("genesis: admin pubkey required")
	}
	if _, err := crypto.PubKeyFromHex(g.Admin); err != nil {
		return fmt.Errorf("genesis: invalid admin pubkey: %w", err)
	}
	if g.PlatformFeePercent > 100-core.MaxRoyaltyPercent {
		return fmt.Errorf("genesis: platform_fee_percent %d exceeds %d (fee plus max royalty must stay within 100)",
			g.PlatformFeePercent, 100-core.MaxRoyaltyPercent)
	}
	if g.InitialPrice == 0 {
		return errors.New("genesis: initial_price must be > 0")
	}
	for addr := range g.Alloc {
		if addr == core.EscrowAddress {
			continue // pre-funds the market's liquidity pool
		}
		if _, err := crypto.PubKeyFromHex(addr); err != nil {
			return fmt.Errorf("genesis: invalid alloc address %q: %w", addr, err)
		}
	}
	return nil
}

// Initialized reports whether the state already carries a market params
// singleton, i.e. genesis has run before.
func Initialized(state core.State) (bool, error) {
	_, err := state.GetParams()
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ApplyGenesis writes the market params singleton, the zeroed token id
// counter, the escrow account, and the initial balance allocation, then
// commits in one batch.
func ApplyGenesis(state core.State, g *GenesisConfig) error {
	if err := ValidateGenesis(g); err != nil {
		return err
	}

	params := &core.MarketParams{
		Admin:                    g.Admin,
		Denom:                    g.Denom,
		PlatformFeePercent:       g.PlatformFeePercent,
		InitialPrice:             g.InitialPrice,
		PriceIncrementMultiplier: g.PriceIncrementMultiplier,
	}
	if err := state.SetParams(params); err != nil {
		return err
	}
	if err := state.SetNextTokenID(0); err != nil {
		return err
	}
	if err := state.SetAccount(&core.Account{Address: core.EscrowAddress}); err != nil {
		return err
	}
	for addr, balance := range g.Alloc {
		if err := state.SetAccount(&core.Account{Address: addr, Balance: balance}); err != nil {
			return err
		}
	}
	return state.Commit()
}
