// Package market implements the bonding-curve marketplace operations:
// minting character tokens, and buying/selling single units against each
// token's supply-driven price curve.
package market

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tolelom/curvemarket/core"
	"github.com/tolelom/curvemarket/engine"
	"github.com/tolelom/curvemarket/events"
)

func init() {
	engine.Register(core.OpMint, handleMint)
	engine.Register(core.OpBuy, handleBuy)
	engine.Register(core.OpSell, handleSell)
}

// handleMint creates a new token at supply 0 with the caller as creator.
// Token ids come from the monotonic allocator: dense, starting at 0, never
// reused even if a token's supply later returns to zero.
func handleMint(ctx *engine.Context, payload json.RawMessage) error {
	var p core.MintPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode mint payload: %w", err)
	}
	if p.RoyaltyPercent > core.MaxRoyaltyPercent {
		return fmt.Errorf("royalty %d: %w", p.RoyaltyPercent, core.ErrInvalidRoyaltyPercent)
	}

	id, err := ctx.State.NextTokenID()
	if err != nil {
		return fmt.Errorf("load token id counter: %w", err)
	}

	token := &core.Token{
		ID:             id,
		Creator:        ctx.Op.From,
		RoyaltyPercent: p.RoyaltyPercent,
		Supply:         0,
		Name:           p.Name,
		Backstory:      p.Backstory,
		ImageURL:       p.ImageURL,
	}
	if err := ctx.State.SetToken(token); err != nil {
		return err
	}
	if err := ctx.State.SetNextTokenID(id + 1); err != nil {
		return err
	}

	ctx.SetAttr("token_id", strconv.FormatUint(id, 10))

	ctx.EmitEvent(events.Event{
		Type: events.EventTokenMinted,
		OpID: ctx.Op.ID,
		Data: map[string]any{"token_id": id, "creator": ctx.Op.From, "name": p.Name},
	})
	return nil
}

// handleBuy sells one unit of the token to the caller at the current curve
// price. The attached funds must cover the price; anything attached beyond
// the platform fee and the creator payment stays in the market escrow (the
// buyer's excess is not refunded).
func handleBuy(ctx *engine.Context, payload json.RawMessage) error {
	var p core.BuyPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode buy payload: %w", err)
	}

	token, err := ctx.State.GetToken(p.TokenID)
	if err != nil {
		return fmt.Errorf("token %d: %w", p.TokenID, err)
	}

	price := Price(token.Supply, ctx.Params)

	if ctx.Funds == nil {
		return core.ErrNoFundsSent
	}
	if ctx.Funds.Amount < price {
		return fmt.Errorf("sent %d, price %d: %w", ctx.Funds.Amount, price, core.ErrInsufficientFunds)
	}

	platformFee, _, creatorPayment := Split(price, ctx.Params.PlatformFeePercent, token.RoyaltyPercent)

	// Ordering matters for the settlement log: platform first, then creator.
	// The royalty portion is retained by the escrow to back later sells.
	ctx.Pay(ctx.Params.Admin, platformFee)
	ctx.Pay(token.Creator, creatorPayment)

	token.Supply++
	if err := ctx.State.SetToken(token); err != nil {
		return err
	}

	ctx.EmitEvent(events.Event{
		Type: events.EventTokenBought,
		OpID: ctx.Op.ID,
		Data: map[string]any{
			"token_id": p.TokenID,
			"buyer":    ctx.Op.From,
			"price":    price,
			"supply":   token.Supply,
		},
	})
	return nil
}

// handleSell buys one unit back from the caller at the price the curve
// charged for the step being undone, i.e. the price at supply-1. The seller
// receives that price minus the platform fee and the creator royalty, both
// retained by the escrow. No per-holder balance is tracked, so the caller
// is not required to prove it holds a unit; this is a deliberate
// simplification of the aggregate-supply design.
func handleSell(ctx *engine.Context, payload json.RawMessage) error {
	var p core.SellPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode sell payload: %w", err)
	}

	token, err := ctx.State.GetToken(p.TokenID)
	if err != nil {
		return fmt.Errorf("token %d: %w", p.TokenID, err)
	}
	if token.Supply == 0 {
		return fmt.Errorf("token %d: %w", p.TokenID, core.ErrNoTokensToSell)
	}

	price := Price(token.Supply-1, ctx.Params)
	_, _, sellerPayment := Split(price, ctx.Params.PlatformFeePercent, token.RoyaltyPercent)

	ctx.Pay(ctx.Op.From, sellerPayment)

	token.Supply--
	if err := ctx.State.SetToken(token); err != nil {
		return err
	}

	ctx.EmitEvent(events.Event{
		Type: events.EventTokenSold,
		OpID: ctx.Op.ID,
		Data: map[string]any{
			"token_id": p.TokenID,
			"seller":   ctx.Op.From,
			"price":    price,
			"supply":   token.Supply,
		},
	})
	return nil
}
