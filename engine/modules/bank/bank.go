// Package bank moves native currency between accounts so buyers can be
// funded without touching the marketplace itself.
package bank

import (
	"encoding/json"
	"fmt"

	"github.com/tolelom/curvemarket/core"
	"github.com/tolelom/curvemarket/engine"
	"github.com/tolelom/curvemarket/events"
)

func init() {
	engine.Register(core.OpTransfer, handleTransfer)
}

func handleTransfer(ctx *engine.Context, payload json.RawMessage) error {
	var p core.TransferPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return fmt.Errorf("decode transfer payload: %w", err)
	}
	if p.Amount == 0 {
		return fmt.Errorf("transfer amount must be > 0")
	}
	if p.To == "" {
		return fmt.Errorf("transfer to address required")
	}

	sender, err := ctx.State.GetAccount(ctx.Op.From)
	if err != nil {
		return err
	}
	if sender.Balance < p.Amount {
		return fmt.Errorf("insufficient balance: have %d, need %d", sender.Balance, p.Amount)
	}
	sender.Balance -= p.Amount
	if err := ctx.State.SetAccount(sender); err != nil {
		return err
	}

	recipient, err := ctx.State.GetAccount(p.To)
	if err != nil {
		return err
	}
	recipient.Balance += p.Amount
	if err := ctx.State.SetAccount(recipient); err != nil {
		return err
	}

	ctx.EmitEvent(events.Event{
		Type: events.EventTransfer,
		OpID: ctx.Op.ID,
		Data: map[string]any{
			"from":   ctx.Op.From,
			"to":     p.To,
			"amount": p.Amount,
		},
	})
	return nil
}
