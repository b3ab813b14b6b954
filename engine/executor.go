package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tolelom/curvemarket/core"
	"github.com/tolelom/curvemarket/events"
	"github.com/tolelom/curvemarket/observability"
)

// Context is passed to every Handler and provides access to the market
// state, the configuration, the triggering operation, and the escrowed
// funds attached to it. Handlers describe outbound payments via Pay and
// domain events via EmitEvent; the executor settles the payments against
// the escrow account after the handler returns successfully and publishes
// the events only after the operation commits.
type Context struct {
	State  core.State
	Params *core.MarketParams
	Op     *core.Operation
	Funds  *core.Coin // attached funds, already moved into escrow; nil if none

	payments []core.Payment
	attrs    map[string]string
	events   []events.Event
}

// Pay records an outbound payment instruction in the native denomination.
// Instructions are executed in the order recorded.
func (c *Context) Pay(to string, amount uint64) {
	c.payments = append(c.payments, core.Payment{
		To:     to,
		Denom:  c.Params.Denom,
		Amount: amount,
	})
}

// SetAttr records a result attribute returned to the caller in the Receipt.
func (c *Context) SetAttr(key, value string) {
	if c.attrs == nil {
		c.attrs = make(map[string]string)
	}
	c.attrs[key] = value
}

// EmitEvent buffers a domain event. Buffered events are published only after
// the operation commits, so subscribers never observe a rolled-back effect.
func (c *Context) EmitEvent(ev events.Event) {
	c.events = append(c.events, ev)
}

// Executor applies operations to the state using the global Handler
// registry. Operations are serialized: each one executes to completion
// against a consistent snapshot and commits atomically, or fails with no
// observable state change.
type Executor struct {
	mu      sync.Mutex
	state   core.State
	emitter *events.Emitter
	metrics *observability.Metrics
	log     zerolog.Logger
}

// NewExecutor creates an Executor. metrics may be nil (e.g. in tests).
func NewExecutor(state core.State, emitter *events.Emitter, metrics *observability.Metrics, log zerolog.Logger) *Executor {
	return &Executor{state: state, emitter: emitter, metrics: metrics, log: log}
}

// ExecuteOp verifies and executes a single operation with snapshot/rollback.
// On success the state change and all payment instructions are committed in
// one atomic unit and the resulting Receipt is returned.
func (e *Executor) ExecuteOp(op *core.Operation) (*core.Receipt, error) {
	if err := op.Verify(); err != nil {
		return nil, fmt.Errorf("signature: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()

	snapID, err := e.state.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	receipt, pending, err := e.applyOp(op)
	if err != nil {
		if revertErr := e.state.RevertToSnapshot(snapID); revertErr != nil {
			return nil, fmt.Errorf("revert snapshot after op failure: %w (revert: %v)", err, revertErr)
		}
		e.observeRejected(op, err)
		return nil, err
	}

	// A failed commit must also revert: the write buffer still holds the
	// op's full effect and the next successful commit would flush it, making
	// an operation the caller saw fail durable after all.
	if err := e.state.Commit(); err != nil {
		commitErr := fmt.Errorf("commit: %w", err)
		if revertErr := e.state.RevertToSnapshot(snapID); revertErr != nil {
			return nil, fmt.Errorf("revert snapshot after commit failure: %w (revert: %v)", commitErr, revertErr)
		}
		e.observeRejected(op, commitErr)
		return nil, commitErr
	}

	e.observeApplied(op, time.Since(start))
	e.log.Info().
		Str("op_id", op.ID).
		Str("type", string(op.Type)).
		Str("from", op.From).
		Int("payments", len(receipt.Payments)).
		Msg("operation applied")

	if e.emitter != nil {
		for _, ev := range pending {
			e.emitter.Emit(ev)
		}
		e.emitter.Emit(events.Event{
			Type: events.EventOpExecuted,
			OpID: op.ID,
			Data: map[string]any{"type": string(op.Type), "from": op.From},
		})
	}
	return receipt, nil
}

// applyOp checks the nonce, escrows attached funds, dispatches to the
// handler, then settles the emitted payment instructions. It returns the
// receipt and the domain events to publish once the op commits.
func (e *Executor) applyOp(op *core.Operation) (*core.Receipt, []events.Event, error) {
	params, err := e.state.GetParams()
	if err != nil {
		return nil, nil, fmt.Errorf("load market params: %w", err)
	}

	acc, err := e.state.GetAccount(op.From)
	if err != nil {
		return nil, nil, fmt.Errorf("get account: %w", err)
	}
	if acc.Nonce != op.Nonce {
		return nil, nil, fmt.Errorf("invalid nonce: expected %d got %d", acc.Nonce, op.Nonce)
	}
	acc.Nonce++

	// Move attached funds into escrow up front so handlers and payment
	// settlement operate on a single pool. A failed op reverts the debit.
	// A zero-amount coin in the native denom is kept as attached funds so
	// handlers judge the amount themselves (a buy rejects it as
	// insufficient, not as missing).
	funds := op.Funds
	if funds != nil {
		if funds.Denom != params.Denom {
			return nil, nil, fmt.Errorf("attach %q: %w", funds.Denom, core.ErrNoFundsSent)
		}
		if acc.Balance < funds.Amount {
			return nil, nil, fmt.Errorf("insufficient balance to attach %d %s: have %d",
				funds.Amount, funds.Denom, acc.Balance)
		}
		acc.Balance -= funds.Amount
	}
	if err := e.state.SetAccount(acc); err != nil {
		return nil, nil, err
	}
	if funds != nil {
		escrow, err := e.state.GetAccount(core.EscrowAddress)
		if err != nil {
			return nil, nil, err
		}
		escrow.Balance += funds.Amount
		if err := e.state.SetAccount(escrow); err != nil {
			return nil, nil, err
		}
	}

	ctx := &Context{
		State:  e.state,
		Params: params,
		Op:     op,
		Funds:  funds,
	}
	if err := globalRegistry.Execute(op.Type, ctx, op.Payload); err != nil {
		return nil, nil, err
	}

	if err := e.settlePayments(ctx); err != nil {
		return nil, nil, err
	}

	receipt := &core.Receipt{
		OpID:       op.ID,
		Type:       op.Type,
		Payments:   ctx.payments,
		Attributes: ctx.attrs,
	}
	return receipt, ctx.events, nil
}

// settlePayments executes the recorded payment instructions in order,
// moving funds out of the escrow account. A payment the escrow cannot
// cover fails the whole operation.
func (e *Executor) settlePayments(ctx *Context) error {
	if len(ctx.payments) == 0 {
		return nil
	}
	escrow, err := e.state.GetAccount(core.EscrowAddress)
	if err != nil {
		return err
	}
	for _, p := range ctx.payments {
		if escrow.Balance < p.Amount {
			return fmt.Errorf("escrow cannot cover payment of %d %s to %s: have %d",
				p.Amount, p.Denom, p.To, escrow.Balance)
		}
		escrow.Balance -= p.Amount
		to, err := e.state.GetAccount(p.To)
		if err != nil {
			return err
		}
		to.Balance += p.Amount
		if err := e.state.SetAccount(to); err != nil {
			return err
		}
		ctx.EmitEvent(events.Event{
			Type: events.EventPayment,
			OpID: ctx.Op.ID,
			Data: map[string]any{"to": p.To, "amount": p.Amount, "denom": p.Denom},
		})
	}
	return e.state.SetAccount(escrow)
}

func (e *Executor) observeApplied(op *core.Operation, d time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.OpsApplied.WithLabelValues(string(op.Type)).Inc()
	e.metrics.OpDuration.WithLabelValues(string(op.Type)).Observe(d.Seconds())
}

func (e *Executor) observeRejected(op *core.Operation, err error) {
	e.log.Warn().
		Str("op_id", op.ID).
		Str("type", string(op.Type)).
		Err(err).
		Msg("operation rejected")
	if e.metrics == nil {
		return
	}
	e.metrics.OpsRejected.WithLabelValues(string(op.Type), rejectReason(err)).Inc()
}

// rejectReason collapses errors to a low-cardinality metric label.
func rejectReason(err error) string {
	switch {
	case errors.Is(err, core.ErrTokenNotFound):
		return "token_not_found"
	case errors.Is(err, core.ErrInvalidRoyaltyPercent):
		return "invalid_royalty"
	case errors.Is(err, core.ErrNoFundsSent):
		return "no_funds_sent"
	case errors.Is(err, core.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, core.ErrNoTokensToSell):
		return "no_tokens_to_sell"
	default:
		return "internal"
	}
}
