package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tolelom/curvemarket/core"
	"github.com/tolelom/curvemarket/engine"
	"github.com/tolelom/curvemarket/engine/modules/market"
	"github.com/tolelom/curvemarket/indexer"
)

// Handler holds all dependencies needed to serve RPC methods.
type Handler struct {
	exec    *engine.Executor
	state   core.State
	indexer *indexer.Indexer
	network string // expected network id; rejects cross-market replay operations
}

// NewHandler creates an RPC Handler.
func NewHandler(exec *engine.Executor, state core.State, idx *indexer.Indexer, network string) *Handler {
	return &Handler{exec: exec, state: state, indexer: idx, network: network}
}

// Dispatch routes an RPC request to the correct method.
func (h *Handler) Dispatch(req Request) Response {
	switch req.Method {
	case "sendOp":
		return h.sendOp(req)

	case "getPrice":
		return h.getPrice(req)

	case "getTokenInfo":
		return h.getTokenInfo(req)

	case "getTokenCount":
		return h.getTokenCount(req)

	case "getBalance":
		return h.getBalance(req)

	case "getTokensByCreator":
		return h.getTokensByCreator(req)

	case "getConfig":
		return h.getConfig(req)

	case "getStateRoot":
		return okResponse(req.ID, map[string]string{"root": h.state.ComputeRoot()})

	default:
		return errResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method))
	}
}

// sendOp verifies and executes a signed operation. Validation failures map
// to CodeOpRejected so callers can distinguish bad input from server faults.
func (h *Handler) sendOp(req Request) Response {
	var op core.Operation
	if err := json.Unmarshal(req.Params, &op); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	// Reject operations destined for a different market to prevent
	// cross-network replay.
	if op.Network != h.network {
		return errResponse(req.ID, CodeInvalidParams,
			fmt.Sprintf("network mismatch: got %q want %q", op.Network, h.network))
	}
	// Recompute the ID server-side; do not trust the client-provided value.
	op.ID = op.Hash()

	receipt, err := h.exec.ExecuteOp(&op)
	if err != nil {
		if isValidationErr(err) {
			return errResponse(req.ID, CodeOpRejected, err.Error())
		}
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, receipt)
}

func (h *Handler) getPrice(req Request) Response {
	var params struct {
		TokenID uint64 `json:"token_id"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, "params: "+err.Error())
	}
	token, err := h.state.GetToken(params.TokenID)
	if errors.Is(err, core.ErrTokenNotFound) {
		return errResponse(req.ID, CodeOpRejected, err.Error())
	}
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	mp, err := h.state.GetParams()
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, map[string]any{
		"token_id": params.TokenID,
		"supply":   token.Supply,
		"price":    market.Price(token.Supply, mp),
		"denom":    mp.Denom,
	})
}

func (h *Handler) getTokenInfo(req Request) Response {
	var params struct {
		TokenID uint64 `json:"token_id"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, "params: "+err.Error())
	}
	token, err := h.state.GetToken(params.TokenID)
	if errors.Is(err, core.ErrTokenNotFound) {
		return errResponse(req.ID, CodeOpRejected, err.Error())
	}
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, token)
}

func (h *Handler) getTokenCount(req Request) Response {
	next, err := h.state.NextTokenID()
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, map[string]uint64{"count": next})
}

func (h *Handler) getBalance(req Request) Response {
	var params struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if params.Address == "" {
		return errResponse(req.ID, CodeInvalidParams, "address is required")
	}
	acc, err := h.state.GetAccount(params.Address)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, map[string]any{"address": params.Address, "balance": acc.Balance, "nonce": acc.Nonce})
}

func (h *Handler) getTokensByCreator(req Request) Response {
	var params struct {
		Creator string `json:"creator"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errResponse(req.ID, CodeInvalidParams, err.Error())
	}
	if params.Creator == "" {
		return errResponse(req.ID, CodeInvalidParams, "creator is required")
	}
	ids, err := h.indexer.GetTokensByCreator(params.Creator)
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, ids)
}

func (h *Handler) getConfig(req Request) Response {
	mp, err := h.state.GetParams()
	if err != nil {
		return errResponse(req.ID, CodeInternalError, err.Error())
	}
	return okResponse(req.ID, mp)
}

// isValidationErr reports whether err is one of the caller-recoverable
// rejections rather than an internal fault.
func isValidationErr(err error) bool {
	return errors.Is(err, core.ErrTokenNotFound) ||
		errors.Is(err, core.ErrInvalidRoyaltyPercent) ||
		errors.Is(err, core.ErrNoFundsSent) ||
		errors.Is(err, core.ErrInsufficientFunds) ||
		errors.Is(err, core.ErrNoTokensToSell)
}
