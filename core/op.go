package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tolelom/curvemarket/crypto"
)

// OpType identifies the kind of state transition an operation performs.
type OpType string

const (
	OpMint     OpType = "mint"
	OpBuy      OpType = "buy"
	OpSell     OpType = "sell"
	OpTransfer OpType = "transfer"
)

// Operation is the atomic unit of work against the marketplace.
// From holds the caller's full hex-encoded ed25519 public key (64 chars).
// Funds is the optional native-currency payment attached to the operation.
// Signature covers all fields except Signature itself.
type Operation struct {
	ID        string          `json:"id"`
	Network   string          `json:"network"` // target market id, rejects cross-market replay
	Type      OpType          `json:"type"`
	From      string          `json:"from"` // hex-encoded ed25519 public key
	Nonce     uint64          `json:"nonce"`
	Funds     *Coin           `json:"funds,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
	Signature string          `json:"signature"`
}

// signingBody holds the fields that are covered by the signature.
type signingBody struct {
	Network   string          `json:"network"`
	Type      OpType          `json:"type"`
	From      string          `json:"from"`
	Nonce     uint64          `json:"nonce"`
	Funds     *Coin           `json:"funds,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Hash returns a deterministic hash of the operation (sans Signature).
// Returns an empty string if marshalling fails (which cannot happen in practice).
func (op *Operation) Hash() string {
	body := signingBody{
		Network:   op.Network,
		Type:      op.Type,
		From:      op.From,
		Nonce:     op.Nonce,
		Funds:     op.Funds,
		Timestamp: op.Timestamp,
		Payload:   op.Payload,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return ""
	}
	return crypto.Hash(data)
}

// Sign computes the signature and sets ID.
func (op *Operation) Sign(priv crypto.PrivateKey) {
	hash := op.Hash()
	op.Signature = crypto.Sign(priv, []byte(hash))
	op.ID = hash
}

// Verify checks the signature and that From is a valid public key.
func (op *Operation) Verify() error {
	if op.From == "" {
		return errors.New("missing from field")
	}
	pub, err := crypto.PubKeyFromHex(op.From)
	if err != nil {
		return fmt.Errorf("invalid from (must be ed25519 pubkey hex): %w", err)
	}
	return crypto.Verify(pub, []byte(op.Hash()), op.Signature)
}

// NewOperation creates an unsigned operation with the current timestamp.
func NewOperation(network string, typ OpType, from string, nonce uint64, funds *Coin, payload any) (*Operation, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return &Operation{
		Network:   network,
		Type:      typ,
		From:      from,
		Nonce:     nonce,
		Funds:     funds,
		Timestamp: time.Now().UnixNano(),
		Payload:   raw,
	}, nil
}

// ---- Payload types ----

// MintPayload creates a new character token with the caller as creator.
type MintPayload struct {
	RoyaltyPercent uint64 `json:"royalty_percent"` // 0–20
	Name           string `json:"name"`
	Backstory      string `json:"backstory"`
	ImageURL       string `json:"image_url"`
}

// BuyPayload buys one unit of a token at the current curve price.
// The payment is carried in Operation.Funds.
type BuyPayload struct {
	TokenID uint64 `json:"token_id"`
}

// SellPayload sells one unit of a token back to the curve.
type SellPayload struct {
	TokenID uint64 `json:"token_id"`
}

// TransferPayload moves native currency between accounts.
type TransferPayload struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}
