package core

import (
	"testing"

	"github.com/tolelom/curvemarket/crypto"
)

func signedOp(t *testing.T) (*Operation, crypto.PrivateKey) {
	t.Helper()
	priv, pub, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	op, err := NewOperation("curvemarket-test", OpBuy, pub.Hex(), 3,
		&Coin{Denom: "usei", Amount: 100}, BuyPayload{TokenID: 7})
	if err != nil {
		t.Fatal(err)
	}
	op.Sign(priv)
	return op, priv
}

func TestSignAndVerify(t *testing.T) {
	op, _ := signedOp(t)
	if err := op.Verify(); err != nil {
		t.Errorf("Verify: %v", err)
	}
	if op.ID != op.Hash() {
		t.Error("Sign must set ID to the operation hash")
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	tamper := []struct {
		name string
		mut  func(op *Operation)
	}{
		{"nonce", func(op *Operation) { op.Nonce++ }},
		{"network", func(op *Operation) { op.Network = "other-market" }},
		{"type", func(op *Operation) { op.Type = OpSell }},
		{"funds", func(op *Operation) { op.Funds.Amount = 1 }},
		{"payload", func(op *Operation) { op.Payload = []byte(`{"token_id":8}`) }},
	}
	for _, tt := range tamper {
		t.Run(tt.name, func(t *testing.T) {
			op, _ := signedOp(t)
			tt.mut(op)
			if err := op.Verify(); err == nil {
				t.Errorf("tampered %s must fail verification", tt.name)
			}
		})
	}
}

func TestVerifyRejectsForgedSender(t *testing.T) {
	op, _ := signedOp(t)

	_, otherPub, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	op.From = otherPub.Hex()
	if err := op.Verify(); err == nil {
		t.Error("swapping the sender must fail verification")
	}
}

func TestVerifyRejectsMalformedFrom(t *testing.T) {
	op, priv := signedOp(t)

	op.From = "zz-not-hex"
	op.Sign(priv)
	if err := op.Verify(); err == nil {
		t.Error("non-pubkey from must fail verification even when self-signed")
	}

	op.From = ""
	if err := op.Verify(); err == nil {
		t.Error("empty from must fail verification")
	}
}

func TestHashIsDeterministicAndSignatureIndependent(t *testing.T) {
	op, _ := signedOp(t)
	h := op.Hash()
	if h != op.Hash() {
		t.Error("Hash must be deterministic")
	}
	op.Signature = "deadbeef"
	if op.Hash() != h {
		t.Error("Hash must not cover the signature")
	}
}
