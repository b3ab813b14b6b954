package crypto

import (
	"strings"
	"testing"
)

func TestKeyPairHexRoundTrip(t *testing.T) {
	priv, pub, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}

	pub2, err := PubKeyFromHex(pub.Hex())
	if err != nil {
		t.Fatalf("PubKeyFromHex: %v", err)
	}
	if pub2.Hex() != pub.Hex() {
		t.Error("public key hex round trip mismatch")
	}

	priv2, err := PrivKeyFromHex(priv.Hex())
	if err != nil {
		t.Fatalf("PrivKeyFromHex: %v", err)
	}
	if priv2.Public().Hex() != pub.Hex() {
		t.Error("private key hex round trip derives wrong public key")
	}
}

func TestPubKeyFromHexRejectsBadInput(t *testing.T) {
	if _, err := PubKeyFromHex("zz"); err == nil {
		t.Error("non-hex input should be rejected")
	}
	// Valid hex, wrong length.
	if _, err := PubKeyFromHex("deadbeef"); err == nil {
		t.Error("short key should be rejected")
	}
	if _, err := PubKeyFromHex(strings.Repeat("ab", 33)); err == nil {
		t.Error("long key should be rejected")
	}
}

func TestSignVerify(t *testing.T) {
	priv, pub, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	msg := []byte("settle one unit of token 7")

	sig := Sign(priv, msg)
	if err := Verify(pub, msg, sig); err != nil {
		t.Errorf("Verify: %v", err)
	}
	if err := Verify(pub, []byte("different message"), sig); err == nil {
		t.Error("signature must not verify for a different message")
	}

	_, otherPub, err := GenerateKeyPair()
	if err != nil {
		t.Fatal(err)
	}
	if err := Verify(otherPub, msg, sig); err == nil {
		t.Error("signature must not verify under a different key")
	}
	if err := Verify(pub, msg, "not-hex"); err == nil {
		t.Error("malformed signature hex must be rejected")
	}
}

func TestHashIsStable(t *testing.T) {
	h := Hash([]byte("abc"))
	if h != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Errorf("sha256(abc) mismatch: %s", h)
	}
	if HashBytes([]byte("abc")) == nil {
		t.Error("HashBytes returned nil")
	}
}
