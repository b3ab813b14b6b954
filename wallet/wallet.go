package wallet

import (
	"github.com/tolelom/curvemarket/core"
	"github.com/tolelom/curvemarket/crypto"
)

// Wallet holds a key pair and provides operation-building helpers.
type Wallet struct {
	priv crypto.PrivateKey
	pub  crypto.PublicKey
}

// New creates a Wallet from an existing private key.
func New(priv crypto.PrivateKey) *Wallet {
	return &Wallet{priv: priv, pub: priv.Public()}
}

// Generate creates a Wallet with a freshly generated key pair.
func Generate() (*Wallet, error) {
	priv, _, err := crypto.GenerateKeyPair()
	if err != nil {
		return nil, err
	}
	return New(priv), nil
}

// PrivKey returns the raw private key (handle with care).
func (w *Wallet) PrivKey() crypto.PrivateKey {
	return w.priv
}

// PubKey returns the hex-encoded ed25519 public key (used as "from" address).
func (w *Wallet) PubKey() string {
	return w.pub.Hex()
}

// NewOp creates a signed operation. network must match the target market;
// nonce should match the account's current nonce.
func (w *Wallet) NewOp(network string, typ core.OpType, nonce uint64, funds *core.Coin, payload any) (*core.Operation, error) {
	op, err := core.NewOperation(network, typ, w.pub.Hex(), nonce, funds, payload)
	if err != nil {
		return nil, err
	}
	op.Sign(w.priv)
	return op, nil
}

// Mint creates a signed mint operation for a new character token.
func (w *Wallet) Mint(network string, nonce, royaltyPercent uint64, name, backstory, imageURL string) (*core.Operation, error) {
	return w.NewOp(network, core.OpMint, nonce, nil, core.MintPayload{
		RoyaltyPercent: royaltyPercent,
		Name:           name,
		Backstory:      backstory,
		ImageURL:       imageURL,
	})
}

// Buy creates a signed buy operation attaching amount of denom as payment.
func (w *Wallet) Buy(network string, nonce, tokenID uint64, denom string, amount uint64) (*core.Operation, error) {
	return w.NewOp(network, core.OpBuy, nonce, &core.Coin{Denom: denom, Amount: amount}, core.BuyPayload{
		TokenID: tokenID,
	})
}

// Sell creates a signed sell operation for one unit of tokenID.
func (w *Wallet) Sell(network string, nonce, tokenID uint64) (*core.Operation, error) {
	return w.NewOp(network, core.OpSell, nonce, nil, core.SellPayload{TokenID: tokenID})
}

// Transfer creates a signed native-currency transfer operation.
func (w *Wallet) Transfer(network, to string, amount, nonce uint64) (*core.Operation, error) {
	return w.NewOp(network, core.OpTransfer, nonce, nil, core.TransferPayload{
		To:     to,
		Amount: amount,
	})
}
