package core

// EscrowAddress is the reserved account that holds funds attached to
// operations until payment instructions move them out. It is not a valid
// pubkey, so no caller can sign for it.
const EscrowAddress = "market_escrow"

// MaxRoyaltyPercent caps the per-token creator royalty set at mint.
const MaxRoyaltyPercent = 20

// Account holds a participant's native-currency balance and
// replay-protection nonce. Address is the hex-encoded ed25519 public key
// (or EscrowAddress for the market's own pool).
type Account struct {
	Address string `json:"address"`
	Balance uint64 `json:"balance"`
	Nonce   uint64 `json:"nonce"`
}

// MarketParams is the marketplace configuration singleton. It is written
// once during genesis initialization and read-only afterwards.
type MarketParams struct {
	Admin                    string `json:"admin"` // pubkey hex receiving the platform fee
	Denom                    string `json:"denom"` // the only accepted payment denomination
	PlatformFeePercent       uint64 `json:"platform_fee_percent"`
	InitialPrice             uint64 `json:"initial_price"`
	PriceIncrementMultiplier uint64 `json:"price_increment_multiplier"`
}

// Token is one creator-minted character token. Supply is the only mutable
// field; everything else is fixed at mint. New fields must be appended,
// never reordered, to keep old persisted records decodable.
type Token struct {
	ID             uint64 `json:"id"`
	Creator        string `json:"creator"` // pubkey hex receiving royalties
	RoyaltyPercent uint64 `json:"royalty_percent"`
	Supply         uint64 `json:"supply"`
	Name           string `json:"name"`
	Backstory      string `json:"backstory"`
	ImageURL       string `json:"image_url"`
}

// Coin is an amount of a named denomination attached to an operation.
type Coin struct {
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// Payment is an outbound payment instruction produced by an operation.
// Payments are executed against the escrow account in the order emitted,
// in the same atomic unit as the state change that produced them.
type Payment struct {
	To     string `json:"to"`
	Denom  string `json:"denom"`
	Amount uint64 `json:"amount"`
}

// Receipt describes the observable outcome of a successfully executed
// operation: the payments that were settled and any result attributes
// (e.g. the token id allocated by a mint).
type Receipt struct {
	OpID       string            `json:"op_id"`
	Type       OpType            `json:"type"`
	Payments   []Payment         `json:"payments,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}
