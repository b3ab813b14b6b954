package core

// State is the full marketplace state interface. Implementations must be
// snapshot-able so the executor can roll back failed operations, and must
// provide read-your-writes consistency within a unit of work.
type State interface {
	// Accounts
	GetAccount(address string) (*Account, error)
	SetAccount(account *Account) error

	// Market configuration singleton (written once at genesis)
	GetParams() (*MarketParams, error)
	SetParams(p *MarketParams) error

	// Tokens
	GetToken(id uint64) (*Token, error)
	SetToken(t *Token) error

	// Monotonic token id allocator singleton
	NextTokenID() (uint64, error)
	SetNextTokenID(id uint64) error

	// Snapshot / rollback / commit
	Snapshot() (int, error)
	RevertToSnapshot(id int) error
	// ComputeRoot returns the deterministic state digest from the current
	// write buffer without flushing. Useful for audit and backup checks.
	ComputeRoot() string
	// Commit flushes the write buffer to the underlying DB atomically and
	// clears it.
	Commit() error
}
