package core

import "errors"

// ErrNotFound is returned when a requested object does not exist in storage.
var ErrNotFound = errors.New("not found")

// Validation errors. These are caller-recoverable: the operation is rejected
// with no state change and the caller may fix its input and resubmit.
// Anything else that bubbles out of the storage layer is treated as fatal
// for the operation and aborts the whole unit of work.
var (
	ErrTokenNotFound         = errors.New("token not found")
	ErrInvalidRoyaltyPercent = errors.New("royalty percent must be between 0 and 20")
	ErrNoFundsSent           = errors.New("no funds were sent with the operation")
	ErrInsufficientFunds     = errors.New("insufficient funds sent for the current price")
	ErrNoTokensToSell        = errors.New("there are no tokens of this type to sell")
)
