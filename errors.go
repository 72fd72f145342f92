package tokenledger

import (
	"errors"

	"github.com/xraph/tokenledger/amount"
)

// Sentinel errors for common failure scenarios.
var (
	// Authorization errors
	ErrUnauthorized = errors.New("tokenledger: unauthorized")

	// Validation errors
	ErrInvalidArgument = errors.New("tokenledger: invalid argument")
	ErrZeroAddress     = errors.New("tokenledger: zero address not allowed")

	// Bookkeeping errors
	ErrInsufficientBalance   = errors.New("tokenledger: insufficient balance")
	ErrInsufficientAllowance = errors.New("tokenledger: insufficient allowance")
	ErrAllowanceRace         = errors.New("tokenledger: allowance must be zeroed before reapproval")

	// Lifecycle errors
	ErrNotStarted     = errors.New("tokenledger: engine not started")
	ErrAlreadyStarted = errors.New("tokenledger: engine already started")

	// Store errors
	ErrSnapshotNotFound = errors.New("tokenledger: snapshot not found")
	ErrStoreClosed      = errors.New("tokenledger: store is closed")
)

// IsAuthorization reports whether the error is an access-control rejection.
func IsAuthorization(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsValidation reports whether the error is an input-constraint rejection.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrZeroAddress) ||
		errors.Is(err, ErrAllowanceRace)
}

// IsFunds reports whether the error is a balance or allowance shortfall.
func IsFunds(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientAllowance)
}

// IsSnapshotNotFound reports whether the error means the backend holds
// no persisted state yet.
func IsSnapshotNotFound(err error) bool {
	return errors.Is(err, ErrSnapshotNotFound)
}

// IsArithmetic reports whether the error came out of the checked
// arithmetic layer.
func IsArithmetic(err error) bool {
	return errors.Is(err, amount.ErrOverflow) ||
		errors.Is(err, amount.ErrUnderflow) ||
		errors.Is(err, amount.ErrDivideByZero)
}
