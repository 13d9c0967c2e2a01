package domain

import "errors"

// Domain errors (no external dependencies).
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicate          = errors.New("duplicate resource")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("access denied")
	ErrConflict           = errors.New("conflict with current state")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNotEligible        = errors.New("not eligible")

	// ErrLedgerCorrupt signals a stock ledger whose stored balance snapshots
	// violate the running-balance invariant. Hard failure: callers must not
	// keep posting on top of a corrupt ledger.
	ErrLedgerCorrupt = errors.New("stock ledger corrupt")
)
