package models

import (
	"errors"
	"strings"
)

// Domain error kinds. Callers match them with errors.Is.
var (
	// ErrInvalidName is returned when an account name is empty, blank or too long
	ErrInvalidName = errors.New("invalid account name")

	// ErrInvalidAmount is returned for non-numeric, non-finite, sub-cent, non-positive or overflowing amounts
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNotFound is returned when an account id is unknown
	ErrNotFound = errors.New("account not found")

	// ErrInsufficientFunds is returned when a debit exceeds the current balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrDuplicateID is returned when inserting an account whose id already exists
	ErrDuplicateID = errors.New("duplicate account id")

	// ErrAccountNotEmpty is returned when deleting an account that still holds money
	ErrAccountNotEmpty = errors.New("account balance is not zero")

	// ErrSelfTransferNotAllowed is returned when source and destination are the same account
	ErrSelfTransferNotAllowed = errors.New("cannot transfer to the same account")

	// ErrCorruptState is returned when persisted state can't be parsed or fails its consistency check
	ErrCorruptState = errors.New("ledger file is corrupt")

	// ErrPersistenceFailure is returned when the ledger could not be written to storage
	ErrPersistenceFailure = errors.New("failed to persist ledger")
)

// OpError records the ledger operation, account and offending value behind a failure.
type OpError struct {
	Op        string // e.g. "deposit"
	AccountID string // empty when no single account is involved
	Value     string // offending input, if any
	Err       error
}

func (e *OpError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.AccountID != "" {
		b.WriteString(" ")
		b.WriteString(e.AccountID)
	}
	if e.Value != "" {
		b.WriteString(" (")
		b.WriteString(e.Value)
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *OpError) Unwrap() error { return e.Err }
