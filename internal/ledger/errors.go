package ledger

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEncoding marks malformed identifier, currency or amount text.
	ErrInvalidEncoding = errors.New("invalid encoding")

	// ErrDuplicateID is returned when creating an account whose id is taken.
	ErrDuplicateID = errors.New("duplicate account id")

	// ErrNotFound is returned when a referenced account does not exist.
	ErrNotFound = errors.New("no such account")

	// ErrWrongAxis is returned when an id tagged for one axis refers to an
	// account on the other.
	ErrWrongAxis = errors.New("account is on the wrong axis")
)

// NegativeBalanceError reports the account and currency a transaction would
// have driven below zero. The command that raised it has had no effect.
type NegativeBalanceError struct {
	Account  AccountID
	Currency Currency
}

func (e NegativeBalanceError) Error() string {
	return fmt.Sprintf("account %s balance must never be below 0 in any currency (violated for %s)", e.Account, e.Currency)
}
